// Package types holds shared data types used across the service.
package types

import "time"

// TraceRecord is one completed ray trace as persisted in the archive.
// Vertices holds the JSON-encoded vertex sequence so the renderer-facing
// API can return it without re-tracing.
type TraceRecord struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Timestamp   time.Time `gorm:"column:time" json:"time"`
	ModelName   string    `gorm:"column:modelname" json:"model_name"`
	SourceDepth float64   `gorm:"column:sourcedepth" json:"source_depth"`
	Angle       float64   `gorm:"column:angle" json:"angle"`
	Status      string    `gorm:"column:status" json:"status"`
	VertexCount int       `gorm:"column:vertexcount" json:"vertex_count"`
	Vertices    string    `gorm:"column:vertices" json:"vertices"`
}

// TableName implements the gorm Tabler interface
func (TraceRecord) TableName() string {
	return "traces"
}
