// Package raytrace computes the geometric path of a seismic ray launched
// from a point source inside a layered velocity model. The ray refracts at
// each layer boundary according to Snell's law and reverses direction on
// total internal reflection, until it reaches the surface or is trapped
// inside the stack.
package raytrace

import (
	"fmt"
	"math"

	"github.com/seismotools/raypath/pkg/geomodel"
)

// Status classifies how a trace terminated.
type Status string

const (
	// StatusReachedSurface means the ray crossed the top of the
	// shallowest layer.
	StatusReachedSurface Status = "reached_surface"
	// StatusTrapped means the ray exhausted the reflection bound or left
	// the stack travelling downward and can never reach the surface.
	StatusTrapped Status = "trapped"
)

// VertexKind classifies a path vertex.
type VertexKind string

const (
	VertexSource     VertexKind = "source"
	VertexRefraction VertexKind = "refraction"
	VertexReflection VertexKind = "reflection"
	VertexSurface    VertexKind = "surface"
)

// Vertex is one point of the ray path. Offset is the horizontal distance
// from the source in meters, Altitude the vertical position in meters.
// Angle is the incidence angle, in degrees from vertical, that the ray held
// in the layer it traversed to arrive here.
type Vertex struct {
	Offset   float64    `json:"offset"`
	Altitude float64    `json:"altitude"`
	Angle    float64    `json:"angle"`
	Kind     VertexKind `json:"kind"`
}

// Path is the ordered vertex sequence of one trace plus its terminal
// status. The first vertex is always the source; the last is either a
// surface arrival or the point at which the ray was declared trapped.
type Path struct {
	Vertices []Vertex `json:"vertices"`
	Status   Status   `json:"status"`
}

// SurfaceOffset returns the horizontal offset at which the ray reached the
// surface. It is only meaningful for StatusReachedSurface paths.
func (p *Path) SurfaceOffset() float64 {
	return p.Vertices[len(p.Vertices)-1].Offset
}

// InvalidAngleError indicates an incidence angle outside [0°, 90°).
type InvalidAngleError struct {
	AngleDeg float64
}

func (e *InvalidAngleError) Error() string {
	return fmt.Sprintf("raytrace: incidence angle %.2f° outside [0°, 90°)", e.AngleDeg)
}

// TrappedRayError is returned by TraceToSurface when the ray cannot exit
// the stack within the reflection bound.
type TrappedRayError struct {
	Reflections int
}

func (e *TrappedRayError) Error() string {
	return fmt.Sprintf("raytrace: ray trapped after %d reflections", e.Reflections)
}

// Tracer computes ray paths through a single model. A Tracer holds no
// mutable state across calls, so one Tracer may serve concurrent traces.
type Tracer struct {
	model          *geomodel.Model
	maxReflections int
}

// NewTracer creates a tracer for the given model. The reflection bound
// defaults to four direction flips per layer.
func NewTracer(m *geomodel.Model) *Tracer {
	return &Tracer{
		model:          m,
		maxReflections: 4 * m.LayerCount(),
	}
}

// SetReflectionBound overrides the number of total internal reflections
// tolerated before a ray is declared trapped.
func (t *Tracer) SetReflectionBound(n int) {
	t.maxReflections = n
}

// Trace propagates a ray launched upward from the source at the given
// incidence angle in degrees from vertical. An angle of 0° is valid and
// produces a purely vertical path; angles at or beyond 90° never reach the
// surface and fail with InvalidAngleError. A trapped ray is a normal
// terminal classification here, not an error.
func (t *Tracer) Trace(angleDeg float64) (*Path, error) {
	if angleDeg < 0 || angleDeg >= 90 {
		return nil, &InvalidAngleError{AngleDeg: angleDeg}
	}

	m := t.model
	angle := angleDeg * math.Pi / 180
	layer := m.SourceLayer()
	up := true
	offset := 0.0
	alt := m.SourceDepth()
	reflections := 0

	path := &Path{
		Vertices: []Vertex{{Offset: 0, Altitude: alt, Angle: angleDeg, Kind: VertexSource}},
	}

	for {
		// Travel to the boundary ahead of the ray. In the source layer
		// this is a partial thickness; afterwards the ray always enters
		// at one boundary and exits at the other.
		l := m.LayerAt(layer)
		exitAlt := l.Top
		if !up {
			exitAlt = l.Base
		}
		thickness := math.Abs(exitAlt - alt)
		offset += thickness * math.Tan(angle)
		alt = exitAlt

		if up && layer == m.LayerCount()-1 {
			path.Vertices = append(path.Vertices, Vertex{
				Offset: offset, Altitude: alt, Angle: degrees(angle), Kind: VertexSurface,
			})
			path.Status = StatusReachedSurface
			return path, nil
		}
		if !up && layer == 0 {
			// The ray leaves the stack through its bottom and cannot
			// come back.
			path.Vertices = append(path.Vertices, Vertex{
				Offset: offset, Altitude: alt, Angle: degrees(angle), Kind: VertexRefraction,
			})
			path.Status = StatusTrapped
			return path, nil
		}

		next := layer + 1
		if !up {
			next = layer - 1
		}
		sinNext := math.Sin(angle) * m.LayerAt(next).Velocity / l.Velocity

		// An angle exactly at critical would refract parallel to the
		// boundary and never cross it, so it reflects too.
		if sinNext >= 1 {
			path.Vertices = append(path.Vertices, Vertex{
				Offset: offset, Altitude: alt, Angle: degrees(angle), Kind: VertexReflection,
			})
			reflections++
			if reflections > t.maxReflections {
				path.Status = StatusTrapped
				return path, nil
			}
			up = !up
			continue
		}

		path.Vertices = append(path.Vertices, Vertex{
			Offset: offset, Altitude: alt, Angle: degrees(angle), Kind: VertexRefraction,
		})
		angle = math.Asin(sinNext)
		layer = next
	}
}

// TraceToSurface is the strict variant of Trace: a trapped ray is an error.
// The partial path is still returned alongside the TrappedRayError so the
// caller can inspect where the ray was lost.
func (t *Tracer) TraceToSurface(angleDeg float64) (*Path, error) {
	path, err := t.Trace(angleDeg)
	if err != nil {
		return nil, err
	}
	if path.Status != StatusReachedSurface {
		reflections := 0
		for _, v := range path.Vertices {
			if v.Kind == VertexReflection {
				reflections++
			}
		}
		return path, &TrappedRayError{Reflections: reflections}
	}
	return path, nil
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
