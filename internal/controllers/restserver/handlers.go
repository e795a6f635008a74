package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/seismotools/raypath/internal/types"
	"github.com/seismotools/raypath/pkg/config"
	"github.com/seismotools/raypath/pkg/geomodel"
	"github.com/seismotools/raypath/pkg/raytrace"
	"github.com/seismotools/raypath/pkg/responseformat"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// TraceRequest is the body of POST /trace. Either Model names a configured
// model, or Layers supplies inline [base, top, velocity] triples, deepest
// first. SourceDepth overrides the configured model's default when set.
type TraceRequest struct {
	Model       string      `json:"model,omitempty"`
	Layers      [][]float64 `json:"layers,omitempty"`
	SourceDepth *float64    `json:"source_depth,omitempty"`
	Angle       float64     `json:"angle"`
}

// TraceResponse is the reply to POST /trace
type TraceResponse struct {
	ID       string            `json:"id"`
	Model    string            `json:"model,omitempty"`
	Angle    float64           `json:"angle"`
	Status   raytrace.Status   `json:"status"`
	Vertices []raytrace.Vertex `json:"vertices"`
}

// PostTrace computes a ray path for the requested model and angle and
// returns the vertex sequence for the renderer
func (h *Handlers) PostTrace(w http.ResponseWriter, req *http.Request) {
	var traceReq TraceRequest
	if err := json.NewDecoder(req.Body).Decode(&traceReq); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	model, modelName, err := h.resolveModel(&traceReq)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	path, err := raytrace.NewTracer(model).Trace(traceReq.Angle)
	if err != nil {
		var invalidAngle *raytrace.InvalidAngleError
		if errors.As(err, &invalidAngle) {
			h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
			return
		}
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	resp := TraceResponse{
		ID:       uuid.NewString(),
		Model:    modelName,
		Angle:    traceReq.Angle,
		Status:   path.Status,
		Vertices: path.Vertices,
	}

	h.archiveTrace(&resp, model.SourceDepth())

	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		h.controller.logger.Errorf("error writing trace response: %v", err)
	}
}

// resolveModel builds the geomodel for a trace request from either the
// configured model catalog or the inline layer triples
func (h *Handlers) resolveModel(traceReq *TraceRequest) (*geomodel.Model, string, error) {
	if traceReq.Model != "" && len(traceReq.Layers) > 0 {
		return nil, "", errors.New("request must name a model or supply layers, not both")
	}

	if traceReq.Model != "" {
		cfgModel, ok := h.controller.Models[traceReq.Model]
		if !ok {
			return nil, "", fmt.Errorf("no model named %q is configured", traceReq.Model)
		}
		sourceDepth := cfgModel.SourceDepth
		if traceReq.SourceDepth != nil {
			sourceDepth = *traceReq.SourceDepth
		}
		model, err := geomodel.New(configLayers(cfgModel.Layers), sourceDepth)
		if err != nil {
			return nil, "", err
		}
		return model, cfgModel.Name, nil
	}

	if len(traceReq.Layers) == 0 {
		return nil, "", errors.New("request must name a model or supply layers")
	}
	if traceReq.SourceDepth == nil {
		return nil, "", errors.New("inline models require source_depth")
	}
	model, err := geomodel.FromTriples(traceReq.Layers, *traceReq.SourceDepth)
	if err != nil {
		return nil, "", err
	}
	return model, "", nil
}

// archiveTrace hands the completed trace to the storage distributor
// without blocking the response
func (h *Handlers) archiveTrace(resp *TraceResponse, sourceDepth float64) {
	if h.controller.distributor == nil {
		return
	}

	vertices, err := json.Marshal(resp.Vertices)
	if err != nil {
		h.controller.logger.Errorf("error encoding vertices for archive: %v", err)
		return
	}

	record := types.TraceRecord{
		ID:          resp.ID,
		Timestamp:   time.Now(),
		ModelName:   resp.Model,
		SourceDepth: sourceDepth,
		Angle:       resp.Angle,
		Status:      string(resp.Status),
		VertexCount: len(resp.Vertices),
		Vertices:    string(vertices),
	}

	select {
	case h.controller.distributor <- record:
	default:
		h.controller.logger.Warnf("trace distributor full; trace %s not archived", resp.ID)
	}
}

// GetModels returns the configured model catalog
func (h *Handlers) GetModels(w http.ResponseWriter, req *http.Request) {
	models := make([]config.ModelData, 0, len(h.controller.Models))
	for _, m := range h.controller.Models {
		models = append(models, m)
	}
	if err := h.formatter.WriteResponse(w, req, models, nil); err != nil {
		h.controller.logger.Errorf("error writing models response: %v", err)
	}
}

// GetModel returns one configured model by name
func (h *Handlers) GetModel(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	model, ok := h.controller.Models[name]
	if !ok {
		h.formatter.WriteError(w, req, http.StatusNotFound, fmt.Sprintf("no model named %q is configured", name))
		return
	}
	if err := h.formatter.WriteResponse(w, req, model, nil); err != nil {
		h.controller.logger.Errorf("error writing model response: %v", err)
	}
}

// GetTraces returns the most recent archived traces
func (h *Handlers) GetTraces(w http.ResponseWriter, req *http.Request) {
	if !h.controller.DBEnabled {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "trace archive is not configured")
		return
	}

	limit := 50
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var records []types.TraceRecord
	if err := h.controller.DB.Order("time DESC").Limit(limit).Find(&records).Error; err != nil {
		h.controller.logger.Errorf("error querying trace archive: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error querying trace archive")
		return
	}

	if err := h.formatter.WriteResponse(w, req, records, nil); err != nil {
		h.controller.logger.Errorf("error writing traces response: %v", err)
	}
}

// GetTrace returns one archived trace by ID
func (h *Handlers) GetTrace(w http.ResponseWriter, req *http.Request) {
	if !h.controller.DBEnabled {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "trace archive is not configured")
		return
	}

	id := mux.Vars(req)["id"]
	var record types.TraceRecord
	err := h.controller.DB.Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.formatter.WriteError(w, req, http.StatusNotFound, fmt.Sprintf("no trace with id %q", id))
		return
	}
	if err != nil {
		h.controller.logger.Errorf("error querying trace archive: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error querying trace archive")
		return
	}

	if err := h.formatter.WriteResponse(w, req, record, nil); err != nil {
		h.controller.logger.Errorf("error writing trace response: %v", err)
	}
}

// GetHealth reports service liveness
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	status := map[string]any{
		"status":          "ok",
		"models":          len(h.controller.Models),
		"archive_enabled": h.controller.DBEnabled,
	}
	if err := h.formatter.WriteResponse(w, req, status, nil); err != nil {
		h.controller.logger.Errorf("error writing health response: %v", err)
	}
}

func configLayers(layers []config.LayerData) []geomodel.Layer {
	out := make([]geomodel.Layer, len(layers))
	for i, l := range layers {
		out[i] = geomodel.Layer{Base: l.Base, Top: l.Top, Velocity: l.Velocity}
	}
	return out
}
