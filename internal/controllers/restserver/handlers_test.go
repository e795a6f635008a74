package restserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/seismotools/raypath/pkg/config"
	"go.uber.org/zap"
)

func testHandlers() *Handlers {
	ctrl := &Controller{
		Models: map[string]config.ModelData{
			"north-basin": {
				Name:        "north-basin",
				SourceDepth: -2300,
				Layers: []config.LayerData{
					{Base: -2500, Top: -2200, Velocity: 3000},
					{Base: -2200, Top: -1800, Velocity: 2500},
					{Base: -1800, Top: -1000, Velocity: 2000},
				},
			},
		},
		logger: zap.NewNop().Sugar(),
	}
	return NewHandlers(ctrl)
}

func TestPostTraceNamedModel(t *testing.T) {
	h := testHandlers()

	body := `{"model": "north-basin", "angle": 39.85}`
	req := httptest.NewRequest(http.MethodPost, "/trace", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.PostTrace(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp TraceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "reached_surface" {
		t.Errorf("Status = %q, want reached_surface", resp.Status)
	}
	if len(resp.Vertices) != 4 {
		t.Errorf("len(Vertices) = %d, want 4", len(resp.Vertices))
	}
	if resp.ID == "" {
		t.Error("response has no trace ID")
	}
}

func TestPostTraceInlineModel(t *testing.T) {
	h := testHandlers()

	body := `{"layers": [[-1000, 0, 1500]], "source_depth": -1000, "angle": 30}`
	req := httptest.NewRequest(http.MethodPost, "/trace", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.PostTrace(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestPostTraceErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown model", body: `{"model": "nowhere", "angle": 30}`},
		{name: "angle at grazing", body: `{"model": "north-basin", "angle": 90}`},
		{name: "no model at all", body: `{"angle": 30}`},
		{name: "inline without depth", body: `{"layers": [[-1000, 0, 1500]], "angle": 30}`},
		{name: "gap in layers", body: `{"layers": [[-1000, -600, 1500], [-500, 0, 1200]], "source_depth": -800, "angle": 30}`},
	}

	h := testHandlers()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/trace", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.PostTrace(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetModel(t *testing.T) {
	h := testHandlers()
	router := mux.NewRouter()
	router.HandleFunc("/models/{name}", h.GetModel).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/models/north-basin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/models/missing", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
