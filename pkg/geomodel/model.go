// Package geomodel provides a validated, immutable representation of a
// horizontally layered seismic velocity model and the position of a point
// source within it. Layers are ordered deepest-first and must form a
// contiguous stack: each layer's top altitude is the next layer's base.
package geomodel

import "fmt"

// Layer is a horizontal slab of constant wave velocity. Altitudes are in
// meters with more negative values being deeper; velocity is in m/s.
type Layer struct {
	Base     float64 `json:"base"`
	Top      float64 `json:"top"`
	Velocity float64 `json:"velocity"`
}

// Thickness returns the vertical extent of the layer in meters.
func (l Layer) Thickness() float64 {
	return l.Top - l.Base
}

// Model is a validated layer stack plus the source position. It is
// immutable after construction, so concurrent traces may share one Model
// without coordination.
type Model struct {
	layers      []Layer
	sourceDepth float64
	sourceLayer int
}

// New validates the deepest-first layer sequence and the source depth and
// builds a Model. It returns an InvalidModelError naming the offending
// layer when a layer is malformed or the stack has a gap or overlap, and a
// SourceOutOfRangeError when the source depth lies outside the stack.
func New(layers []Layer, sourceDepth float64) (*Model, error) {
	if len(layers) == 0 {
		return nil, &InvalidModelError{Index: 0, Reason: "model has no layers"}
	}

	for i, l := range layers {
		if l.Top <= l.Base {
			return nil, &InvalidModelError{
				Index:  i,
				Reason: fmt.Sprintf("top altitude %.2f not above base altitude %.2f", l.Top, l.Base),
			}
		}
		if l.Velocity <= 0 {
			return nil, &InvalidModelError{
				Index:  i,
				Reason: fmt.Sprintf("velocity %.2f is not positive", l.Velocity),
			}
		}
		if i > 0 && layers[i-1].Top != l.Base {
			return nil, &InvalidModelError{
				Index:  i,
				Reason: fmt.Sprintf("base altitude %.2f does not meet layer %d top altitude %.2f", l.Base, i-1, layers[i-1].Top),
			}
		}
	}

	m := &Model{
		layers:      append([]Layer(nil), layers...),
		sourceDepth: sourceDepth,
	}

	idx, err := m.LayerContaining(sourceDepth)
	if err != nil {
		return nil, &SourceOutOfRangeError{
			SourceDepth: sourceDepth,
			Bottom:      m.Bottom(),
			Surface:     m.Surface(),
		}
	}
	m.sourceLayer = idx

	return m, nil
}

// FromTriples builds a Model from raw [base, top, velocity] triples ordered
// deepest-first, as they arrive from configuration files or request bodies.
func FromTriples(triples [][]float64, sourceDepth float64) (*Model, error) {
	layers := make([]Layer, len(triples))
	for i, t := range triples {
		if len(t) != 3 {
			return nil, &InvalidModelError{
				Index:  i,
				Reason: fmt.Sprintf("expected [base, top, velocity], got %d values", len(t)),
			}
		}
		layers[i] = Layer{Base: t[0], Top: t[1], Velocity: t[2]}
	}
	return New(layers, sourceDepth)
}

// LayerContaining returns the index of the layer whose altitude interval
// contains alt. Intervals are half-open [base, top), so an altitude exactly
// on a boundary belongs to the upper layer; the shallowest layer also
// includes its own top altitude.
func (m *Model) LayerContaining(alt float64) (int, error) {
	for i, l := range m.layers {
		if alt >= l.Base && alt < l.Top {
			return i, nil
		}
	}
	if alt == m.Surface() {
		return len(m.layers) - 1, nil
	}
	return 0, &AltitudeOutOfRangeError{Altitude: alt, Bottom: m.Bottom(), Surface: m.Surface()}
}

// LayerAt returns the layer at index i, deepest-first.
func (m *Model) LayerAt(i int) Layer {
	return m.layers[i]
}

// LayerCount returns the number of layers in the stack.
func (m *Model) LayerCount() int {
	return len(m.layers)
}

// SourceDepth returns the source altitude in meters.
func (m *Model) SourceDepth() float64 {
	return m.sourceDepth
}

// SourceLayer returns the index of the layer containing the source.
func (m *Model) SourceLayer() int {
	return m.sourceLayer
}

// Bottom returns the base altitude of the deepest layer.
func (m *Model) Bottom() float64 {
	return m.layers[0].Base
}

// Surface returns the top altitude of the shallowest layer.
func (m *Model) Surface() float64 {
	return m.layers[len(m.layers)-1].Top
}

// Layers returns a copy of the layer stack, deepest-first.
func (m *Model) Layers() []Layer {
	return append([]Layer(nil), m.layers...)
}
