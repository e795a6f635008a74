package geomodel

import (
	"errors"
	"testing"
)

func validLayers() []Layer {
	return []Layer{
		{Base: -2500, Top: -2200, Velocity: 3000},
		{Base: -2200, Top: -1800, Velocity: 2500},
		{Base: -1800, Top: -1000, Velocity: 2000},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name        string
		layers      []Layer
		sourceDepth float64
		wantErr     error
		wantIndex   int
	}{
		{
			name:        "valid three-layer stack",
			layers:      validLayers(),
			sourceDepth: -2300,
		},
		{
			name:        "empty stack",
			layers:      nil,
			sourceDepth: 0,
			wantErr:     &InvalidModelError{},
		},
		{
			name: "top not above base",
			layers: []Layer{
				{Base: -100, Top: -100, Velocity: 1500},
			},
			sourceDepth: -100,
			wantErr:     &InvalidModelError{},
			wantIndex:   0,
		},
		{
			name: "non-positive velocity",
			layers: []Layer{
				{Base: -200, Top: -100, Velocity: 1500},
				{Base: -100, Top: 0, Velocity: 0},
			},
			sourceDepth: -150,
			wantErr:     &InvalidModelError{},
			wantIndex:   1,
		},
		{
			name: "gap between layers",
			layers: []Layer{
				{Base: -300, Top: -200, Velocity: 2000},
				{Base: -150, Top: 0, Velocity: 1500},
			},
			sourceDepth: -250,
			wantErr:     &InvalidModelError{},
			wantIndex:   1,
		},
		{
			name: "overlapping layers",
			layers: []Layer{
				{Base: -300, Top: -200, Velocity: 2000},
				{Base: -250, Top: 0, Velocity: 1500},
			},
			sourceDepth: -250,
			wantErr:     &InvalidModelError{},
			wantIndex:   1,
		},
		{
			name:        "source below stack",
			layers:      validLayers(),
			sourceDepth: -3000,
			wantErr:     &SourceOutOfRangeError{},
		},
		{
			name:        "source above stack",
			layers:      validLayers(),
			sourceDepth: -500,
			wantErr:     &SourceOutOfRangeError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.layers, tt.sourceDepth)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("New() unexpected error: %v", err)
				}
				if m.LayerCount() != len(tt.layers) {
					t.Errorf("LayerCount() = %d, want %d", m.LayerCount(), len(tt.layers))
				}
				return
			}
			if err == nil {
				t.Fatal("New() expected error, got nil")
			}
			var invalid *InvalidModelError
			var outOfRange *SourceOutOfRangeError
			switch tt.wantErr.(type) {
			case *InvalidModelError:
				if !errors.As(err, &invalid) {
					t.Fatalf("New() error = %v, want InvalidModelError", err)
				}
				if invalid.Index != tt.wantIndex {
					t.Errorf("InvalidModelError.Index = %d, want %d", invalid.Index, tt.wantIndex)
				}
			case *SourceOutOfRangeError:
				if !errors.As(err, &outOfRange) {
					t.Fatalf("New() error = %v, want SourceOutOfRangeError", err)
				}
			}
		})
	}
}

func TestLayerContaining(t *testing.T) {
	m, err := New(validLayers(), -2300)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		name    string
		alt     float64
		want    int
		wantErr bool
	}{
		{name: "inside deepest layer", alt: -2300, want: 0},
		{name: "inside middle layer", alt: -2000, want: 1},
		{name: "boundary belongs to upper layer", alt: -2200, want: 1},
		{name: "surface belongs to top layer", alt: -1000, want: 2},
		{name: "below stack", alt: -2600, wantErr: true},
		{name: "above stack", alt: -900, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.LayerContaining(tt.alt)
			if tt.wantErr {
				var oor *AltitudeOutOfRangeError
				if !errors.As(err, &oor) {
					t.Fatalf("LayerContaining(%v) error = %v, want AltitudeOutOfRangeError", tt.alt, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LayerContaining(%v) error: %v", tt.alt, err)
			}
			if got != tt.want {
				t.Errorf("LayerContaining(%v) = %d, want %d", tt.alt, got, tt.want)
			}
		})
	}
}

func TestSourceOnBoundaryBelongsToUpperLayer(t *testing.T) {
	m, err := New(validLayers(), -2200)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if m.SourceLayer() != 1 {
		t.Errorf("SourceLayer() = %d, want 1", m.SourceLayer())
	}
}

func TestFromTriples(t *testing.T) {
	m, err := FromTriples([][]float64{
		{-2500, -2200, 3000},
		{-2200, -1800, 2500},
	}, -2400)
	if err != nil {
		t.Fatalf("FromTriples() error: %v", err)
	}
	if m.Surface() != -1800 {
		t.Errorf("Surface() = %v, want -1800", m.Surface())
	}
	if m.Bottom() != -2500 {
		t.Errorf("Bottom() = %v, want -2500", m.Bottom())
	}

	_, err = FromTriples([][]float64{{-2500, -2200}}, -2400)
	var invalid *InvalidModelError
	if !errors.As(err, &invalid) {
		t.Fatalf("FromTriples() with short triple: error = %v, want InvalidModelError", err)
	}
}
