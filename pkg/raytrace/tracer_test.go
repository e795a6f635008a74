package raytrace

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/seismotools/raypath/pkg/geomodel"
)

func mustModel(t *testing.T, layers []geomodel.Layer, sourceDepth float64) *geomodel.Model {
	t.Helper()
	m, err := geomodel.New(layers, sourceDepth)
	if err != nil {
		t.Fatalf("geomodel.New() error: %v", err)
	}
	return m
}

// A single homogeneous layer is a straight-line problem: the surface offset
// must equal thickness * tan(angle).
func TestSingleLayerStraightLine(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -1000, Top: 0, Velocity: 1500},
	}, -1000)

	angleDeg := 30.0
	path, err := NewTracer(m).Trace(angleDeg)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if path.Status != StatusReachedSurface {
		t.Fatalf("Status = %q, want %q", path.Status, StatusReachedSurface)
	}
	if len(path.Vertices) != 2 {
		t.Fatalf("len(Vertices) = %d, want 2", len(path.Vertices))
	}
	want := 1000 * math.Tan(angleDeg*math.Pi/180)
	if got := path.SurfaceOffset(); got != want {
		t.Errorf("SurfaceOffset() = %v, want %v", got, want)
	}
}

func TestInvalidAngles(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -1000, Top: 0, Velocity: 1500},
	}, -500)
	tracer := NewTracer(m)

	for _, angle := range []float64{90, 95, 180, -5} {
		_, err := tracer.Trace(angle)
		var invalid *InvalidAngleError
		if !errors.As(err, &invalid) {
			t.Errorf("Trace(%v) error = %v, want InvalidAngleError", angle, err)
		}
	}
}

// A vertical ray never moves horizontally.
func TestVerticalRay(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -2500, Top: -2200, Velocity: 3000},
		{Base: -2200, Top: -1800, Velocity: 2500},
		{Base: -1800, Top: -1000, Velocity: 2000},
	}, -2300)

	path, err := NewTracer(m).Trace(0)
	if err != nil {
		t.Fatalf("Trace(0) error: %v", err)
	}
	if path.Status != StatusReachedSurface {
		t.Fatalf("Status = %q, want %q", path.Status, StatusReachedSurface)
	}
	for i, v := range path.Vertices {
		if v.Offset != 0 {
			t.Errorf("vertex %d: Offset = %v, want 0", i, v.Offset)
		}
	}
}

// Past the critical angle the boundary reflects instead of producing a
// refraction angle with sin > 1.
func TestTotalInternalReflection(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -200, Top: -100, Velocity: 2000},
		{Base: -100, Top: 0, Velocity: 4000},
	}, -200)

	// critical angle is asin(2000/4000) = 30°
	path, err := NewTracer(m).Trace(45)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if path.Status != StatusTrapped {
		t.Fatalf("Status = %q, want %q", path.Status, StatusTrapped)
	}

	var sawReflection bool
	for _, v := range path.Vertices {
		if v.Kind == VertexReflection {
			sawReflection = true
			if v.Altitude != -100 {
				t.Errorf("reflection at altitude %v, want -100", v.Altitude)
			}
		}
	}
	if !sawReflection {
		t.Error("expected a reflection vertex at the fast boundary")
	}
}

// An angle exactly at critical reflects rather than refracting parallel to
// the boundary.
func TestExactCriticalAngleReflects(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -200, Top: -100, Velocity: 2000},
		{Base: -100, Top: 0, Velocity: 4000},
	}, -200)

	path, err := NewTracer(m).Trace(30)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if path.Status != StatusTrapped {
		t.Errorf("Status = %q, want %q", path.Status, StatusTrapped)
	}
}

func TestEndToEndThreeLayerModel(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -2500, Top: -2200, Velocity: 3000},
		{Base: -2200, Top: -1800, Velocity: 2500},
		{Base: -1800, Top: -1000, Velocity: 2000},
	}, -2300)

	path, err := NewTracer(m).Trace(39.85)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if path.Status != StatusReachedSurface {
		t.Fatalf("Status = %q, want %q", path.Status, StatusReachedSurface)
	}
	if len(path.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4", len(path.Vertices))
	}

	wantAltitudes := []float64{-2300, -2200, -1800, -1000}
	for i, v := range path.Vertices {
		if v.Altitude != wantAltitudes[i] {
			t.Errorf("vertex %d: Altitude = %v, want %v", i, v.Altitude, wantAltitudes[i])
		}
	}
	for i := 1; i < len(path.Vertices); i++ {
		if path.Vertices[i].Altitude <= path.Vertices[i-1].Altitude {
			t.Errorf("altitudes not strictly increasing at vertex %d", i)
		}
		if path.Vertices[i].Offset <= path.Vertices[i-1].Offset {
			t.Errorf("offsets not strictly increasing at vertex %d", i)
		}
	}

	// Velocity decreases toward the surface, so the refraction angle must
	// shrink at every boundary.
	for i := 1; i < len(path.Vertices); i++ {
		if path.Vertices[i].Angle >= path.Vertices[i-1].Angle {
			t.Errorf("angle did not decrease at vertex %d: %v -> %v",
				i, path.Vertices[i-1].Angle, path.Vertices[i].Angle)
		}
	}
}

func TestDeterminism(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -2500, Top: -2200, Velocity: 3000},
		{Base: -2200, Top: -1800, Velocity: 2500},
		{Base: -1800, Top: -1000, Velocity: 2000},
	}, -2300)
	tracer := NewTracer(m)

	first, err := tracer.Trace(39.85)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	second, err := tracer.Trace(39.85)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two traces of identical inputs differ")
	}
}

// A low-velocity channel reflects the ray at both of its boundaries, so the
// ray oscillates until the reflection bound trips.
func TestTrappedInLowVelocityChannel(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -300, Top: -200, Velocity: 3000},
		{Base: -200, Top: -100, Velocity: 1000},
		{Base: -100, Top: 0, Velocity: 3000},
	}, -150)

	tracer := NewTracer(m)
	path, err := tracer.Trace(45)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if path.Status != StatusTrapped {
		t.Fatalf("Status = %q, want %q", path.Status, StatusTrapped)
	}

	reflections := 0
	for _, v := range path.Vertices {
		if v.Kind == VertexReflection {
			reflections++
		}
	}
	if reflections == 0 || reflections > 4*m.LayerCount()+1 {
		t.Errorf("reflections = %d, want within (0, %d]", reflections, 4*m.LayerCount()+1)
	}

	// The strict variant turns the trapped classification into an error.
	_, err = tracer.TraceToSurface(45)
	var trapped *TrappedRayError
	if !errors.As(err, &trapped) {
		t.Fatalf("TraceToSurface() error = %v, want TrappedRayError", err)
	}
}

// A ray reflected downward that out-runs the bottom of the stack is trapped,
// with strictly decreasing altitudes on the downward excursion.
func TestReflectedRayExitsBottom(t *testing.T) {
	m := mustModel(t, []geomodel.Layer{
		{Base: -200, Top: -100, Velocity: 2000},
		{Base: -100, Top: 0, Velocity: 4000},
	}, -150)

	path, err := NewTracer(m).Trace(45)
	if err != nil {
		t.Fatalf("Trace() error: %v", err)
	}
	if path.Status != StatusTrapped {
		t.Fatalf("Status = %q, want %q", path.Status, StatusTrapped)
	}

	last := path.Vertices[len(path.Vertices)-1]
	if last.Altitude != -200 {
		t.Errorf("terminal altitude = %v, want -200 (bottom of stack)", last.Altitude)
	}

	// up to the reflection, altitudes increase; after it, they decrease
	var flipped bool
	for i := 1; i < len(path.Vertices); i++ {
		prev, cur := path.Vertices[i-1], path.Vertices[i]
		if cur.Kind == VertexReflection {
			flipped = true
			continue
		}
		if !flipped && cur.Altitude <= prev.Altitude {
			t.Errorf("upward leg not strictly increasing at vertex %d", i)
		}
		if flipped && cur.Altitude >= prev.Altitude {
			t.Errorf("downward leg not strictly decreasing at vertex %d", i)
		}
	}
}
