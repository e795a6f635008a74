package geomodel

import "fmt"

// InvalidModelError indicates a malformed or non-contiguous layer stack.
// Index identifies the offending layer (deepest-first ordering).
type InvalidModelError struct {
	Index  int
	Reason string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("geomodel: invalid layer %d: %s", e.Index, e.Reason)
}

// SourceOutOfRangeError indicates a source depth outside the layer stack.
type SourceOutOfRangeError struct {
	SourceDepth float64
	Bottom      float64
	Surface     float64
}

func (e *SourceOutOfRangeError) Error() string {
	return fmt.Sprintf("geomodel: source depth %.2f m outside stack [%.2f, %.2f]",
		e.SourceDepth, e.Bottom, e.Surface)
}

// AltitudeOutOfRangeError indicates an altitude query outside the stack.
type AltitudeOutOfRangeError struct {
	Altitude float64
	Bottom   float64
	Surface  float64
}

func (e *AltitudeOutOfRangeError) Error() string {
	return fmt.Sprintf("geomodel: altitude %.2f m outside stack [%.2f, %.2f]",
		e.Altitude, e.Bottom, e.Surface)
}
