// Package ramp implements color ramps: ordered palettes that map a normalized
// position to an RGBA color by linear interpolation between control stops.
// Stop positions are always normalized to the interval [0,1]; mapping data
// values onto that interval is the caller's concern (see package classify).
package ramp

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/CI-WATER/mapkit/mathhelp"
)

// Colorer produces a color for a normalized position t in [0,1].
// Both preset and custom ramps satisfy it.
type Colorer interface {
	At(t float64) color.NRGBA
}

// Stop is a color ramp control point at a position in [0,1].
type Stop struct {
	Position float64
	Color    color.NRGBA
}

// InvalidRampError is returned when a ramp is constructed from a malformed
// stop list.
type InvalidRampError struct {
	Reason string
}

func (e *InvalidRampError) Error() string {
	return "invalid color ramp: " + e.Reason
}

// ColorRamp is an immutable ordered sequence of at least 2 stops with
// strictly increasing positions. A ColorRamp may be shared across
// simultaneous renders without locking.
type ColorRamp struct {
	stops []Stop
}

// New validates the given stops and returns a ColorRamp over a private copy
// of them.
func New(stops []Stop) (*ColorRamp, error) {
	if len(stops) < 2 {
		return nil, &InvalidRampError{Reason: fmt.Sprintf("needs at least 2 stops, got %d", len(stops))}
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Position == stops[i-1].Position {
			return nil, &InvalidRampError{Reason: fmt.Sprintf("duplicate stop position %v", stops[i].Position)}
		}
		if stops[i].Position < stops[i-1].Position {
			return nil, &InvalidRampError{Reason: fmt.Sprintf("stop positions not increasing at index %d", i)}
		}
	}
	owned := make([]Stop, len(stops))
	copy(owned, stops)
	return &ColorRamp{stops: owned}, nil
}

// MustNew is New for statically known stop lists.
func MustNew(stops []Stop) *ColorRamp {
	r, err := New(stops)
	if err != nil {
		panic(err)
	}
	return r
}

// At returns the interpolated color at position t. Positions below the first
// stop or above the last clamp to the nearest stop's color.
func (r *ColorRamp) At(t float64) color.NRGBA {
	stops := r.stops
	if t <= stops[0].Position {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Position {
		return last.Color
	}
	// index of the first stop at or beyond t; the loop above guarantees 1 <= hi < len
	hi := sort.Search(len(stops), func(i int) bool { return stops[i].Position >= t })
	lo := hi - 1
	span := stops[hi].Position - stops[lo].Position
	return lerpColor(stops[lo].Color, stops[hi].Color, (t-stops[lo].Position)/span)
}

// Stops returns a copy of the ramp's control points.
func (r *ColorRamp) Stops() []Stop {
	stops := make([]Stop, len(r.stops))
	copy(stops, r.stops)
	return stops
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: lerpChannel(a.A, b.A, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(mathhelp.Lerp(float64(a), float64(b), t)))
}
