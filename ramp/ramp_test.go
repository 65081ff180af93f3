package ramp

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func Test_New_invalid(t *testing.T) {
	tests := []struct {
		name  string
		stops []Stop
	}{
		{"no stops", nil},
		{"one stop", []Stop{{Position: 0, Color: black}}},
		{"duplicate positions", []Stop{{Position: 0, Color: black}, {Position: 0.5, Color: white}, {Position: 0.5, Color: black}}},
		{"decreasing positions", []Stop{{Position: 0, Color: black}, {Position: 0.8, Color: white}, {Position: 0.2, Color: black}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.stops)
			require.Error(t, err)
			var rampErr *InvalidRampError
			assert.True(t, errors.As(err, &rampErr))
		})
	}
}

func Test_At(t *testing.T) {
	r := MustNew([]Stop{{Position: 0, Color: black}, {Position: 1, Color: white}})
	tests := []struct {
		name string
		t    float64
		want color.NRGBA
	}{
		{"first stop", 0, black},
		{"last stop", 1, white},
		{"midpoint", 0.5, color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
		{"clamped below", -0.5, black},
		{"clamped above", 1.5, white},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.At(tt.t))
		})
	}
}

// interpolated channels never leave the range spanned by the bracketing stops
func Test_At_channelsWithinStopBounds(t *testing.T) {
	r := MustNew([]Stop{
		{Position: 0, Color: color.NRGBA{R: 200, G: 10, B: 60, A: 255}},
		{Position: 0.4, Color: color.NRGBA{R: 20, G: 220, B: 40, A: 255}},
		{Position: 1, Color: color.NRGBA{R: 100, G: 100, B: 250, A: 128}},
	})
	stops := r.Stops()
	for _, tc := range []float64{0, 0.1, 0.25, 0.4, 0.41, 0.7, 0.99, 1} {
		c := r.At(tc)
		lo, hi := bracket(stops, tc)
		assertChannelBetween(t, c.R, lo.Color.R, hi.Color.R)
		assertChannelBetween(t, c.G, lo.Color.G, hi.Color.G)
		assertChannelBetween(t, c.B, lo.Color.B, hi.Color.B)
		assertChannelBetween(t, c.A, lo.Color.A, hi.Color.A)
	}
}

func bracket(stops []Stop, t float64) (lo, hi Stop) {
	lo, hi = stops[0], stops[0]
	for _, s := range stops {
		if s.Position <= t {
			lo = s
		}
	}
	for i := len(stops) - 1; i >= 0; i-- {
		if stops[i].Position >= t {
			hi = stops[i]
		}
	}
	return lo, hi
}

func assertChannelBetween(t *testing.T, c, a, b uint8) {
	t.Helper()
	if a > b {
		a, b = b, a
	}
	assert.GreaterOrEqual(t, c, a)
	assert.LessOrEqual(t, c, b)
}

func Test_Stops_returnsCopy(t *testing.T) {
	r := MustNew([]Stop{{Position: 0, Color: black}, {Position: 1, Color: white}})
	stops := r.Stops()
	stops[0].Color = white
	assert.Equal(t, black, r.At(0))
}
