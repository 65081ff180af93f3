package ramp

import (
	"encoding/json"
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Preset(t *testing.T) {
	hue, err := Preset("hue")
	require.NoError(t, err)
	stops := hue.Stops()
	require.Len(t, stops, 7)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 255, A: 255}, stops[0].Color)
	assert.Equal(t, float64(0), stops[0].Position)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, stops[6].Color)
	assert.Equal(t, float64(1), stops[6].Position)
}

func Test_Preset_unknown(t *testing.T) {
	_, err := Preset("nope")
	require.Error(t, err)
	var unknownErr *UnknownPresetError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "nope", unknownErr.ID)
}

func Test_PresetIDs(t *testing.T) {
	ids := PresetIDs()
	assert.Equal(t, []string{"aqua", "hue", "terrain", "viridis"}, ids)
	assert.Contains(t, ids, DefaultPreset)
}

func Test_Definition_opacityDefaults(t *testing.T) {
	var definition Definition
	err := json.Unmarshal([]byte(`{
		"id": "custom",
		"stops": [
			{ "position": 0, "color": "#000000" },
			{ "position": 1, "color": "#FFFFFF", "opacity": 0.5 }
		]
	}`), &definition)
	require.NoError(t, err)
	require.Len(t, definition.Stops, 2)
	assert.Equal(t, float64(1), definition.Stops[0].Opacity)
	assert.Equal(t, 0.5, definition.Stops[1].Opacity)

	r, err := definition.Ramp()
	require.NoError(t, err)
	assert.Equal(t, uint8(255), r.Stops()[0].Color.A)
	assert.Equal(t, uint8(128), r.Stops()[1].Color.A)
}

func Test_Definition_invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing id", `{"stops": [{"position": 0, "color": "#000000"}, {"position": 1, "color": "#FFFFFF"}]}`},
		{"single stop", `{"id": "x", "stops": [{"position": 0, "color": "#000000"}]}`},
		{"position out of range", `{"id": "x", "stops": [{"position": 0, "color": "#000000"}, {"position": 2, "color": "#FFFFFF"}]}`},
		{"bad color", `{"id": "x", "stops": [{"position": 0, "color": "black"}, {"position": 1, "color": "#FFFFFF"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var definition Definition
			assert.Error(t, json.Unmarshal([]byte(tt.json), &definition))
		})
	}
}

func Test_Preset_allValid(t *testing.T) {
	for _, id := range PresetIDs() {
		r, err := Preset(id)
		require.NoError(t, err, id)
		assert.GreaterOrEqual(t, len(r.Stops()), 2, id)
	}
}
