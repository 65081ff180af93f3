package kml

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/ramp"
)

func Test_FormatLegendValue(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"tiny values go scientific", 0.001, "1.00E-03"},
		{"tiny negative", -0.005, "-5.00E-03"},
		{"zero", 0, "0.00"},
		{"small", 5.678, "5.68"},
		{"medium", 50.12, "50.1"},
		{"large", 500.9, "501"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLegendValue(tt.v))
		})
	}
}

func legendClassification(t *testing.T) *classify.Classification {
	t.Helper()
	colorer := ramp.MustNew([]ramp.Stop{
		{Position: 0, Color: color.NRGBA{A: 255}},
		{Position: 1, Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	})
	summary, err := classify.Summarize([]float64{0, 5, 10})
	require.NoError(t, err)
	cls, err := classify.Generate(colorer, summary, classify.EqualInterval, 2)
	require.NoError(t, err)
	return cls
}

func Test_IntervalColorMap(t *testing.T) {
	cm := IntervalColorMap(legendClassification(t), -9999, 0.8)
	assert.Equal(t, "intervals", cm.Type)
	require.Len(t, cm.Entries, 3)

	noData := cm.Entries[0]
	assert.Equal(t, "#000000", noData.Color)
	assert.Equal(t, "-9999", noData.Quantity)
	assert.Equal(t, "No Data", noData.Label)
	assert.Equal(t, "0.0", noData.Opacity)

	assert.Equal(t, "5", cm.Entries[1].Quantity)
	assert.Equal(t, "10", cm.Entries[2].Quantity)
	assert.Equal(t, "0.8", cm.Entries[1].Opacity)
}

func Test_ValuesColorMap(t *testing.T) {
	colorer := ramp.MustNew([]ramp.Stop{
		{Position: 0, Color: color.NRGBA{A: 255}},
		{Position: 1, Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	})
	summary, err := classify.Summarize([]float64{1, 2, 2, 3})
	require.NoError(t, err)
	cls, err := classify.Generate(colorer, summary, classify.UniqueValues, 0)
	require.NoError(t, err)

	cm := ValuesColorMap(cls, -9999, 1)
	assert.Equal(t, "values", cm.Type)
	require.Len(t, cm.Entries, 4)
	assert.Equal(t, "1", cm.Entries[1].Quantity)
	assert.Equal(t, "2", cm.Entries[2].Quantity)
	assert.Equal(t, "3", cm.Entries[3].Quantity)
}
