package render

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CI-WATER/mapkit/classify"
)

func squareAt(x float64) geom.Polygon {
	return geom.Polygon{{{x, 0}, {x + 1, 0}, {x + 1, 1}, {x, 1}}}
}

// ten features, two without a usable depth value
func depthFeatures() []Feature {
	features := make([]Feature, 0, 10)
	for i := 0; i < 8; i++ {
		features = append(features, Feature{
			ID:         int64(i + 1),
			Geometry:   squareAt(float64(i)),
			Attributes: map[string]interface{}{"depth": float64(i + 1)},
		})
	}
	features = append(features, Feature{
		ID:         9,
		Geometry:   squareAt(8),
		Attributes: map[string]interface{}{"name": "no depth here"},
	})
	features = append(features, Feature{
		ID:         10,
		Geometry:   squareAt(9),
		Attributes: map[string]interface{}{"depth": "quite deep"},
	})
	return features
}

func Test_NumericAttribute(t *testing.T) {
	f := Feature{Attributes: map[string]interface{}{
		"float":   1.5,
		"int":     int64(3),
		"numeric": "2.25",
		"text":    "abc",
		"null":    nil,
	}}

	tests := []struct {
		name      string
		key       string
		wantValue float64
		wantState AttributeState
	}{
		{"float", "float", 1.5, AttributePresent},
		{"integer", "int", 3, AttributePresent},
		{"numeric string", "numeric", 2.25, AttributePresent},
		{"non-numeric string", "text", 0, AttributeNonNumeric},
		{"null", "null", 0, AttributeMissing},
		{"absent", "nope", 0, AttributeMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, state := NumericAttribute(f, tt.key)
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func Test_CollectValues(t *testing.T) {
	values := CollectValues(depthFeatures(), "depth")
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, values)
}

func Test_Dataset(t *testing.T) {
	features := depthFeatures()
	summary, err := classify.Summarize(CollectValues(features, "depth"))
	require.NoError(t, err)
	cls, err := classify.Generate(grayscale(t), summary, classify.EqualInterval, 4)
	require.NoError(t, err)

	result := Dataset(features, "depth", cls)

	// every feature survives, in input order
	require.Len(t, result.Features, 10)
	for i, sf := range result.Features {
		assert.Equal(t, int64(i+1), sf.Feature.ID)
	}

	for _, sf := range result.Features[:8] {
		assert.True(t, sf.HasValue)
		assert.Equal(t, cls.Color(sf.Value), sf.Color)
	}
	for _, sf := range result.Features[8:] {
		assert.False(t, sf.HasValue)
		assert.Equal(t, NoDataColor, sf.Color)
	}

	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], `"depth" missing`)
	assert.Contains(t, result.Warnings[1], `"depth" is not numeric`)
}
