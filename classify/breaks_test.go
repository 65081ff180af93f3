package classify

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CI-WATER/mapkit/ramp"
)

func grayscale(t *testing.T) *ramp.ColorRamp {
	t.Helper()
	return ramp.MustNew([]ramp.Stop{
		{Position: 0, Color: color.NRGBA{A: 255}},
		{Position: 1, Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	})
}

func summarize(t *testing.T, samples []float64) *Summary {
	t.Helper()
	s, err := Summarize(samples)
	require.NoError(t, err)
	return s
}

func assertContiguous(t *testing.T, c *Classification) {
	t.Helper()
	require.NotEmpty(t, c.Breaks)
	assert.Equal(t, c.Summary.Min, c.Breaks[0].Lower)
	assert.Equal(t, c.Summary.Max, c.Breaks[len(c.Breaks)-1].Upper)
	for i := 1; i < len(c.Breaks); i++ {
		assert.Equal(t, c.Breaks[i-1].Upper, c.Breaks[i].Lower, "break %d", i)
	}
}

func Test_Generate_equalInterval(t *testing.T) {
	s := summarize(t, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	c, err := Generate(grayscale(t), s, EqualInterval, 4)
	require.NoError(t, err)
	require.Len(t, c.Breaks, 4)
	assertContiguous(t, c)
	for i, b := range c.Breaks {
		assert.InDelta(t, 0.75, b.Upper-b.Lower, 1e-9, "break %d", i)
	}
	// the ramp is monotonic, so class colors must be strictly ordered too
	for i := 1; i < len(c.Breaks); i++ {
		assert.Greater(t, c.Breaks[i].Color.R, c.Breaks[i-1].Color.R)
	}
}

func Test_Generate_equalInterval_lastBreakClosesAtMax(t *testing.T) {
	// 0.1 steps do not divide evenly in binary floating point
	s := summarize(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7})
	c, err := Generate(grayscale(t), s, EqualInterval, 7)
	require.NoError(t, err)
	assert.Equal(t, s.Max, c.Breaks[len(c.Breaks)-1].Upper)
	assertContiguous(t, c)
}

func Test_Generate_quantile(t *testing.T) {
	s := summarize(t, []float64{1, 2, 2, 3, 5, 8, 13, 21})
	c, err := Generate(grayscale(t), s, Quantile, 4)
	require.NoError(t, err)
	require.Len(t, c.Breaks, 4)
	assertContiguous(t, c)
}

func Test_Generate_quantile_idempotent(t *testing.T) {
	samples := []float64{4, 1, 1, 3, 2, 5, 4, 4, 2}
	a, err := Generate(grayscale(t), summarize(t, samples), Quantile, 3)
	require.NoError(t, err)
	b, err := Generate(grayscale(t), summarize(t, samples), Quantile, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Breaks, b.Breaks)
}

func Test_Generate_quantile_heavyTies(t *testing.T) {
	// most samples equal, quantiles collapse onto the same value
	s := summarize(t, []float64{1, 1, 1, 1, 1, 1, 2, 3})
	c, err := Generate(grayscale(t), s, Quantile, 4)
	require.NoError(t, err)
	assertContiguous(t, c)
	for i := 1; i < len(c.Breaks); i++ {
		assert.GreaterOrEqual(t, c.Breaks[i].Upper, c.Breaks[i].Lower)
	}
}

func Test_Generate_uniqueValues(t *testing.T) {
	s := summarize(t, []float64{2, 1, 2, 3, 1})
	c, err := Generate(grayscale(t), s, UniqueValues, 0)
	require.NoError(t, err)
	require.Len(t, c.Breaks, 3)
	for i, want := range []float64{1, 2, 3} {
		assert.Equal(t, want, c.Breaks[i].Lower)
		assert.Equal(t, want, c.Breaks[i].Upper)
	}
}

func Test_Generate_constantSamples(t *testing.T) {
	s := summarize(t, []float64{5, 5, 5})
	c, err := Generate(grayscale(t), s, EqualInterval, 10)
	require.NoError(t, err)
	require.Len(t, c.Breaks, 1)
	assert.Equal(t, float64(5), c.Breaks[0].Lower)
	assert.Equal(t, float64(5), c.Breaks[0].Upper)
	assert.Equal(t, grayscale(t).At(0.5), c.Breaks[0].Color)
}

func Test_Generate_errors(t *testing.T) {
	_, err := Generate(grayscale(t), nil, EqualInterval, 4)
	assert.ErrorIs(t, err, ErrEmptySampleSet)

	s := summarize(t, []float64{1, 2})
	_, err = Generate(grayscale(t), s, EqualInterval, 1)
	assert.Error(t, err)

	_, err = Generate(grayscale(t), s, Method("bogus"), 4)
	assert.Error(t, err)
}

func Test_Find(t *testing.T) {
	s := summarize(t, []float64{0, 10})
	c, err := Generate(grayscale(t), s, EqualInterval, 4)
	require.NoError(t, err)

	tests := []struct {
		name string
		v    float64
		want int
	}{
		{"first break", 1, 0},
		{"shared bound goes to lower-index break", 2.5, 0},
		{"inner shared bound", 7.5, 2},
		{"last break", 9, 3},
		{"max", 10, 3},
		{"clamped below", -5, 0},
		{"clamped above", 15, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Find(tt.v))
			assert.Equal(t, c.Breaks[tt.want].Color, c.Color(tt.v))
		})
	}
}

func Test_ClassBreak_Contains(t *testing.T) {
	b := ClassBreak{Lower: 2, Upper: 5}
	assert.True(t, b.Contains(2))
	assert.True(t, b.Contains(5))
	assert.True(t, b.Contains(3.3))
	assert.False(t, b.Contains(5.1))
}

func Test_Labels(t *testing.T) {
	s := summarize(t, []float64{0, 10})
	c, err := Generate(grayscale(t), s, EqualInterval, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.0 – 5.0", "5.0 – 10.0"}, c.Labels(1))

	u, err := Generate(grayscale(t), s, UniqueValues, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.00", "10.00"}, u.Labels(2))
}
