// Package classify computes summary statistics over numeric sample sets and
// derives class breaks (a legend) from them using a color ramp.
package classify

import (
	"errors"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// ErrEmptySampleSet is returned when there are no usable values to classify,
// e.g. a raster band that is entirely no-data.
var ErrEmptySampleSet = errors.New("empty sample set: no usable values to classify")

// Summary holds the statistics of a sample set. It is a pure function of its
// input and read-only after creation.
type Summary struct {
	Min   float64
	Max   float64
	Mean  float64
	Count int

	// ascending copy of the samples, kept for quantile and unique-value breakpoints
	sorted []float64
}

// Summarize computes a Summary over the given samples. The caller is expected
// to have excluded no-data values already.
func Summarize(samples []float64) (*Summary, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySampleSet
	}
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	sample := stats.Sample{Xs: sorted, Sorted: true}
	min, max := sample.Bounds()
	return &Summary{
		Min:    min,
		Max:    max,
		Mean:   sample.Mean(),
		Count:  len(sorted),
		sorted: sorted,
	}, nil
}

// Quantile returns the q'th quantile (0 <= q <= 1) of the sample set.
// Deterministic for a given input: the samples are kept in a stable sorted
// copy and interpolated the same way on every call.
func (s *Summary) Quantile(q float64) float64 {
	sample := stats.Sample{Xs: s.sorted, Sorted: true}
	return sample.Quantile(q)
}

// distinct returns the distinct sample values in ascending order.
func (s *Summary) distinct() []float64 {
	values := make([]float64, 0, len(s.sorted))
	for i, v := range s.sorted {
		if i == 0 || v != s.sorted[i-1] {
			values = append(values, v)
		}
	}
	return values
}
