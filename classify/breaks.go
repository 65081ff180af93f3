package classify

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/CI-WATER/mapkit/mathhelp"
	"github.com/CI-WATER/mapkit/ramp"
)

// Method selects how breakpoints between classes are chosen.
type Method string

const (
	// EqualInterval spaces breakpoints at uniform numeric width.
	EqualInterval Method = "equalInterval"
	// Quantile chooses breakpoints so each class holds an equal count of samples.
	Quantile Method = "quantile"
	// UniqueValues makes one class per distinct sample value.
	UniqueValues Method = "uniqueValues"
)

// DefaultClassCount is used when no class count is configured.
const DefaultClassCount = 10

// ClassBreak is one bucketed sub-range of values assigned a single display
// color. Lower and Upper are inclusive bounds; adjacent breaks share a bound.
type ClassBreak struct {
	Lower float64
	Upper float64
	Color color.NRGBA
}

// Contains reports whether v falls within the break's inclusive bounds.
func (b ClassBreak) Contains(v float64) bool {
	return mathhelp.BetweenInc(v, b.Lower, b.Upper)
}

// Classification is an ordered sequence of contiguous, non-overlapping class
// breaks whose union is exactly [Summary.Min, Summary.Max]. Created fresh per
// export and read-only afterwards, so safe to share between render goroutines.
type Classification struct {
	Breaks  []ClassBreak
	Summary *Summary
	Method  Method
}

// Generate produces a classification of the summarized samples into classes
// colored by the given ramp. classCount must be at least 2 and is ignored for
// the UniqueValues method. Each break's color is the ramp sampled at the
// break's midpoint, normalized relative to [min, max].
func Generate(colorer ramp.Colorer, summary *Summary, method Method, classCount int) (*Classification, error) {
	if summary == nil || summary.Count == 0 {
		return nil, ErrEmptySampleSet
	}

	// constant sample set collapses to a single class sampled mid-ramp
	if summary.Min == summary.Max {
		return &Classification{
			Breaks:  []ClassBreak{{Lower: summary.Min, Upper: summary.Max, Color: colorer.At(0.5)}},
			Summary: summary,
			Method:  method,
		}, nil
	}

	var breaks []ClassBreak
	switch method {
	case EqualInterval:
		if classCount < 2 {
			return nil, fmt.Errorf("class count must be at least 2, got %d", classCount)
		}
		breaks = equalIntervalBreaks(colorer, summary, classCount)
	case Quantile:
		if classCount < 2 {
			return nil, fmt.Errorf("class count must be at least 2, got %d", classCount)
		}
		breaks = quantileBreaks(colorer, summary, classCount)
	case UniqueValues:
		breaks = uniqueValueBreaks(colorer, summary)
	default:
		return nil, fmt.Errorf("unknown classification method %q", method)
	}

	return &Classification{Breaks: breaks, Summary: summary, Method: method}, nil
}

func equalIntervalBreaks(colorer ramp.Colorer, summary *Summary, classCount int) []ClassBreak {
	width := (summary.Max - summary.Min) / float64(classCount)
	breaks := make([]ClassBreak, classCount)
	for i := 0; i < classCount; i++ {
		lower := summary.Min + float64(i)*width
		upper := summary.Min + float64(i+1)*width
		if i == classCount-1 {
			// close the last break at max regardless of floating rounding
			upper = summary.Max
		}
		breaks[i] = ClassBreak{Lower: lower, Upper: upper}
	}
	colorize(colorer, summary, breaks)
	return breaks
}

func quantileBreaks(colorer ramp.Colorer, summary *Summary, classCount int) []ClassBreak {
	breaks := make([]ClassBreak, classCount)
	lower := summary.Min
	for i := 0; i < classCount; i++ {
		upper := summary.Max
		if i < classCount-1 {
			upper = summary.Quantile(float64(i+1) / float64(classCount))
			// heavy ties can push a quantile below the previous bound;
			// contiguity wins over equal counts
			if upper < lower {
				upper = lower
			}
		}
		breaks[i] = ClassBreak{Lower: lower, Upper: upper}
		lower = upper
	}
	colorize(colorer, summary, breaks)
	return breaks
}

func uniqueValueBreaks(colorer ramp.Colorer, summary *Summary) []ClassBreak {
	values := summary.distinct()
	breaks := make([]ClassBreak, len(values))
	for i, v := range values {
		breaks[i] = ClassBreak{Lower: v, Upper: v, Color: colorer.At(summary.normalize(v))}
	}
	return breaks
}

func colorize(colorer ramp.Colorer, summary *Summary, breaks []ClassBreak) {
	for i := range breaks {
		mid := (breaks[i].Lower + breaks[i].Upper) / 2
		breaks[i].Color = colorer.At(summary.normalize(mid))
	}
}

// normalize maps a value in [Min, Max] onto the ramp interval [0, 1].
func (s *Summary) normalize(v float64) float64 {
	if s.Min == s.Max {
		return 0.5
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// Find returns the index of the break whose interval contains v, using binary
// search over the break upper bounds. A value equal to a shared bound
// classifies into the lower-index break. Values outside [min, max] clamp to
// the first or last break.
func (c *Classification) Find(v float64) int {
	n := len(c.Breaks)
	if v >= c.Breaks[n-1].Upper {
		return n - 1
	}
	return sort.Search(n, func(i int) bool { return v <= c.Breaks[i].Upper })
}

// Color returns the display color for v.
func (c *Classification) Color(v float64) color.NRGBA {
	return c.Breaks[c.Find(v)].Color
}

// Labels formats one legend label per break as "<lower> – <upper>" with the
// given numeric precision. Unique-value breaks get their single value.
func (c *Classification) Labels(precision int) []string {
	labels := make([]string, len(c.Breaks))
	for i, b := range c.Breaks {
		if b.Lower == b.Upper {
			labels[i] = fmt.Sprintf("%.*f", precision, b.Lower)
			continue
		}
		labels[i] = fmt.Sprintf("%.*f – %.*f", precision, b.Lower, precision, b.Upper)
	}
	return labels
}
