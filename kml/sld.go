package kml

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/CI-WATER/mapkit/classify"
)

// ColorMap is an SLD color map, embedded in documents so viewers can
// reconstruct the legend that produced the styling.
type ColorMap struct {
	XMLName xml.Name        `xml:"ColorMap"`
	Type    string          `xml:"type,attr"`
	Entries []ColorMapEntry `xml:"ColorMapEntry"`
}

type ColorMapEntry struct {
	Color    string `xml:"color,attr"`
	Quantity string `xml:"quantity,attr"`
	Label    string `xml:"label,attr"`
	Opacity  string `xml:"opacity,attr"`
}

// IntervalColorMap builds an interval-typed color map from a classification:
// one entry per class break, keyed on the break's upper bound, preceded by a
// transparent no-data entry.
func IntervalColorMap(cls *classify.Classification, noData, alpha float64) *ColorMap {
	cm := &ColorMap{Type: "intervals"}
	cm.Entries = append(cm.Entries, noDataEntry(noData))
	for _, b := range cls.Breaks {
		cm.Entries = append(cm.Entries, ColorMapEntry{
			Color:    HexRGB(b.Color),
			Quantity: formatQuantity(b.Upper),
			Label:    FormatLegendValue(b.Upper),
			Opacity:  formatOpacity(alpha),
		})
	}
	return cm
}

// ValuesColorMap builds a values-typed color map: one entry per distinct
// class value, preceded by a transparent no-data entry. Meant for
// classifications produced by the unique-values method.
func ValuesColorMap(cls *classify.Classification, noData, alpha float64) *ColorMap {
	cm := &ColorMap{Type: "values"}
	cm.Entries = append(cm.Entries, noDataEntry(noData))
	for _, b := range cls.Breaks {
		cm.Entries = append(cm.Entries, ColorMapEntry{
			Color:    HexRGB(b.Color),
			Quantity: formatQuantity(b.Lower),
			Label:    FormatLegendValue(b.Lower),
			Opacity:  formatOpacity(alpha),
		})
	}
	return cm
}

func noDataEntry(noData float64) ColorMapEntry {
	return ColorMapEntry{
		Color:    "#000000",
		Quantity: formatQuantity(noData),
		Label:    "No Data",
		Opacity:  "0.0",
	}
}

// FormatLegendValue formats a legend quantity with a precision suited to its
// magnitude, so tiny values keep significant digits and large ones stay short.
func FormatLegendValue(v float64) string {
	abs := math.Abs(v)
	switch {
	case v != 0 && abs < 0.01:
		return fmt.Sprintf("%.2E", v)
	case abs < 10:
		return fmt.Sprintf("%.2f", v)
	case abs < 99:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOpacity(alpha float64) string {
	return strconv.FormatFloat(alpha, 'f', -1, 64)
}
