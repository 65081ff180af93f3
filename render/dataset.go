package render

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/go-spatial/geom"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/geomhelp"
)

// Feature is a geometry with attributes, as read from a vector layer.
type Feature struct {
	ID         int64
	Geometry   geom.Geometry
	Attributes map[string]interface{}
}

// AttributeState tags the outcome of a numeric attribute lookup.
type AttributeState int

const (
	AttributePresent AttributeState = iota
	AttributeMissing
	AttributeNonNumeric
)

// NumericAttribute looks up an attribute and coerces it to float64. Integers,
// floats and numeric strings all count as present; nil and absent keys count
// as missing.
func NumericAttribute(f Feature, key string) (float64, AttributeState) {
	raw, ok := f.Attributes[key]
	if !ok || raw == nil {
		return 0, AttributeMissing
	}
	switch v := raw.(type) {
	case float64:
		return v, AttributePresent
	case float32:
		return float64(v), AttributePresent
	case int:
		return float64(v), AttributePresent
	case int32:
		return float64(v), AttributePresent
	case int64:
		return float64(v), AttributePresent
	case uint64:
		return float64(v), AttributePresent
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, AttributeNonNumeric
		}
		return parsed, AttributePresent
	case []byte:
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, AttributeNonNumeric
		}
		return parsed, AttributePresent
	default:
		return 0, AttributeNonNumeric
	}
}

// StyledFeature is a feature with its display color resolved. HasValue is
// false when the attribute was missing or non-numeric and the no-data style
// applies.
type StyledFeature struct {
	Feature  Feature
	Value    float64
	HasValue bool
	Color    color.NRGBA
}

// DatasetResult holds the styled features in input order plus one warning per
// feature that could not be valued.
type DatasetResult struct {
	Features []StyledFeature
	Warnings []string
}

// NoDataColor styles features whose attribute is missing or non-numeric:
// fully transparent.
var NoDataColor = color.NRGBA{}

// CollectValues extracts the numeric values of the given attribute across the
// features, for summarizing ahead of classification. Features without a
// usable value are skipped here and reported again by Dataset.
func CollectValues(features []Feature, attribute string) []float64 {
	values := make([]float64, 0, len(features))
	for _, f := range features {
		if v, state := NumericAttribute(f, attribute); state == AttributePresent {
			values = append(values, v)
		}
	}
	return values
}

// Dataset styles each feature by classifying its attribute value. Features
// without a usable value get the no-data style and a warning instead of being
// dropped, so the output always has one entry per input feature, in input
// order.
func Dataset(features []Feature, attribute string, cls *classify.Classification) *DatasetResult {
	result := &DatasetResult{Features: make([]StyledFeature, 0, len(features))}
	for i, f := range features {
		styled := StyledFeature{Feature: f, Color: NoDataColor}
		v, state := NumericAttribute(f, attribute)
		switch state {
		case AttributePresent:
			styled.Value = v
			styled.HasValue = true
			styled.Color = cls.Color(v)
		case AttributeMissing:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("feature %s: attribute %q missing, using no-data style", featureRef(f, i), attribute))
		case AttributeNonNumeric:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("feature %s: attribute %q is not numeric, using no-data style", featureRef(f, i), attribute))
		}
		result.Features = append(result.Features, styled)
	}
	return result
}

// featureRef identifies a feature in warnings, by ID when the table has one
// and with a truncated geometry so the offender can be located on the map.
func featureRef(f Feature, i int) string {
	ref := "#" + strconv.Itoa(i)
	if f.ID != 0 {
		ref = strconv.FormatInt(f.ID, 10)
	}
	if f.Geometry != nil {
		ref += " at " + geomhelp.WktMustEncode(f.Geometry, 60)
	}
	return ref
}
