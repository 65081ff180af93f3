package export

import (
	"fmt"
	"strconv"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/kml"
	"github.com/CI-WATER/mapkit/render"
)

// classPlacemarks builds one placemark per non-empty class, carrying the
// merged geometry, the class style and the legend label. An optional time
// span is stamped on every placemark for animation frames.
func classPlacemarks(geometries []render.ClassGeometry, cls *classify.Classification, cfg *Config, span *kml.TimeSpan) []kml.Placemark {
	labels := cls.Labels(cfg.Precision)
	placemarks := make([]kml.Placemark, 0, len(geometries))
	for _, cg := range geometries {
		mg, err := kml.FromGeom(cg.Geometry)
		if err != nil {
			continue // only polygons come out of the vectorizers
		}
		placemarks = append(placemarks, kml.Placemark{
			Name:          labels[cg.Index],
			TimeSpan:      span,
			Style:         classStyle(cg.Break, cfg),
			MultiGeometry: mg,
			ExtendedData: &kml.ExtendedData{Data: []kml.Data{
				{Name: "value", Value: labels[cg.Index]},
			}},
		})
	}
	return placemarks
}

func classStyle(b classify.ClassBreak, cfg *Config) *kml.Style {
	return &kml.Style{
		LineStyle: &kml.LineStyle{Color: kml.LineColor, Width: kml.LineWidth},
		PolyStyle: &kml.PolyStyle{Color: kml.ABGR(b.Color, cfg.Alpha)},
	}
}

// datasetDocument builds the KML document for a styled feature collection,
// one placemark per feature in input order.
func datasetDocument(styled *render.DatasetResult, cls *classify.Classification, cfg *Config) ([]byte, error) {
	doc := kml.NewKML(cfg.Name)
	for i, sf := range styled.Features {
		mg, err := kml.FromGeom(sf.Feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		placemark := kml.Placemark{
			Name:          featureName(sf, i),
			Style:         featureStyle(sf, cfg),
			MultiGeometry: mg,
		}
		if sf.HasValue {
			placemark.ExtendedData = &kml.ExtendedData{Data: []kml.Data{
				{Name: "value", Value: strconv.FormatFloat(sf.Value, 'f', -1, 64)},
			}}
		}
		doc.Document.Placemarks = append(doc.Document.Placemarks, placemark)
	}
	return doc.Encode()
}

func featureName(sf render.StyledFeature, i int) string {
	if sf.Feature.ID != 0 {
		return strconv.FormatInt(sf.Feature.ID, 10)
	}
	return strconv.Itoa(i)
}

func featureStyle(sf render.StyledFeature, cfg *Config) *kml.Style {
	alpha := cfg.Alpha
	if !sf.HasValue {
		// the no-data style is transparent regardless of configured opacity
		alpha = 0
	}
	return &kml.Style{
		LineStyle: &kml.LineStyle{Color: kml.LineColor, Width: kml.LineWidth},
		PolyStyle: &kml.PolyStyle{Color: kml.ABGR(sf.Color, alpha)},
	}
}
