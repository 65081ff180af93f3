package kml

import (
	"image/color"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ABGR(t *testing.T) {
	tests := []struct {
		name  string
		color color.NRGBA
		alpha float64
		want  string
	}{
		{"opaque orange", color.NRGBA{R: 255, G: 128, B: 0, A: 255}, 1, "FF0080FF"},
		{"half transparent", color.NRGBA{R: 255, G: 128, B: 0, A: 255}, 0.5, "800080FF"},
		{"combined alphas", color.NRGBA{R: 0, G: 0, B: 255, A: 128}, 0.5, "40FF0000"},
		{"alpha clamped", color.NRGBA{R: 1, G: 2, B: 3, A: 255}, 2, "FF030201"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ABGR(tt.color, tt.alpha))
		})
	}
}

func Test_HexRGB(t *testing.T) {
	assert.Equal(t, "#FF8000", HexRGB(color.NRGBA{R: 255, G: 128, B: 0, A: 255}))
}

func Test_FromGeom_polygon(t *testing.T) {
	mg, err := FromGeom(geom.Polygon{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}},
		{{1, 1}, {1, 2}, {2, 2}, {2, 1}},
	})
	require.NoError(t, err)
	require.Len(t, mg.Polygons, 1)
	// linear rings get closed explicitly
	assert.Equal(t, "0,0 4,0 4,4 0,4 0,0", mg.Polygons[0].OuterBoundaryIs.LinearRing.Coordinates)
	require.Len(t, mg.Polygons[0].InnerBoundaryIs, 1)
	assert.Equal(t, "1,1 1,2 2,2 2,1 1,1", mg.Polygons[0].InnerBoundaryIs[0].LinearRing.Coordinates)
}

func Test_FromGeom_point(t *testing.T) {
	mg, err := FromGeom(geom.Point{5.5, -3})
	require.NoError(t, err)
	require.Len(t, mg.Points, 1)
	assert.Equal(t, "5.5,-3", mg.Points[0].Coordinates)
}

func Test_FromGeom_unsupported(t *testing.T) {
	_, err := FromGeom(geom.Collection{})
	assert.Error(t, err)
}

func Test_Encode(t *testing.T) {
	doc := NewKML("test doc")
	doc.Document.Placemarks = []Placemark{{
		Name:  "a placemark",
		Style: &Style{PolyStyle: &PolyStyle{Color: "FF0080FF"}},
	}}

	body, err := doc.Encode()
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<kml xmlns="http://www.opengis.net/kml/2.2">`)
	assert.Contains(t, out, "<name>test doc</name>")
	assert.Contains(t, out, "<Placemark>")
	assert.Contains(t, out, "<color>FF0080FF</color>")
}

func Test_HideChildren(t *testing.T) {
	doc := NewKML("animated")
	doc.Document.HideChildren()
	body, err := doc.Encode()
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `<Style id="check-hide-children">`)
	assert.Contains(t, out, "<listItemType>checkHideChildren</listItemType>")
	assert.Contains(t, out, "<styleUrl>#check-hide-children</styleUrl>")
}

func Test_LatLonBoxFromExtent(t *testing.T) {
	box := LatLonBoxFromExtent(geom.Extent{-10, 20, 30, 40})
	assert.Equal(t, &LatLonBox{North: 40, South: 20, East: 30, West: -10}, box)
}
