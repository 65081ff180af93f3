// Package kml models the subset of KML (and the embedded SLD legend) that the
// converters emit, marshalled with encoding/xml.
package kml

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/go-spatial/geom"

	"github.com/CI-WATER/mapkit/mathhelp"
)

const Namespace = "http://www.opengis.net/kml/2.2"

// Polygon outlines are always thin black lines, like the reference viewers
// expect for cell grids.
const (
	LineColor = "FF000000"
	LineWidth = 1
)

type KML struct {
	XMLName  xml.Name  `xml:"kml"`
	XMLNS    string    `xml:"xmlns,attr"`
	Document *Document `xml:"Document"`
}

// NewKML wraps a named document in a kml root element.
func NewKML(documentName string) *KML {
	return &KML{
		XMLNS:    Namespace,
		Document: &Document{Name: documentName},
	}
}

// Encode marshals the document with the standard XML header.
func (k *KML) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(k, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

type Document struct {
	Name           string          `xml:"name,omitempty"`
	Styles         []Style         `xml:"Style,omitempty"`
	StyleURL       string          `xml:"styleUrl,omitempty"`
	ExtendedData   *ExtendedData   `xml:"ExtendedData,omitempty"`
	GroundOverlays []GroundOverlay `xml:"GroundOverlay,omitempty"`
	Placemarks     []Placemark     `xml:"Placemark,omitempty"`
}

// HideChildren applies the list style that keeps the (many) placemarks of an
// animation out of the viewer's legend panel.
func (d *Document) HideChildren() {
	d.Styles = append(d.Styles, Style{
		ID:        "check-hide-children",
		ListStyle: &ListStyle{ListItemType: "checkHideChildren"},
	})
	d.StyleURL = "#check-hide-children"
}

// SetLegend embeds the SLD color map in the document's extended data.
func (d *Document) SetLegend(colorMap *ColorMap) {
	if d.ExtendedData == nil {
		d.ExtendedData = &ExtendedData{}
	}
	d.ExtendedData.ColorMap = colorMap
}

type Placemark struct {
	Name          string         `xml:"name,omitempty"`
	TimeSpan      *TimeSpan      `xml:"TimeSpan,omitempty"`
	Style         *Style         `xml:"Style,omitempty"`
	MultiGeometry *MultiGeometry `xml:"MultiGeometry,omitempty"`
	ExtendedData  *ExtendedData  `xml:"ExtendedData,omitempty"`
}

type Style struct {
	ID        string     `xml:"id,attr,omitempty"`
	LineStyle *LineStyle `xml:"LineStyle,omitempty"`
	PolyStyle *PolyStyle `xml:"PolyStyle,omitempty"`
	ListStyle *ListStyle `xml:"ListStyle,omitempty"`
}

type LineStyle struct {
	Color string `xml:"color,omitempty"`
	Width int    `xml:"width,omitempty"`
}

type PolyStyle struct {
	Color string `xml:"color,omitempty"`
}

type ListStyle struct {
	ListItemType string `xml:"listItemType,omitempty"`
}

type TimeSpan struct {
	Begin string `xml:"begin,omitempty"`
	End   string `xml:"end,omitempty"`
}

type ExtendedData struct {
	Data     []Data    `xml:"Data,omitempty"`
	ColorMap *ColorMap `xml:"ColorMap,omitempty"`
}

type Data struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type MultiGeometry struct {
	Points      []Point      `xml:"Point,omitempty"`
	LineStrings []LineString `xml:"LineString,omitempty"`
	Polygons    []Polygon    `xml:"Polygon,omitempty"`
}

type Point struct {
	Coordinates string `xml:"coordinates"`
}

type LineString struct {
	Tessellate  int    `xml:"tessellate,omitempty"`
	Coordinates string `xml:"coordinates"`
}

type Polygon struct {
	Tessellate      int        `xml:"tessellate,omitempty"`
	OuterBoundaryIs Boundary   `xml:"outerBoundaryIs"`
	InnerBoundaryIs []Boundary `xml:"innerBoundaryIs,omitempty"`
}

type Boundary struct {
	LinearRing LinearRing `xml:"LinearRing"`
}

type LinearRing struct {
	Coordinates string `xml:"coordinates"`
}

type GroundOverlay struct {
	Name      string     `xml:"name,omitempty"`
	TimeSpan  *TimeSpan  `xml:"TimeSpan,omitempty"`
	DrawOrder int        `xml:"drawOrder"`
	Region    *Region    `xml:"Region,omitempty"`
	Icon      *Icon      `xml:"Icon,omitempty"`
	LatLonBox *LatLonBox `xml:"LatLonBox,omitempty"`
}

type Region struct {
	LatLonBox LatLonBox `xml:"LatLonBox"`
}

type Icon struct {
	Href string `xml:"href"`
}

type LatLonBox struct {
	North float64 `xml:"north"`
	South float64 `xml:"south"`
	East  float64 `xml:"east"`
	West  float64 `xml:"west"`
}

// LatLonBoxFromExtent converts a world extent to overlay box edges.
func LatLonBoxFromExtent(ext geom.Extent) *LatLonBox {
	return &LatLonBox{
		North: ext.MaxY(),
		South: ext.MinY(),
		East:  ext.MaxX(),
		West:  ext.MinX(),
	}
}

// ABGR renders a color as the KML hex AABBGGRR string, folding the extra
// alpha factor (0.0 to 1.0) into the color's own alpha.
func ABGR(c color.NRGBA, alpha float64) string {
	a := uint8(math.Round(mathhelp.Clamp(alpha, 0, 1) * float64(c.A)))
	return fmt.Sprintf("%02X%02X%02X%02X", a, c.B, c.G, c.R)
}

// HexRGB renders a color as an SLD #RRGGBB string.
func HexRGB(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// FromGeom converts a geometry into KML geometry elements.
func FromGeom(g geom.Geometry) (*MultiGeometry, error) {
	mg := &MultiGeometry{}
	if err := appendGeom(mg, g); err != nil {
		return nil, err
	}
	return mg, nil
}

func appendGeom(mg *MultiGeometry, g geom.Geometry) error {
	switch gg := g.(type) {
	case geom.Point:
		mg.Points = append(mg.Points, Point{Coordinates: coordinates([][2]float64{gg.XY()}, false)})
	case geom.MultiPoint:
		for _, pt := range gg.Points() {
			mg.Points = append(mg.Points, Point{Coordinates: coordinates([][2]float64{pt}, false)})
		}
	case geom.LineString:
		mg.LineStrings = append(mg.LineStrings, LineString{Coordinates: coordinates(gg.Vertices(), false)})
	case geom.MultiLineString:
		for _, ls := range gg.LineStrings() {
			mg.LineStrings = append(mg.LineStrings, LineString{Coordinates: coordinates(ls, false)})
		}
	case geom.Polygon:
		mg.Polygons = append(mg.Polygons, polygonFromRings(gg.LinearRings()))
	case geom.MultiPolygon:
		for _, p := range gg.Polygons() {
			mg.Polygons = append(mg.Polygons, polygonFromRings(p))
		}
	default:
		return fmt.Errorf("unsupported geometry type %T", g)
	}
	return nil
}

func polygonFromRings(rings [][][2]float64) Polygon {
	var p Polygon
	for i, ring := range rings {
		boundary := Boundary{LinearRing: LinearRing{Coordinates: coordinates(ring, true)}}
		if i == 0 {
			p.OuterBoundaryIs = boundary
		} else {
			p.InnerBoundaryIs = append(p.InnerBoundaryIs, boundary)
		}
	}
	return p
}

// coordinates renders "x,y" tuples separated by spaces. KML linear rings must
// be explicitly closed, geom rings are not.
func coordinates(pts [][2]float64, closeRing bool) string {
	if len(pts) == 0 {
		return ""
	}
	tuples := make([]string, 0, len(pts)+1)
	for _, pt := range pts {
		tuples = append(tuples, formatTuple(pt))
	}
	if closeRing && pts[0] != pts[len(pts)-1] {
		tuples = append(tuples, formatTuple(pts[0]))
	}
	return strings.Join(tuples, " ")
}

func formatTuple(pt [2]float64) string {
	return strconv.FormatFloat(pt[0], 'f', -1, 64) + "," + strconv.FormatFloat(pt[1], 'f', -1, 64)
}
