package geomhelp

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// https://en.wikipedia.org/wiki/Shoelace_formula
func Shoelace(pts [][2]float64) float64 {
	return math.Abs(SignedArea(pts))
}

// SignedArea returns the signed shoelace area of a ring.
// Positive for counterclockwise winding (in a y-up coordinate system).
func SignedArea(pts [][2]float64) float64 {
	sum := 0.
	if len(pts) == 0 {
		return 0.
	}

	p0 := pts[len(pts)-1]
	for _, p1 := range pts {
		sum += p0[0]*p1[1] - p0[1]*p1[0]
		p0 = p1
	}
	return sum / 2
}

// RingArea returns the area of a polygon, interior rings subtracted.
func RingArea(rings [][][2]float64) float64 {
	interior := .0
	if rings == nil {
		return 0.
	}
	if len(rings) > 1 {
		for _, i := range rings[1:] {
			interior += Shoelace(i)
		}
	}
	return Shoelace(rings[0]) - interior
}

func FloatPolygonToGeomPolygon(floater [][][2]float64) geom.Polygon {
	return floater
}

func FloatPolygonsToGeomPolygons(floaters [][][][2]float64) []geom.Polygon {
	geoms := make([]geom.Polygon, len(floaters))
	for i := range floaters {
		geoms[i] = floaters[i]
	}
	return geoms
}

// WktMustEncode encodes a geometry as WKT, truncated to maxLen for log and
// warning messages. maxLen 0 means no truncation.
func WktMustEncode(g geom.Geometry, maxLen uint) string {
	if maxLen == 0 {
		return wkt.MustEncode(g)
	}
	return truncate.StringWithTail(wkt.MustEncode(g), maxLen, "...")
}
