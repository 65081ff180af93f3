package geomhelp

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
)

func TestShoelace(t *testing.T) {
	var tests = []struct {
		pts  [][2]float64
		area float64
	}{
		// Rectangle
		0: {pts: [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}, area: float64(100)},
		// Triangle
		1: {pts: [][2]float64{{0, 0}, {5, 10}, {0, 10}, {0, 0}}, area: float64(25)},
		// Missing 'official' closing point
		2: {pts: [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}}, area: float64(100)},
		// Single point
		3: {pts: [][2]float64{{1234, 4321}}, area: float64(0)},
		// No point
		4: {pts: nil, area: float64(0)},
		// Empty point
		5: {pts: [][2]float64{}, area: float64(0)},
	}

	for k, test := range tests {
		area := Shoelace(test.pts)
		if area != test.area {
			t.Errorf("test: %d, expected: %f \ngot: %f", k, test.area, area)
		}
	}
}

func TestSignedArea(t *testing.T) {
	ccw := [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	cw := [][2]float64{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	assert.Equal(t, float64(100), SignedArea(ccw))
	assert.Equal(t, float64(-100), SignedArea(cw))
}

func TestRingArea(t *testing.T) {
	var tests = []struct {
		rings [][][2]float64
		area  float64
	}{
		// Rectangle
		0: {rings: [][][2]float64{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}}, area: float64(100)},
		// Rectangle with hole
		1: {rings: [][][2]float64{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}, {{2, 2}, {2, 8}, {8, 8}, {8, 2}, {2, 2}}}, area: float64(64)},
		// Rectangle with empty hole
		2: {rings: [][][2]float64{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}, {}}, area: float64(100)},
		// nil geometry
		3: {rings: nil, area: float64(0)},
	}

	for k, test := range tests {
		area := RingArea(test.rings)
		if area != test.area {
			t.Errorf("test: %d, expected: %f \ngot: %f", k, test.area, area)
		}
	}
}

func TestWktMustEncode(t *testing.T) {
	full := WktMustEncode(geom.Point{1, 2}, 0)
	assert.Contains(t, full, "POINT")

	long := WktMustEncode(geom.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}}}, 20)
	assert.LessOrEqual(t, len(long), 20)
	assert.Contains(t, long, "...")
}
