// Package raster defines the in-memory model of a single-band raster:
// a rectangular grid of numeric cell values with a no-data sentinel and a
// georeferencing transform.
package raster

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
)

// GeoTransform is the affine cell-to-world mapping of a band. The origin is
// the upper-left corner of the upper-left cell; CellSizeY is negative for
// north-up rasters.
type GeoTransform struct {
	UpperLeftX float64
	UpperLeftY float64
	CellSizeX  float64
	CellSizeY  float64
	SkewX      float64
	SkewY      float64
	SRID       uint
}

// Band is a rectangular grid of numeric cell values. Every cell holds either
// a valid value or the no-data sentinel. Dimensions are fixed at creation.
type Band struct {
	Width     int
	Height    int
	NoData    float64
	Transform GeoTransform

	values []float64 // row-major, top row first
}

// NewBand allocates a band of the given dimensions with every cell set to the
// no-data sentinel.
func NewBand(width, height int, noData float64, transform GeoTransform) (*Band, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid band dimensions %dx%d", width, height)
	}
	values := make([]float64, width*height)
	for i := range values {
		values[i] = noData
	}
	return &Band{
		Width:     width,
		Height:    height,
		NoData:    noData,
		Transform: transform,
		values:    values,
	}, nil
}

// Value returns the cell value at the given column and row (0-based, row 0 on
// top).
func (b *Band) Value(col, row int) float64 {
	return b.values[row*b.Width+col]
}

// SetValue sets the cell value at the given column and row.
func (b *Band) SetValue(col, row int, v float64) {
	b.values[row*b.Width+col] = v
}

// IsNoData reports whether v is the band's no-data sentinel. NaN cells always
// count as no-data.
func (b *Band) IsNoData(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	if math.IsNaN(b.NoData) {
		return false
	}
	return v == b.NoData
}

// Samples returns the valid cell values in row-major order, no-data excluded.
func (b *Band) Samples() []float64 {
	samples := make([]float64, 0, len(b.values))
	for _, v := range b.values {
		if !b.IsNoData(v) {
			samples = append(samples, v)
		}
	}
	return samples
}

// Values returns the raw cell values in row-major order. The slice is shared
// with the band and must not be modified by readers.
func (b *Band) Values() []float64 {
	return b.values
}

// SetValues replaces all cell values at once. The slice must hold
// width*height values in row-major order and is copied.
func (b *Band) SetValues(values []float64) error {
	if len(values) != len(b.values) {
		return fmt.Errorf("got %d cell values, band holds %d", len(values), len(b.values))
	}
	copy(b.values, values)
	return nil
}

// Extent returns the band's bounding box in world coordinates.
func (b *Band) Extent() geom.Extent {
	t := b.Transform
	north := t.UpperLeftY
	south := t.UpperLeftY + t.CellSizeY*float64(b.Height)
	west := t.UpperLeftX
	east := t.UpperLeftX + t.CellSizeX*float64(b.Width)
	return geom.Extent{west, math.Min(south, north), east, math.Max(south, north)}
}

// CellCorner returns the world coordinates of the upper-left corner of the
// cell at the given column and row.
func (b *Band) CellCorner(col, row int) (x, y float64) {
	t := b.Transform
	x = t.UpperLeftX + float64(col)*t.CellSizeX + float64(row)*t.SkewX
	y = t.UpperLeftY + float64(row)*t.CellSizeY + float64(col)*t.SkewY
	return x, y
}

// CellPolygon returns the footprint of the cell at the given column and row
// as a closed ring.
func (b *Band) CellPolygon(col, row int) geom.Polygon {
	ulx, uly := b.CellCorner(col, row)
	urx, ury := b.CellCorner(col+1, row)
	lrx, lry := b.CellCorner(col+1, row+1)
	llx, lly := b.CellCorner(col, row+1)
	return geom.Polygon{{{ulx, uly}, {llx, lly}, {lrx, lry}, {urx, ury}}}
}
