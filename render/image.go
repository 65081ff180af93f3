// Package render turns classified raster bands and feature datasets into
// visual artifacts: RGBA images, cell polygons, cluster polygons and styled
// features.
package render

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/raster"
)

// DefaultMaxImagePixels caps the rendered image size. Rasters beyond this are
// rejected instead of exhausting memory.
const DefaultMaxImagePixels = 64 * 1024 * 1024

// RasterTooLargeError is returned when a band exceeds the pixel ceiling.
type RasterTooLargeError struct {
	Width     int
	Height    int
	MaxPixels int
}

func (e *RasterTooLargeError) Error() string {
	return fmt.Sprintf("raster of %dx%d cells exceeds the maximum of %d pixels", e.Width, e.Height, e.MaxPixels)
}

// ImageOptions tune the pixel renderer.
type ImageOptions struct {
	// Alpha is an extra opacity factor from 0.0 to 1.0 applied on top of the
	// class colors. Zero value means fully opaque.
	Alpha float64
	// MaxPixels overrides DefaultMaxImagePixels when positive.
	MaxPixels int
}

func (o ImageOptions) alpha() float64 {
	if o.Alpha == 0 {
		return 1
	}
	return o.Alpha
}

func (o ImageOptions) maxPixels() int {
	if o.MaxPixels > 0 {
		return o.MaxPixels
	}
	return DefaultMaxImagePixels
}

// Image renders the band to an image with one pixel per cell. Cells take the
// color of their class, no-data cells are fully transparent. Rows are rendered
// concurrently; the result is identical regardless of worker scheduling.
func Image(b *raster.Band, cls *classify.Classification, opts ImageOptions) (*image.NRGBA, error) {
	if b.Width*b.Height > opts.maxPixels() {
		return nil, &RasterTooLargeError{Width: b.Width, Height: b.Height, MaxPixels: opts.maxPixels()}
	}

	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	alpha := opts.alpha()

	rows := make(chan int)
	wg := sync.WaitGroup{}
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range rows {
				renderRow(img, b, cls, alpha, row)
			}
		}()
	}
	for row := 0; row < b.Height; row++ {
		rows <- row
	}
	close(rows)
	wg.Wait()

	return img, nil
}

func renderRow(img *image.NRGBA, b *raster.Band, cls *classify.Classification, alpha float64, row int) {
	for col := 0; col < b.Width; col++ {
		v := b.Value(col, row)
		if b.IsNoData(v) {
			continue // NewNRGBA zeroes to fully transparent
		}
		c := cls.Color(v)
		c.A = uint8(alpha * float64(c.A))
		img.SetNRGBA(col, row, c)
	}
}

// Interpolator selects the resampling kernel used when scaling images.
type Interpolator string

const (
	NearestNeighbor Interpolator = "nearestNeighbor"
	Bilinear        Interpolator = "bilinear"
	CatmullRom      Interpolator = "catmullRom"
)

func (i Interpolator) scaler() (xdraw.Scaler, error) {
	switch i {
	case NearestNeighbor, "":
		return xdraw.NearestNeighbor, nil
	case Bilinear:
		return xdraw.BiLinear, nil
	case CatmullRom:
		return xdraw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown interpolator %q", i)
	}
}

// Resample scales an image to the given dimensions. The nearest-neighbor
// kernel keeps class colors crisp, the others smooth them.
func Resample(src image.Image, width, height int, interp Interpolator) (*image.NRGBA, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid resample dimensions %dx%d", width, height)
	}
	scaler, err := interp.scaler()
	if err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}
