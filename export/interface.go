package export

import (
	"errors"
	"time"

	"github.com/CI-WATER/mapkit/raster"
	"github.com/CI-WATER/mapkit/render"
)

// ErrNotFound is returned (possibly wrapped) by a Source when the named
// raster or feature table does not exist.
var ErrNotFound = errors.New("not found")

// TimedBand is one frame of a raster time series.
type TimedBand struct {
	Time time.Time
	Band *raster.Band
}

// Source provides the stored rasters and features an export reads. The
// GeoPackage storage layer is the canonical implementation.
type Source interface {
	// RasterBand fetches the band stored under the given name.
	RasterBand(name string) (*raster.Band, error)
	// RasterTimeSeries fetches all timestamped bands stored under the given
	// name, in no particular order.
	RasterTimeSeries(name string) ([]TimedBand, error)
	// Features reads all features of a vector table.
	Features(table string) ([]render.Feature, error)
}
