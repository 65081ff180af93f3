package gpkg

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/CI-WATER/mapkit/export"
	"github.com/CI-WATER/mapkit/raster"
)

// Rasters live in a side table of our own, not a GeoPackage tile pyramid:
// one row per band with the full cell grid as a float64 blob.
const rasterTable = "mapkit_rasters"

const createRasterTableSQL = `CREATE TABLE IF NOT EXISTS "` + rasterTable + `" (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	timestamp TEXT,
	srid INTEGER NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	upper_left_x REAL NOT NULL,
	upper_left_y REAL NOT NULL,
	cell_size_x REAL NOT NULL,
	cell_size_y REAL NOT NULL,
	skew_x REAL NOT NULL,
	skew_y REAL NOT NULL,
	nodata REAL NOT NULL,
	cells BLOB NOT NULL
);`

const rasterColumns = `srid, width, height, upper_left_x, upper_left_y,
	cell_size_x, cell_size_y, skew_x, skew_y, nodata, cells`

// StoreRaster stores a band under the given name. A nil timestamp stores a
// plain raster; timestamped rasters under one name form a time series.
func (s *Store) StoreRaster(name string, timestamp *time.Time, b *raster.Band) error {
	if _, err := s.handle.Exec(createRasterTableSQL); err != nil {
		return fmt.Errorf("creating raster table: %w", err)
	}

	var ts interface{}
	if timestamp != nil {
		ts = timestamp.UTC().Format(time.RFC3339)
	}
	t := b.Transform
	_, err := s.handle.Exec(
		`INSERT INTO "`+rasterTable+`" (name, timestamp, `+rasterColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		name, ts, t.SRID, b.Width, b.Height,
		t.UpperLeftX, t.UpperLeftY, t.CellSizeX, t.CellSizeY, t.SkewX, t.SkewY,
		b.NoData, encodeCells(b.Values()))
	if err != nil {
		return fmt.Errorf("storing raster %q: %w", name, err)
	}
	return nil
}

// RasterBand fetches the most recently stored band under the given name.
func (s *Store) RasterBand(name string) (*raster.Band, error) {
	row := s.handle.QueryRow(
		`SELECT `+rasterColumns+` FROM "`+rasterTable+`" WHERE name = ? ORDER BY id DESC LIMIT 1`, name)
	band, err := scanBand(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("raster %q: %w", name, export.ErrNotFound)
		}
		return nil, fmt.Errorf("reading raster %q: %w", name, err)
	}
	return band, nil
}

// RasterTimeSeries fetches all timestamped bands stored under the given name.
func (s *Store) RasterTimeSeries(name string) ([]export.TimedBand, error) {
	rows, err := s.handle.Query(
		`SELECT timestamp, `+rasterColumns+` FROM "`+rasterTable+`" WHERE name = ? AND timestamp IS NOT NULL`, name)
	if err != nil {
		return nil, fmt.Errorf("reading raster series %q: %w", name, err)
	}
	defer rows.Close()

	var series []export.TimedBand
	for rows.Next() {
		var ts string
		band, err := scanBandAnd(rows, &ts)
		if err != nil {
			return nil, fmt.Errorf("reading raster series %q: %w", name, err)
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("raster series %q: %w", name, err)
		}
		series = append(series, export.TimedBand{Time: t, Band: band})
	}
	return series, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBand(row scanner) (*raster.Band, error) {
	return scanBandAnd(row)
}

// scanBandAnd scans the raster columns preceded by any extra columns.
func scanBandAnd(row scanner, extra ...interface{}) (*raster.Band, error) {
	var t raster.GeoTransform
	var width, height int
	var noData float64
	var cells []byte
	dest := append(extra,
		&t.SRID, &width, &height, &t.UpperLeftX, &t.UpperLeftY,
		&t.CellSizeX, &t.CellSizeY, &t.SkewX, &t.SkewY, &noData, &cells)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	band, err := raster.NewBand(width, height, noData, t)
	if err != nil {
		return nil, err
	}
	values, err := decodeCells(cells, width*height)
	if err != nil {
		return nil, err
	}
	if err := band.SetValues(values); err != nil {
		return nil, err
	}
	return band, nil
}

func encodeCells(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeCells(buf []byte, n int) ([]float64, error) {
	if len(buf) != 8*n {
		return nil, fmt.Errorf("raster blob holds %d bytes, expected %d", len(buf), 8*n)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return values, nil
}
