// Package gpkg reads feature tables from and stores rasters in a GeoPackage.
// It backs the export Source interface.
package gpkg

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-spatial/geom/encoding/gpkg"

	"github.com/CI-WATER/mapkit/export"
	"github.com/CI-WATER/mapkit/render"
)

// Store is a GeoPackage holding feature tables and the raster side table.
type Store struct {
	handle *gpkg.Handle
}

// Open opens or creates a GeoPackage file.
func Open(path string) (*Store, error) {
	handle, err := gpkg.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening GeoPackage %s: %w", path, err)
	}
	return &Store{handle: handle}, nil
}

func (s *Store) Close() error {
	return s.handle.Close()
}

type column struct {
	cid       int
	name      string
	ctype     string
	notnull   int
	dfltValue *int
	pk        int
}

type featureTable struct {
	name    string
	gcolumn string
	srsID   int
	columns []column
}

// FeatureTables lists the registered vector table names.
func (s *Store) FeatureTables() ([]string, error) {
	rows, err := s.handle.Query(`SELECT table_name FROM gpkg_geometry_columns;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Features reads all features of a vector table, decoding geometries and
// collecting the remaining columns as attributes.
func (s *Store) Features(table string) ([]render.Feature, error) {
	t, err := s.tableInfo(table)
	if err != nil {
		return nil, err
	}

	rows, err := s.handle.Query(t.selectSQL())
	if err != nil {
		return nil, fmt.Errorf("reading features from %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var features []render.Feature
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		valPtrs := make([]interface{}, len(cols))
		for i := range cols {
			valPtrs[i] = &vals[i]
		}
		if err := rows.Scan(valPtrs...); err != nil {
			return nil, err
		}

		f := render.Feature{Attributes: map[string]interface{}{}}
		for i, colName := range cols {
			if colName == t.gcolumn {
				sb, err := gpkg.DecodeGeometry(vals[i].([]byte))
				if err != nil {
					return nil, fmt.Errorf("decoding geometry in %s: %w", table, err)
				}
				f.Geometry = sb.Geometry
				continue
			}
			switch v := vals[i].(type) {
			case []uint8:
				f.Attributes[colName] = string(v)
			default:
				f.Attributes[colName] = v
			}
			if t.isPrimaryKey(colName) {
				if id, ok := vals[i].(int64); ok {
					f.ID = id
				}
			}
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return features, nil
}

func (s *Store) tableInfo(table string) (featureTable, error) {
	t := featureTable{name: table}
	query := fmt.Sprintf(
		`SELECT column_name, srs_id FROM gpkg_geometry_columns WHERE table_name = '%v';`, table)
	row := s.handle.QueryRow(query)
	if err := row.Scan(&t.gcolumn, &t.srsID); err != nil {
		return t, fmt.Errorf("feature table %q: %w", table, export.ErrNotFound)
	}

	rows, err := s.handle.Query(fmt.Sprintf(`PRAGMA table_info('%v');`, table))
	if err != nil {
		return t, err
	}
	defer rows.Close()
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.cid, &c.name, &c.ctype, &c.notnull, &c.dfltValue, &c.pk); err != nil {
			return t, err
		}
		t.columns = append(t.columns, c)
	}
	return t, rows.Err()
}

func (t featureTable) selectSQL() string {
	var csql []string
	for _, c := range t.columns {
		csql = append(csql, c.name)
	}
	return `SELECT ` + strings.Join(csql, `,`) + ` FROM "` + t.name + `";`
}

func (t featureTable) isPrimaryKey(name string) bool {
	for _, c := range t.columns {
		if c.name == name {
			return c.pk == 1
		}
	}
	return false
}

// parseTimestamp accepts the RFC3339 timestamps the raster loader writes.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
