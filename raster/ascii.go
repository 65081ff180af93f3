package raster

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultNoData is assumed for ASCII grids that do not declare a no-data
// value of their own.
const DefaultNoData = -9999

const grassHeaderLines = 6

// ReadGrassASCII parses a GRASS ASCII raster. The six header lines
// (north/south/east/west/rows/cols, in any order) are followed by the cell
// values, one row per line, north row first. GRASS headers carry no no-data
// value, so the sentinel must be supplied.
func ReadGrassASCII(r io.Reader, noData float64, srid uint) (*Band, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var north, south, east, west float64
	var rows, cols int
	for i := 0; i < grassHeaderLines; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of GRASS ASCII header at line %d", i+1)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed GRASS ASCII header line %q", scanner.Text())
		}
		key := strings.ToLower(strings.TrimSuffix(fields[0], ":"))
		var err error
		switch key {
		case "north":
			north, err = strconv.ParseFloat(fields[1], 64)
		case "south":
			south, err = strconv.ParseFloat(fields[1], 64)
		case "east":
			east, err = strconv.ParseFloat(fields[1], 64)
		case "west":
			west, err = strconv.ParseFloat(fields[1], 64)
		case "rows":
			rows, err = strconv.Atoi(fields[1])
		case "cols":
			cols, err = strconv.Atoi(fields[1])
		default:
			return nil, fmt.Errorf("unknown GRASS ASCII header %q", fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("malformed GRASS ASCII header line %q: %w", scanner.Text(), err)
		}
	}
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid GRASS ASCII dimensions %dx%d", cols, rows)
	}

	transform := GeoTransform{
		UpperLeftX: west,
		UpperLeftY: north,
		CellSizeX:  (east - west) / float64(cols),
		CellSizeY:  (south - north) / float64(rows),
		SRID:       srid,
	}
	band, err := NewBand(cols, rows, noData, transform)
	if err != nil {
		return nil, err
	}
	if err := readCells(scanner, band); err != nil {
		return nil, err
	}
	return band, nil
}

// ReadArcInfoASCII parses an Arc/Info ASCII Grid
// (ncols/nrows/xllcorner/yllcorner/cellsize headers with an optional
// NODATA_value line).
func ReadArcInfoASCII(r io.Reader, srid uint) (*Band, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var xll, yll, cellSize float64
	var rows, cols int
	noData := float64(DefaultNoData)

	// header lines until the first line that starts with a number
	var firstDataLine string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if _, numErr := strconv.ParseFloat(fields[0], 64); numErr == nil {
			firstDataLine = scanner.Text()
			break
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed Arc/Info ASCII header line %q", scanner.Text())
		}
		var err error
		switch strings.ToLower(fields[0]) {
		case "ncols":
			cols, err = strconv.Atoi(fields[1])
		case "nrows":
			rows, err = strconv.Atoi(fields[1])
		case "xllcorner":
			xll, err = strconv.ParseFloat(fields[1], 64)
		case "yllcorner":
			yll, err = strconv.ParseFloat(fields[1], 64)
		case "cellsize":
			cellSize, err = strconv.ParseFloat(fields[1], 64)
		case "nodata_value":
			noData, err = strconv.ParseFloat(fields[1], 64)
		default:
			return nil, fmt.Errorf("unknown Arc/Info ASCII header %q", fields[0])
		}
		if err != nil {
			return nil, fmt.Errorf("malformed Arc/Info ASCII header line %q: %w", scanner.Text(), err)
		}
	}
	if rows < 1 || cols < 1 || cellSize <= 0 {
		return nil, fmt.Errorf("incomplete Arc/Info ASCII header (ncols=%d nrows=%d cellsize=%v)", cols, rows, cellSize)
	}

	// xllcorner and yllcorner are the lower left corner of the raster
	transform := GeoTransform{
		UpperLeftX: xll,
		UpperLeftY: yll + cellSize*float64(rows),
		CellSizeX:  cellSize,
		CellSizeY:  -cellSize,
		SRID:       srid,
	}
	band, err := NewBand(cols, rows, noData, transform)
	if err != nil {
		return nil, err
	}
	if err := readCellsWithFirstLine(scanner, band, firstDataLine); err != nil {
		return nil, err
	}
	return band, nil
}

// WriteGrassASCII writes a band in GRASS ASCII raster format, north row
// first. No-data cells are written as the band's sentinel value.
func WriteGrassASCII(w io.Writer, b *Band) error {
	ext := b.Extent()
	headers := []string{
		fmt.Sprintf("north: %v", ext.MaxY()),
		fmt.Sprintf("south: %v", ext.MinY()),
		fmt.Sprintf("east: %v", ext.MaxX()),
		fmt.Sprintf("west: %v", ext.MinX()),
		fmt.Sprintf("rows: %d", b.Height),
		fmt.Sprintf("cols: %d", b.Width),
	}
	bw := bufio.NewWriter(w)
	for _, header := range headers {
		if _, err := fmt.Fprintln(bw, header); err != nil {
			return err
		}
	}
	for row := 0; row < b.Height; row++ {
		cells := make([]string, b.Width)
		for col := 0; col < b.Width; col++ {
			cells[col] = strconv.FormatFloat(b.Value(col, row), 'g', -1, 64)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(cells, " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readCells(scanner *bufio.Scanner, band *Band) error {
	return readCellsWithFirstLine(scanner, band, "")
}

// readCellsWithFirstLine fills the band from whitespace-separated values,
// row-major. Line breaks need not match raster rows.
func readCellsWithFirstLine(scanner *bufio.Scanner, band *Band, firstLine string) error {
	need := band.Width * band.Height
	got := 0
	consume := func(line string) error {
		for _, field := range strings.Fields(line) {
			if got >= need {
				return fmt.Errorf("too many cell values, expected %d", need)
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("malformed cell value %q: %w", field, err)
			}
			band.SetValue(got%band.Width, got/band.Width, v)
			got++
		}
		return nil
	}
	if firstLine != "" {
		if err := consume(firstLine); err != nil {
			return err
		}
	}
	for scanner.Scan() {
		if err := consume(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if got != need {
		return fmt.Errorf("expected %d cell values, got %d", need, got)
	}
	return nil
}
