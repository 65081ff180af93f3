package render

import (
	"math"

	"github.com/go-spatial/geom"

	"github.com/CI-WATER/mapkit/classify"
	"github.com/CI-WATER/mapkit/geomhelp"
	"github.com/CI-WATER/mapkit/raster"
)

// ClassGeometry is the vectorized footprint of one class break. Index is the
// break's position in the classification.
type ClassGeometry struct {
	Index    int
	Break    classify.ClassBreak
	Geometry geom.MultiPolygon
}

// Grid vectorizes the band cell by cell: each valid cell contributes its
// footprint polygon to its class. Classes without cells are omitted. Cells are
// visited in row-major order, so output is deterministic.
func Grid(b *raster.Band, cls *classify.Classification) []ClassGeometry {
	polygonsPerClass := make([]geom.MultiPolygon, len(cls.Breaks))
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			v := b.Value(col, row)
			if b.IsNoData(v) {
				continue
			}
			i := cls.Find(v)
			polygonsPerClass[i] = append(polygonsPerClass[i], b.CellPolygon(col, row))
		}
	}
	return collectClassGeometries(cls, polygonsPerClass)
}

// ClusterOptions tune the cluster vectorizer.
type ClusterOptions struct {
	// MinArea drops clusters (and holes) smaller than this area in world
	// units. Zero keeps everything.
	MinArea float64
}

// Clusters vectorizes the band into connected regions: 4-connected runs of
// cells that classify into the same class are merged into a single polygon,
// with holes where enclosed cells belong elsewhere. This gives far fewer
// polygons than Grid on smooth rasters.
func Clusters(b *raster.Band, cls *classify.Classification, opts ClusterOptions) []ClassGeometry {
	classOf := classIndexGrid(b, cls)
	labels := make([]int, b.Width*b.Height)
	polygonsPerClass := make([]geom.MultiPolygon, len(cls.Breaks))

	nextLabel := 0
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			idx := row*b.Width + col
			if classOf[idx] < 0 || labels[idx] != 0 {
				continue
			}
			nextLabel++
			cells := floodFill(b, classOf, labels, col, row, nextLabel)
			polygon := traceCluster(b, labels, cells, nextLabel, opts.MinArea)
			if opts.MinArea > 0 && geomhelp.RingArea(polygon) < opts.MinArea {
				continue
			}
			class := classOf[idx]
			polygonsPerClass[class] = append(polygonsPerClass[class], polygon)
		}
	}
	return collectClassGeometries(cls, polygonsPerClass)
}

func collectClassGeometries(cls *classify.Classification, polygonsPerClass []geom.MultiPolygon) []ClassGeometry {
	geometries := make([]ClassGeometry, 0, len(cls.Breaks))
	for i, polygons := range polygonsPerClass {
		if len(polygons) == 0 {
			continue
		}
		geometries = append(geometries, ClassGeometry{Index: i, Break: cls.Breaks[i], Geometry: polygons})
	}
	return geometries
}

// classIndexGrid precomputes the class index per cell, -1 for no-data.
func classIndexGrid(b *raster.Band, cls *classify.Classification) []int {
	classOf := make([]int, b.Width*b.Height)
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			idx := row*b.Width + col
			v := b.Value(col, row)
			if b.IsNoData(v) {
				classOf[idx] = -1
				continue
			}
			classOf[idx] = cls.Find(v)
		}
	}
	return classOf
}

type cell struct {
	col, row int
}

// floodFill labels the 4-connected component of equal class starting at the
// given cell and returns its cells.
func floodFill(b *raster.Band, classOf, labels []int, col, row, label int) []cell {
	class := classOf[row*b.Width+col]
	stack := []cell{{col, row}}
	labels[row*b.Width+col] = label
	var cells []cell
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cells = append(cells, c)
		for _, n := range [4]cell{{c.col, c.row - 1}, {c.col + 1, c.row}, {c.col, c.row + 1}, {c.col - 1, c.row}} {
			if n.col < 0 || n.col >= b.Width || n.row < 0 || n.row >= b.Height {
				continue
			}
			idx := n.row*b.Width + n.col
			if labels[idx] != 0 || classOf[idx] != class {
				continue
			}
			labels[idx] = label
			stack = append(stack, n)
		}
	}
	return cells
}

type gridVertex struct {
	col, row int
}

type boundaryEdge struct {
	from, to gridVertex
}

// traceCluster turns a labeled component into a polygon by chaining its
// boundary edges. Edges are directed with the component interior on the left
// (in grid space, rows increasing downward), so chained rings close up and
// orientation distinguishes nothing; the ring with the largest absolute area
// becomes the exterior, the others become holes.
func traceCluster(b *raster.Band, labels []int, cells []cell, label int, minArea float64) geom.Polygon {
	inComponent := func(col, row int) bool {
		if col < 0 || col >= b.Width || row < 0 || row >= b.Height {
			return false
		}
		return labels[row*b.Width+col] == label
	}

	// outgoing edges per start vertex; a vertex where two cells of the
	// component touch diagonally has two
	edges := map[gridVertex][]boundaryEdge{}
	addEdge := func(from, to gridVertex) {
		edges[from] = append(edges[from], boundaryEdge{from, to})
	}
	for _, c := range cells {
		if !inComponent(c.col, c.row-1) { // north side
			addEdge(gridVertex{c.col, c.row}, gridVertex{c.col + 1, c.row})
		}
		if !inComponent(c.col+1, c.row) { // east side
			addEdge(gridVertex{c.col + 1, c.row}, gridVertex{c.col + 1, c.row + 1})
		}
		if !inComponent(c.col, c.row+1) { // south side
			addEdge(gridVertex{c.col + 1, c.row + 1}, gridVertex{c.col, c.row + 1})
		}
		if !inComponent(c.col-1, c.row) { // west side
			addEdge(gridVertex{c.col, c.row + 1}, gridVertex{c.col, c.row})
		}
	}

	var rings [][]gridVertex
	for len(edges) > 0 {
		var start boundaryEdge
		for _, candidates := range edges {
			start = candidates[0]
			break
		}
		rings = append(rings, chainRing(edges, start))
	}

	return assemblePolygon(b, rings, minArea)
}

// chainRing walks edges from start until the ring closes, consuming the edges
// it uses. At a pinch vertex the sharpest left turn relative to the incoming
// direction is taken, which keeps each ring free of self-intersections.
func chainRing(edges map[gridVertex][]boundaryEdge, start boundaryEdge) []gridVertex {
	ring := []gridVertex{start.from}
	current := start
	consumeEdge(edges, current)
	for current.to != start.from {
		ring = append(ring, current.to)
		current = nextEdge(edges, current)
		consumeEdge(edges, current)
	}
	return ring
}

func nextEdge(edges map[gridVertex][]boundaryEdge, incoming boundaryEdge) boundaryEdge {
	candidates := edges[incoming.to]
	best := candidates[0]
	if len(candidates) > 1 {
		inDir := direction(incoming)
		bestCross := math.Inf(-1)
		for _, candidate := range candidates {
			outDir := direction(candidate)
			cross := float64(inDir.col*outDir.row - inDir.row*outDir.col)
			if cross > bestCross {
				bestCross = cross
				best = candidate
			}
		}
	}
	return best
}

func direction(e boundaryEdge) gridVertex {
	return gridVertex{e.to.col - e.from.col, e.to.row - e.from.row}
}

func consumeEdge(edges map[gridVertex][]boundaryEdge, e boundaryEdge) {
	candidates := edges[e.from]
	for i, candidate := range candidates {
		if candidate == e {
			candidates = append(candidates[:i], candidates[i+1:]...)
			break
		}
	}
	if len(candidates) == 0 {
		delete(edges, e.from)
	} else {
		edges[e.from] = candidates
	}
}

func assemblePolygon(b *raster.Band, rings [][]gridVertex, minArea float64) geom.Polygon {
	worldRings := make([][][2]float64, len(rings))
	areas := make([]float64, len(rings))
	outer := 0
	for i, ring := range rings {
		worldRing := make([][2]float64, len(ring))
		for j, v := range ring {
			x, y := b.CellCorner(v.col, v.row)
			worldRing[j] = [2]float64{x, y}
		}
		worldRings[i] = worldRing
		areas[i] = geomhelp.Shoelace(worldRing)
		if areas[i] > areas[outer] {
			outer = i
		}
	}

	// normalize winding: counterclockwise exterior, clockwise holes
	polygon := [][][2]float64{orient(worldRings[outer], true)}
	for i, ring := range worldRings {
		if i == outer {
			continue
		}
		if minArea > 0 && areas[i] < minArea {
			continue
		}
		polygon = append(polygon, orient(ring, false))
	}
	return geomhelp.FloatPolygonToGeomPolygon(polygon)
}

func orient(ring [][2]float64, ccw bool) [][2]float64 {
	if (geomhelp.SignedArea(ring) > 0) == ccw {
		return ring
	}
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
	return ring
}
