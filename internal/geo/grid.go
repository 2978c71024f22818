package geo

import (
	"fmt"
	"math"
)

// Grid divides a bounding box into square cells of CellSizeDeg degrees.
// Cell (0,0) sits at the south-west corner.
type Grid struct {
	CellSizeDeg    float64 `json:"cell_size_deg"`
	MinLon, MinLat float64 `json:"-"`
	Cols, Rows     int     `json:"-"`
}

// NewGrid builds a grid covering the given bounds
func NewGrid(minLon, minLat, maxLon, maxLat, cellSizeDeg float64) (*Grid, error) {
	if cellSizeDeg <= 0 {
		return nil, fmt.Errorf("grid cell size must be positive, got %v", cellSizeDeg)
	}
	if maxLon <= minLon || maxLat <= minLat {
		return nil, fmt.Errorf("invalid grid bounds: [%v,%v] x [%v,%v]", minLon, maxLon, minLat, maxLat)
	}

	return &Grid{
		CellSizeDeg: cellSizeDeg,
		MinLon:      minLon,
		MinLat:      minLat,
		Cols:        int(math.Ceil((maxLon - minLon) / cellSizeDeg)),
		Rows:        int(math.Ceil((maxLat - minLat) / cellSizeDeg)),
	}, nil
}

// GridForMask builds a grid covering a mask's bounding box
func GridForMask(mask *Polygon, cellSizeDeg float64) (*Grid, error) {
	minLon, minLat, maxLon, maxLat := mask.Bounds()
	return NewGrid(minLon, minLat, maxLon, maxLat, cellSizeDeg)
}

// CellIndex maps a point to its cell coordinates; ok is false outside the grid
func (g *Grid) CellIndex(p Point) (x, y int, ok bool) {
	x = int(math.Floor((p.Lon - g.MinLon) / g.CellSizeDeg))
	y = int(math.Floor((p.Lat - g.MinLat) / g.CellSizeDeg))
	if x < 0 || x >= g.Cols || y < 0 || y >= g.Rows {
		return 0, 0, false
	}
	return x, y, true
}

// CellID returns the stable identifier for a cell, e.g. "c_12_3"
func (g *Grid) CellID(x, y int) string {
	return fmt.Sprintf("c_%d_%d", x, y)
}

// CellCenter returns the cell's center point
func (g *Grid) CellCenter(x, y int) Point {
	return Point{
		Lon: g.MinLon + (float64(x)+0.5)*g.CellSizeDeg,
		Lat: g.MinLat + (float64(y)+0.5)*g.CellSizeDeg,
	}
}

// NumCells returns the total number of cells in the grid
func (g *Grid) NumCells() int {
	return g.Cols * g.Rows
}

// Raster accumulates per-cell point counts on a grid
type Raster struct {
	Grid   *Grid          `json:"grid"`
	Counts map[string]int `json:"counts"`
}

// NewRaster creates an empty raster over a grid
func NewRaster(g *Grid) *Raster {
	return &Raster{Grid: g, Counts: make(map[string]int)}
}

// Add rasterizes one point; returns false when the point lies off-grid
func (r *Raster) Add(p Point) bool {
	x, y, ok := r.Grid.CellIndex(p)
	if !ok {
		return false
	}
	r.Counts[r.Grid.CellID(x, y)]++
	return true
}

// OccupiedCells returns the number of cells holding at least one point
func (r *Raster) OccupiedCells() int {
	return len(r.Counts)
}

// MaxCount returns the densest cell's count (0 for an empty raster)
func (r *Raster) MaxCount() int {
	max := 0
	for _, c := range r.Counts {
		if c > max {
			max = c
		}
	}
	return max
}

// Jaccard returns the overlap of occupied cells between two rasters:
// |A ∩ B| / |A ∪ B|. Two empty rasters overlap fully by convention.
func Jaccard(a, b *Raster) float64 {
	if len(a.Counts) == 0 && len(b.Counts) == 0 {
		return 1
	}
	inter := 0
	for id := range a.Counts {
		if _, ok := b.Counts[id]; ok {
			inter++
		}
	}
	union := len(a.Counts) + len(b.Counts) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}
