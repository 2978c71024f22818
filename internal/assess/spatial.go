package assess

import (
	"context"
	"fmt"
	"math"

	"go-occurrence-assess/internal/geo"
	"go-occurrence-assess/internal/model"
)

// defaultCellSizeDeg is used when the job spec leaves the resolution unset
const defaultCellSizeDeg = 0.5

// SpatialCoverage rasterizes each period's records onto the configured
// grid and reports occupied-cell counts, grid coverage, the densest
// cell, and the Jaccard overlap of occupied cells with the previous
// period. Records without coordinates, or falling outside the mask, are
// excluded and counted rather than failing the run.
func SpatialCoverage(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error) {
	grid, mask, err := spatialGrid(spec, b)
	if err != nil {
		return model.SummaryTable{}, fmt.Errorf("spatial coverage needs a usable grid: %w", err)
	}

	table := model.SummaryTable{
		Assessor:   model.AssessSpatialCover,
		Exclusions: b.baseExclusions(),
	}

	noCoords, offMask := 0, 0
	var prev *geo.Raster
	for i, period := range b.Periods {
		raster := geo.NewRaster(grid)
		inMask := 0
		for _, rec := range b.ByPeriod[i] {
			if !rec.HasCoords {
				noCoords++
				continue
			}
			pt := recPoint(rec)
			if mask != nil && !mask.Contains(pt) {
				offMask++
				continue
			}
			if raster.Add(pt) {
				inMask++
			} else {
				offMask++
			}
		}

		row := model.SummaryRow{
			Period:      period.Label(),
			RecordCount: inMask,
			Metrics: map[string]float64{
				"records_in_mask": float64(inMask),
				"occupied_cells":  float64(raster.OccupiedCells()),
				"max_cell_count":  float64(raster.MaxCount()),
				"coverage":        float64(raster.OccupiedCells()) / float64(grid.NumCells()),
			},
		}
		if prev != nil {
			row.Metrics["overlap_prev"] = geo.Jaccard(prev, raster)
		}
		table.Rows = append(table.Rows, row)

		// occupied cell centers feed the coverage map chart
		for id := range raster.Counts {
			var x, y int
			fmt.Sscanf(id, "c_%d_%d", &x, &y)
			c := grid.CellCenter(x, y)
			table.Points = append(table.Points, model.ScatterPoint{Series: period.Label(), X: c.Lon, Y: c.Lat})
		}
		prev = raster
	}

	if noCoords > 0 {
		table.Exclusions[ExclNoCoords] = noCoords
	}
	if offMask > 0 {
		table.Exclusions[ExclOffMask] = offMask
		table.Notes = append(table.Notes,
			fmt.Sprintf("%d records fell outside the boundary mask and were excluded from spatial outputs", offMask))
	}
	sortRows(table.Rows, b.Periods)
	table.Excluded = sumExclusions(table.Exclusions)
	return table, ctx.Err()
}

// spatialGrid resolves the grid (and optional mask) for the raster
// assessors: the mask's bounding box when one is configured, otherwise
// the data's own bounding box.
func spatialGrid(spec model.AssessmentJobSpec, b *Binned) (*geo.Grid, *geo.Polygon, error) {
	cellSize := defaultCellSizeDeg
	if spec.Spatial != nil && spec.Spatial.CellSizeDeg > 0 {
		cellSize = spec.Spatial.CellSizeDeg
	}

	if spec.Spatial != nil && len(spec.Spatial.Mask) > 0 {
		mask, err := geo.NewPolygon(spec.Spatial.Mask)
		if err != nil {
			return nil, nil, err
		}
		grid, err := geo.GridForMask(mask, cellSize)
		if err != nil {
			return nil, nil, err
		}
		return grid, mask, nil
	}

	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	found := false
	for _, records := range b.ByPeriod {
		for _, rec := range records {
			if !rec.HasCoords {
				continue
			}
			found = true
			minLon = math.Min(minLon, rec.Longitude)
			minLat = math.Min(minLat, rec.Latitude)
			maxLon = math.Max(maxLon, rec.Longitude)
			maxLat = math.Max(maxLat, rec.Latitude)
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("no records with coordinates and no mask configured")
	}
	// widen degenerate bounds so a single point still gets a cell
	grid, err := geo.NewGrid(minLon, minLat, maxLon+cellSize, maxLat+cellSize, cellSize)
	if err != nil {
		return nil, nil, err
	}
	return grid, nil, nil
}

func recPoint(rec model.Occurrence) geo.Point {
	return geo.Point{Lon: rec.Longitude, Lat: rec.Latitude}
}
