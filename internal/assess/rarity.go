package assess

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"go-occurrence-assess/internal/model"
)

// RarityBias regresses, per period, log10 record count per species on a
// log10 range-size proxy (occupied grid cells for that species), and
// reports the fit's R². A strong fit means common species are recorded
// in proportion to their range; a weak one flags rarity-driven recording
// effort. Periods with fewer than three usable species report no fit.
func RarityBias(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error) {
	grid, _, err := spatialGrid(spec, b)
	if err != nil {
		return model.SummaryTable{}, fmt.Errorf("rarity bias needs a usable grid: %w", err)
	}

	table := model.SummaryTable{
		Assessor:   model.AssessRarityBias,
		Exclusions: b.baseExclusions(),
	}

	noSpecies, noCoords := 0, 0
	for i, period := range b.Periods {
		perSpecies := make(map[string]*speciesRange)
		for _, rec := range b.ByPeriod[i] {
			if !rec.IdentifiedToSpecies() {
				noSpecies++
				continue
			}
			if !rec.HasCoords {
				noCoords++
				continue
			}
			sr := perSpecies[rec.Species]
			if sr == nil {
				sr = &speciesRange{cells: make(map[string]struct{})}
				perSpecies[rec.Species] = sr
			}
			sr.records++
			if x, y, ok := grid.CellIndex(recPoint(rec)); ok {
				sr.cells[grid.CellID(x, y)] = struct{}{}
			}
		}

		var xs, ys []float64
		for _, sr := range perSpecies {
			if len(sr.cells) == 0 {
				continue
			}
			xs = append(xs, math.Log10(float64(len(sr.cells))))
			ys = append(ys, math.Log10(float64(sr.records)))
		}

		row := model.SummaryRow{
			Period:      period.Label(),
			RecordCount: len(b.ByPeriod[i]),
			Metrics:     map[string]float64{"species": float64(len(xs))},
		}
		if len(xs) >= 3 {
			alpha, beta := stat.LinearRegression(xs, ys, nil, false)
			row.Metrics["intercept"] = alpha
			row.Metrics["slope"] = beta
			row.Metrics["r2"] = stat.RSquared(xs, ys, nil, alpha, beta)
		} else {
			table.Notes = append(table.Notes,
				fmt.Sprintf("period %s had %d species with mappable records; rarity regression skipped", period.Label(), len(xs)))
		}
		table.Rows = append(table.Rows, row)
	}

	if noSpecies > 0 {
		table.Exclusions[ExclNoSpecies] = noSpecies
	}
	if noCoords > 0 {
		table.Exclusions[ExclNoCoords] = noCoords
	}
	sortRows(table.Rows, b.Periods)
	table.Excluded = sumExclusions(table.Exclusions)
	return table, ctx.Err()
}

type speciesRange struct {
	records int
	cells   map[string]struct{}
}
