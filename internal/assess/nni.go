package assess

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"go-occurrence-assess/internal/geo"
	"go-occurrence-assess/internal/model"
)

const (
	defaultBootstrapSamples = 100
	defaultMinNNIRecords    = 10
	defaultBootstrapSeed    = 42
)

// SpatialBias computes, per period, the nearest-neighbour index of the
// period's records against the boundary mask: the ratio of observed mean
// nearest-neighbour distance to the expectation under complete spatial
// randomness. A seeded Monte Carlo bootstrap of uniform points inside
// the mask gives the simulated distribution an identical job spec
// reproduces exactly. NNI below the simulated band means sampling is
// clustered; above means it is more dispersed than random.
func SpatialBias(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error) {
	if spec.Spatial == nil || len(spec.Spatial.Mask) == 0 {
		return model.SummaryTable{}, fmt.Errorf("spatial bias needs a boundary mask")
	}
	mask, err := geo.NewPolygon(spec.Spatial.Mask)
	if err != nil {
		return model.SummaryTable{}, err
	}

	samples, minRecords, seed := defaultBootstrapSamples, defaultMinNNIRecords, int64(defaultBootstrapSeed)
	if spec.Bootstrap != nil {
		if spec.Bootstrap.Samples > 0 {
			samples = spec.Bootstrap.Samples
		}
		if spec.Bootstrap.MinRecords > 0 {
			minRecords = spec.Bootstrap.MinRecords
		}
		if spec.Bootstrap.Seed != 0 {
			seed = spec.Bootstrap.Seed
		}
	}

	table := model.SummaryTable{
		Assessor:   model.AssessSpatialBias,
		Exclusions: b.baseExclusions(),
	}

	areaKm2 := mask.AreaKm2()
	noCoords, offMask := 0, 0
	for i, period := range b.Periods {
		var pts []geo.Point
		for _, rec := range b.ByPeriod[i] {
			if !rec.HasCoords {
				noCoords++
				continue
			}
			pt := recPoint(rec)
			if !mask.Contains(pt) {
				offMask++
				continue
			}
			pts = append(pts, pt)
		}

		row := model.SummaryRow{
			Period:      period.Label(),
			RecordCount: len(pts),
			Metrics:     map[string]float64{"records_in_mask": float64(len(pts))},
		}
		if len(pts) < minRecords {
			table.Notes = append(table.Notes,
				fmt.Sprintf("period %s has %d in-mask records (< %d); NNI skipped", period.Label(), len(pts), minRecords))
			table.Rows = append(table.Rows, row)
			continue
		}
		if err := ctx.Err(); err != nil {
			return table, err
		}

		observed := meanNearestNeighbourKm(pts)
		expected := 0.5 / math.Sqrt(float64(len(pts))/areaKm2)
		row.Metrics["observed_km"] = observed
		row.Metrics["expected_km"] = expected
		row.Metrics["nni"] = observed / expected

		// one RNG stream per period so period order never shifts results
		rng := rand.New(rand.NewSource(seed + int64(i)))
		sims := make([]float64, samples)
		for s := 0; s < samples; s++ {
			random := make([]geo.Point, len(pts))
			for j := range random {
				random[j] = mask.RandomPoint(rng)
			}
			sims[s] = meanNearestNeighbourKm(random) / expected
		}
		sort.Float64s(sims)
		row.Metrics["sim_mean"] = stat.Mean(sims, nil)
		row.Metrics["sim_lower"] = stat.Quantile(0.025, stat.Empirical, sims, nil)
		row.Metrics["sim_upper"] = stat.Quantile(0.975, stat.Empirical, sims, nil)

		table.Rows = append(table.Rows, row)
	}

	if noCoords > 0 {
		table.Exclusions[ExclNoCoords] = noCoords
	}
	if offMask > 0 {
		table.Exclusions[ExclOffMask] = offMask
	}
	sortRows(table.Rows, b.Periods)
	table.Excluded = sumExclusions(table.Exclusions)
	return table, ctx.Err()
}

// meanNearestNeighbourKm averages each point's distance to its nearest
// neighbour. Quadratic, which is fine at workshop dataset sizes.
func meanNearestNeighbourKm(pts []geo.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := range pts {
		nearest := math.Inf(1)
		for j := range pts {
			if i == j {
				continue
			}
			if d := geo.DistanceKm(pts[i], pts[j]); d < nearest {
				nearest = d
			}
		}
		total += nearest
	}
	return total / float64(len(pts))
}
