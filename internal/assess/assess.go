// Package assess implements the per-period sampling-bias assessors.
// Each assessor is a pure function of the binned dataset and the job
// spec: no assessor mutates the records or another assessor's output,
// and rerunning one on an unchanged dataset yields an identical table.
package assess

import (
	"context"
	"fmt"
	"sort"

	"go-occurrence-assess/internal/model"
)

// Runner computes one assessor's summary table
type Runner func(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error)

// Lookup resolves an assessor name from the job spec
func Lookup(name string) (Runner, error) {
	switch name {
	case model.AssessRecordCounts:
		return RecordCounts, nil
	case model.AssessSpeciesCounts:
		return SpeciesCounts, nil
	case model.AssessTaxonomicRes:
		return TaxonomicResolution, nil
	case model.AssessRarityBias:
		return RarityBias, nil
	case model.AssessSpatialCover:
		return SpatialCoverage, nil
	case model.AssessSpatialBias:
		return SpatialBias, nil
	case model.AssessEnvBias:
		return EnvironmentalBias, nil
	default:
		return nil, fmt.Errorf("unknown assessor: %s", name)
	}
}

// Names lists every assessor in run order
func Names() []string {
	return []string{
		model.AssessRecordCounts,
		model.AssessSpeciesCounts,
		model.AssessTaxonomicRes,
		model.AssessRarityBias,
		model.AssessSpatialCover,
		model.AssessSpatialBias,
		model.AssessEnvBias,
	}
}

// sortRows fixes the row order: period order first, then group name.
// Map-driven accumulation must not leak iteration order into results.
func sortRows(rows []model.SummaryRow, periods []model.Period) {
	order := make(map[string]int, len(periods))
	for i, p := range periods {
		order[p.Label()] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := order[rows[i].Period], order[rows[j].Period]
		if pi != pj {
			return pi < pj
		}
		return rows[i].Group < rows[j].Group
	})
}

// groupsIn collects the sorted set of grouping values present in a period
func groupsIn(records []model.Occurrence, groupBy string) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		seen[rec.GroupValue(groupBy)] = struct{}{}
	}
	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
