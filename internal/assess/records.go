package assess

import (
	"context"
	"fmt"

	"go-occurrence-assess/internal/model"
)

// RecordCounts reports the number of records per period and grouping
// value. Periods with no matching records report zero rather than being
// dropped, so trend charts keep every period on the axis.
func RecordCounts(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error) {
	if err := ValidateGroupBy(spec.GroupBy); err != nil {
		return model.SummaryTable{}, err
	}

	table := model.SummaryTable{
		Assessor:   model.AssessRecordCounts,
		GroupBy:    spec.GroupBy,
		Exclusions: b.baseExclusions(),
	}

	for i, period := range b.Periods {
		records := b.ByPeriod[i]

		// whole-period row first, group rows after
		table.Rows = append(table.Rows, model.SummaryRow{
			Period:      period.Label(),
			RecordCount: len(records),
			Metrics:     map[string]float64{"records": float64(len(records))},
		})

		counts := make(map[string]int)
		for _, rec := range records {
			counts[rec.GroupValue(spec.GroupBy)]++
		}
		for _, g := range groupsIn(records, spec.GroupBy) {
			table.Rows = append(table.Rows, model.SummaryRow{
				Period:      period.Label(),
				Group:       g,
				RecordCount: counts[g],
				Metrics:     map[string]float64{"records": float64(counts[g])},
			})
		}
	}

	sortRows(table.Rows, b.Periods)
	table.Excluded = sumExclusions(table.Exclusions)
	if table.Excluded > 0 {
		table.Notes = append(table.Notes,
			fmt.Sprintf("%d records excluded from period binning (%d without a usable year, %d outside every period)",
				table.Excluded, b.NoYear, b.Unassigned))
	}
	return table, ctx.Err()
}
