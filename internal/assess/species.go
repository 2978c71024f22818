package assess

import (
	"context"
	"fmt"

	"go-occurrence-assess/internal/model"
)

// SpeciesCounts reports the number of distinct species recorded per
// period, and per grouping value when grouping by genus or family.
// Records without a species-rank name (blank or recoded missing) are
// excluded and counted; dropping them can only lower the totals.
func SpeciesCounts(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error) {
	if err := ValidateGroupBy(spec.GroupBy); err != nil {
		return model.SummaryTable{}, err
	}

	table := model.SummaryTable{
		Assessor:   model.AssessSpeciesCounts,
		GroupBy:    spec.GroupBy,
		Exclusions: b.baseExclusions(),
	}

	missingSpecies := 0
	for i, period := range b.Periods {
		records := b.ByPeriod[i]

		species := make(map[string]struct{})
		perGroup := make(map[string]map[string]struct{})
		perGroupUsed := make(map[string]int)
		used := 0
		for _, rec := range records {
			if !rec.IdentifiedToSpecies() {
				missingSpecies++
				continue
			}
			used++
			species[rec.Species] = struct{}{}
			if spec.GroupBy != model.GroupSpecies {
				g := rec.GroupValue(spec.GroupBy)
				if perGroup[g] == nil {
					perGroup[g] = make(map[string]struct{})
				}
				perGroup[g][rec.Species] = struct{}{}
				perGroupUsed[g]++
			}
		}

		table.Rows = append(table.Rows, model.SummaryRow{
			Period:      period.Label(),
			RecordCount: used,
			Metrics:     map[string]float64{"species": float64(len(species))},
		})
		for g, set := range perGroup {
			table.Rows = append(table.Rows, model.SummaryRow{
				Period:      period.Label(),
				Group:       g,
				RecordCount: perGroupUsed[g],
				Metrics:     map[string]float64{"species": float64(len(set))},
			})
		}
	}

	if missingSpecies > 0 {
		table.Exclusions[ExclNoSpecies] = missingSpecies
		table.Notes = append(table.Notes,
			fmt.Sprintf("%d records lacked a species-rank identification and were excluded from species counts", missingSpecies))
	}

	sortRows(table.Rows, b.Periods)
	table.Excluded = sumExclusions(table.Exclusions)
	return table, ctx.Err()
}

// TaxonomicResolution reports, per period and grouping value, the
// proportion of records identified to species rank. An empty period
// reports a zero proportion instead of failing.
func TaxonomicResolution(ctx context.Context, b *Binned, spec model.AssessmentJobSpec) (model.SummaryTable, error) {
	if err := ValidateGroupBy(spec.GroupBy); err != nil {
		return model.SummaryTable{}, err
	}

	table := model.SummaryTable{
		Assessor:   model.AssessTaxonomicRes,
		GroupBy:    spec.GroupBy,
		Exclusions: b.baseExclusions(),
	}

	for i, period := range b.Periods {
		records := b.ByPeriod[i]

		total, identified := len(records), 0
		perGroupTotal := make(map[string]int)
		perGroupIdent := make(map[string]int)
		for _, rec := range records {
			g := rec.GroupValue(spec.GroupBy)
			perGroupTotal[g]++
			if rec.IdentifiedToSpecies() {
				identified++
				perGroupIdent[g]++
			}
		}

		table.Rows = append(table.Rows, model.SummaryRow{
			Period:      period.Label(),
			RecordCount: total,
			Metrics: map[string]float64{
				"records":    float64(total),
				"identified": float64(identified),
				"proportion": proportion(identified, total),
			},
		})
		for _, g := range groupsIn(records, spec.GroupBy) {
			table.Rows = append(table.Rows, model.SummaryRow{
				Period:      period.Label(),
				Group:       g,
				RecordCount: perGroupTotal[g],
				Metrics: map[string]float64{
					"records":    float64(perGroupTotal[g]),
					"identified": float64(perGroupIdent[g]),
					"proportion": proportion(perGroupIdent[g], perGroupTotal[g]),
				},
			})
		}
	}

	sortRows(table.Rows, b.Periods)
	table.Excluded = sumExclusions(table.Exclusions)
	return table, ctx.Err()
}

func proportion(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
