package assess

import (
	"fmt"

	"go-occurrence-assess/internal/model"
)

// Exclusion reason keys shared by the assessors
const (
	ExclNoYear     = "missing_year"
	ExclUnassigned = "year_outside_periods"
	ExclNoCoords   = "missing_coordinates"
	ExclOffMask    = "outside_mask"
	ExclNoSpecies  = "missing_species"
	ExclNoMatch    = "no_covariate_match"
)

// Binned holds the dataset partitioned into the analyst's periods.
// Every record lands in at most one period; the counters preserve the
// partition invariant: Assigned + Unassigned + NoYear == Total.
type Binned struct {
	Periods    []model.Period
	ByPeriod   [][]model.Occurrence // parallel to Periods
	Total      int
	Assigned   int
	Unassigned int // usable year, but outside every period
	NoYear     int // no usable year at all
}

// BinPeriods validates the period list and partitions records into it.
// A malformed period list (empty, reversed range, unordered or
// overlapping) is a fatal job error; bad records never are.
func BinPeriods(records []model.Occurrence, periods []model.Period) (*Binned, error) {
	if err := ValidatePeriods(periods); err != nil {
		return nil, err
	}

	b := &Binned{
		Periods:  periods,
		ByPeriod: make([][]model.Occurrence, len(periods)),
		Total:    len(records),
	}

	for _, rec := range records {
		if !rec.HasYear {
			b.NoYear++
			continue
		}
		assigned := false
		for i, p := range periods {
			if p.Contains(rec.Year) {
				b.ByPeriod[i] = append(b.ByPeriod[i], rec)
				b.Assigned++
				assigned = true
				break
			}
		}
		if !assigned {
			b.Unassigned++
		}
	}

	return b, nil
}

// ValidatePeriods checks the period list is non-empty, ordered and
// non-overlapping
func ValidatePeriods(periods []model.Period) error {
	if len(periods) == 0 {
		return fmt.Errorf("period list is empty")
	}
	for i, p := range periods {
		if p.End < p.Start {
			return fmt.Errorf("period %s is reversed", p.Label())
		}
		if i > 0 {
			prev := periods[i-1]
			if p.Start <= prev.End {
				return fmt.Errorf("periods %s and %s overlap or are out of order", prev.Label(), p.Label())
			}
		}
	}
	return nil
}

// ValidateGroupBy checks the grouping column is one the assessors understand
func ValidateGroupBy(groupBy string) error {
	switch groupBy {
	case model.GroupSpecies, model.GroupGenus, model.GroupFamily:
		return nil
	case "":
		return fmt.Errorf("grouping column is required (species, genus or family)")
	default:
		return fmt.Errorf("unknown grouping column: %s", groupBy)
	}
}

// baseExclusions seeds an assessor's exclusion map with the binning losses
func (b *Binned) baseExclusions() map[string]int {
	ex := make(map[string]int)
	if b.NoYear > 0 {
		ex[ExclNoYear] = b.NoYear
	}
	if b.Unassigned > 0 {
		ex[ExclUnassigned] = b.Unassigned
	}
	return ex
}

func sumExclusions(ex map[string]int) int {
	total := 0
	for _, n := range ex {
		total += n
	}
	return total
}
