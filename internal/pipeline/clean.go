package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/pkg/utils"
)

// CleanStats tallies what cleaning did to the raw records. Nothing here
// is a failure: records missing fields are kept and flagged so each
// assessor can exclude (and report) them on its own terms.
type CleanStats struct {
	Total         int `json:"total"`
	RecodedTaxa   int `json:"recoded_taxa"`   // blank species/genus/family -> missing
	MissingCoords int `json:"missing_coords"` // no usable lon/lat pair
	MissingYear   int `json:"missing_year"`   // no usable collection year
	BadCoords     int `json:"bad_coords"`     // lon/lat outside valid ranges
}

// CleanTracker guards the live counters while the worker pool runs.
// Downstream stages read plain CleanStats copies via Snapshot.
type CleanTracker struct {
	mu    sync.Mutex
	stats CleanStats
}

// Snapshot returns a copy of the counters safe to pass around
func (t *CleanTracker) Snapshot() CleanStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// CleanRecords converts raw ingested maps into typed occurrences.
// Blank-string taxonomic fields are recoded to the missing value; the
// same blank-vs-absent equivalence GBIF exports blur.
func CleanRecords(
	ctx context.Context,
	in <-chan GenericRecord,
	out chan<- model.Occurrence,
	errs chan<- error,
	workerCount int,
) *CleanTracker {
	tracker := &CleanTracker{}

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			defer wg.Done()
			workerCleaned := 0

			for rec := range in {
				select {
				case <-ctx.Done():
					return
				default:
					occ := cleanRecord(rec, tracker)

					select {
					case <-ctx.Done():
						return
					case out <- occ:
						workerCleaned++
						if workerCleaned%500 == 0 {
							fmt.Printf("🧹 Clean Worker %d: %d records cleaned\n", workerID, workerCleaned)
						}
					}
				}
			}

			fmt.Printf("🧹 Clean Worker %d completed: %d records\n", workerID, workerCleaned)
		}(i)
	}

	// Close the output channel only AFTER all workers finish
	go func() {
		wg.Wait()
		final := tracker.Snapshot()
		fmt.Printf("🧹 Cleaning Summary: %d records, %d taxa recoded to missing, %d without coordinates, %d without year\n",
			final.Total, final.RecodedTaxa, final.MissingCoords, final.MissingYear)
		close(out)
	}()

	return tracker
}

// cleanRecord maps one raw GBIF-style row to a typed occurrence
func cleanRecord(rec GenericRecord, tracker *CleanTracker) model.Occurrence {
	occ := model.Occurrence{
		Species:     taxonField(rec, "species"),
		Genus:       taxonField(rec, "genus"),
		Family:      taxonField(rec, "family"),
		EventDate:   utils.StringField(rec, "eventDate"),
		DatasetKey:  utils.StringField(rec, "datasetKey"),
		CountryCode: utils.StringField(rec, "countryCode"),
		SourceURL:   utils.StringField(rec, "SourceURL"),
	}

	recoded := 0
	for _, v := range []string{occ.Species, occ.Genus, occ.Family} {
		if v == model.MissingTaxon {
			recoded++
		}
	}

	lon, lonOK := utils.NumericOK(rec["decimalLongitude"])
	lat, latOK := utils.NumericOK(rec["decimalLatitude"])
	badCoords := false
	if lonOK && latOK {
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			badCoords = true
		} else {
			occ.Longitude, occ.Latitude, occ.HasCoords = lon, lat, true
		}
	}

	if year, ok := utils.NumericOK(rec["year"]); ok && year > 0 {
		occ.Year, occ.HasYear = int(year), true
	}

	if u, ok := utils.NumericOK(rec["coordinateUncertaintyInMeters"]); ok {
		occ.UncertaintyM = &u
	}

	if issues := utils.StringField(rec, "issue"); issues != "" {
		occ.Issues = splitIssues(issues)
	}

	tracker.mu.Lock()
	tracker.stats.Total++
	tracker.stats.RecodedTaxa += recoded
	if !occ.HasCoords {
		tracker.stats.MissingCoords++
	}
	if badCoords {
		tracker.stats.BadCoords++
	}
	if !occ.HasYear {
		tracker.stats.MissingYear++
	}
	tracker.mu.Unlock()

	return occ
}

// taxonField reads a taxonomic column, recoding blanks to missing
func taxonField(rec GenericRecord, key string) string {
	v := utils.StringField(rec, key)
	if v == "" {
		return model.MissingTaxon
	}
	return v
}

// splitIssues parses GBIF's semicolon-joined issue flag column
func splitIssues(raw string) []string {
	var issues []string
	for _, part := range strings.Split(raw, ";") {
		if p := strings.TrimSpace(part); p != "" {
			issues = append(issues, p)
		}
	}
	return issues
}
