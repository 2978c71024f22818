package model

import (
	"fmt"
	"time"
)

// MissingTaxon is the recode value for blank taxonomic fields.
// GBIF exports leave species empty for records only identified to a
// higher rank; an empty string and an absent value mean the same thing.
const MissingTaxon = "missing"

// Occurrence is a single observation event from a GBIF-style export
type Occurrence struct {
	Species      string   `json:"species"`
	Genus        string   `json:"genus"`
	Family       string   `json:"family"`
	Longitude    float64  `json:"decimalLongitude"`
	Latitude     float64  `json:"decimalLatitude"`
	HasCoords    bool     `json:"hasCoords"`
	Year         int      `json:"year"`
	HasYear      bool     `json:"hasYear"`
	EventDate    string   `json:"eventDate,omitempty"` // verbatim, may denote a range
	UncertaintyM *float64 `json:"coordinateUncertaintyInMeters,omitempty"`
	DatasetKey   string   `json:"datasetKey"`
	CountryCode  string   `json:"countryCode,omitempty"`
	Issues       []string `json:"issues,omitempty"`
	SourceURL    string   `json:"sourceUrl,omitempty"`
}

// GroupValue returns the record's value for a grouping column.
// Blank fields come back as MissingTaxon.
func (o Occurrence) GroupValue(groupBy string) string {
	var v string
	switch groupBy {
	case GroupGenus:
		v = o.Genus
	case GroupFamily:
		v = o.Family
	default:
		v = o.Species
	}
	if v == "" {
		return MissingTaxon
	}
	return v
}

// IdentifiedToSpecies reports whether the record carries a species-rank name
func (o Occurrence) IdentifiedToSpecies() bool {
	return o.Species != "" && o.Species != MissingTaxon
}

// Label returns the period's display form, e.g. "1900-1909"
func (p Period) Label() string {
	return fmt.Sprintf("%d-%d", p.Start, p.End)
}

// Contains reports whether a year falls inside the inclusive range
func (p Period) Contains(year int) bool {
	return year >= p.Start && year <= p.End
}

// ScatterPoint is one plotted point in a chart series (e.g. PCA space)
type ScatterPoint struct {
	Series string  `json:"series"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// SummaryRow is one (period, group) entry of an assessor's output table
type SummaryRow struct {
	Period      string             `json:"period"`
	Group       string             `json:"group,omitempty"`
	RecordCount int                `json:"record_count"`
	Metrics     map[string]float64 `json:"metrics"`
}

// SummaryTable is the result of a single assessor invocation
type SummaryTable struct {
	Assessor   string         `json:"assessor"`
	GroupBy    string         `json:"group_by,omitempty"`
	Rows       []SummaryRow   `json:"rows"`
	Excluded   int            `json:"excluded"`         // records this assessor could not use
	Exclusions map[string]int `json:"exclusions"`       // reason -> count
	Points     []ScatterPoint `json:"points,omitempty"` // extra chart data (PCA space, rasters)
	Notes      []string       `json:"notes,omitempty"`  // narrative observations for the report
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "database", "csv", "json", "chart", "report"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}
