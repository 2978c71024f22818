package model

// Grouping columns supported by the assessors
const (
	GroupSpecies = "species"
	GroupGenus   = "genus"
	GroupFamily  = "family"
)

// Assessor names accepted in AssessmentJobSpec.Assessors
const (
	AssessRecordCounts  = "recordCounts"
	AssessSpeciesCounts = "speciesCounts"
	AssessTaxonomicRes  = "taxonomicResolution"
	AssessRarityBias    = "rarityBias"
	AssessSpatialCover  = "spatialCoverage"
	AssessSpatialBias   = "spatialBias"
	AssessEnvBias       = "environmentalBias"
)

// Source represents an occurrence data source for the pipeline
type Source struct {
	Type       string `json:"type"`                 // csv, json, api
	URL        string `json:"url"`                  // file path or http(s) URL
	Delimiter  string `json:"delimiter,omitempty"`  // "," default, "\t" for DwC tab archives
	DatasetKey string `json:"datasetKey,omitempty"` // stamped on records missing one
}

// Period is a closed, inclusive year range used to bin records
type Period struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SpatialOptions configures the rasterized assessors
type SpatialOptions struct {
	CellSizeDeg float64      `json:"cellSizeDeg"`    // grid resolution in decimal degrees
	Mask        [][2]float64 `json:"mask,omitempty"` // boundary ring, lon/lat pairs
}

// BootstrapOptions configures the nearest-neighbour index assessor
type BootstrapOptions struct {
	Samples    int   `json:"samples"`    // bootstrap iterations, default 100
	Seed       int64 `json:"seed"`       // RNG seed; fixed so reruns are identical
	MinRecords int   `json:"minRecords"` // periods below this are reported as missing
}

// EnvironmentOptions configures the environmental-bias assessor
type EnvironmentOptions struct {
	CovariateFile string `json:"covariateFile"` // delimited grid: lon, lat, covariates...
	Delimiter     string `json:"delimiter,omitempty"`
	Components    int    `json:"components"` // PCA axes to keep, default 2
}

// Export defines export targets for summary tables and rendered outputs
type Export struct {
	DB     string `json:"db"`     // e.g., sqlite (tracking store)
	File   string `json:"file"`   // e.g., summary.csv or summary.json
	Charts bool   `json:"charts"` // render PNG charts per assessor
	Report bool   `json:"report"` // render the markdown report
}

// Workers defines number of workers per stage
type Workers struct {
	Ingest int `json:"ingest"`
	Clean  int `json:"clean"`
}

// ConcurrencyConfig defines extra concurrency and job options
type ConcurrencyConfig struct {
	Workers           Workers `json:"workers"`
	ChannelBufferSize int     `json:"channelBufferSize"`
	JobTimeout        string  `json:"jobTimeout"` // e.g., "5m"
	APIRetry          int     `json:"apiRetry"`   // retries for http sources
}

// AssessmentJobSpec defines the entire assessment run configuration
type AssessmentJobSpec struct {
	Sources     []Source            `json:"sources"`               // occurrence data sources
	Periods     []Period            `json:"periods"`               // ordered, non-overlapping year ranges
	GroupBy     string              `json:"groupBy"`               // species, genus or family
	Assessors   []string            `json:"assessors"`             // which assessors to run
	Spatial     *SpatialOptions     `json:"spatial,omitempty"`     // required by spatial assessors
	Bootstrap   *BootstrapOptions   `json:"bootstrap,omitempty"`   // NNI bootstrap settings
	Environment *EnvironmentOptions `json:"environment,omitempty"` // PCA covariate settings
	Export      *Export             `json:"export,omitempty"`      // output rules
	Concurrency ConcurrencyConfig   `json:"concurrency"`           // concurrency and worker config
	Logging     bool                `json:"logging"`               // enable detailed logs
}
