package pipeline

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go-occurrence-assess/internal/model"
)

// cleanAll runs the cleaning stage over raw records and drains the output
func cleanAll(raw []GenericRecord) ([]model.Occurrence, CleanStats) {
	in := make(chan GenericRecord, len(raw))
	out := make(chan model.Occurrence, len(raw))
	errs := make(chan error, len(raw))

	for _, r := range raw {
		in <- r
	}
	close(in)

	tracker := CleanRecords(context.Background(), in, out, errs, 2)

	var cleaned []model.Occurrence
	for occ := range out {
		cleaned = append(cleaned, occ)
	}
	return cleaned, tracker.Snapshot()
}

func TestCleanRecords(t *testing.T) {
	Convey("Given a well-formed GBIF-style row", t, func() {
		cleaned, stats := cleanAll([]GenericRecord{{
			"species":          "Bombus terrestris",
			"genus":            "Bombus",
			"family":           "Apidae",
			"decimalLongitude": 5.12,
			"decimalLatitude":  52.09,
			"year":             1987,
			"eventDate":        "1987-06-14",
			"datasetKey":       "abc-123",
			"countryCode":      "NL",
		}})

		So(len(cleaned), ShouldEqual, 1)
		occ := cleaned[0]

		Convey("All typed fields come through", func() {
			So(occ.Species, ShouldEqual, "Bombus terrestris")
			So(occ.HasCoords, ShouldBeTrue)
			So(occ.Longitude, ShouldAlmostEqual, 5.12, 1e-9)
			So(occ.HasYear, ShouldBeTrue)
			So(occ.Year, ShouldEqual, 1987)
			So(occ.DatasetKey, ShouldEqual, "abc-123")
		})

		Convey("Nothing is flagged", func() {
			So(stats.Total, ShouldEqual, 1)
			So(stats.RecodedTaxa, ShouldEqual, 0)
			So(stats.MissingCoords, ShouldEqual, 0)
			So(stats.MissingYear, ShouldEqual, 0)
		})
	})

	Convey("Blank taxonomic fields are recoded to missing", t, func() {
		cleaned, stats := cleanAll([]GenericRecord{{
			"species": "",
			"genus":   "Bombus",
			"year":    1990,
		}})

		occ := cleaned[0]
		So(occ.Species, ShouldEqual, model.MissingTaxon)
		So(occ.Genus, ShouldEqual, "Bombus")
		So(occ.Family, ShouldEqual, model.MissingTaxon) // absent behaves like blank
		So(occ.IdentifiedToSpecies(), ShouldBeFalse)
		So(stats.RecodedTaxa, ShouldEqual, 2)
	})

	Convey("Out-of-range coordinates are dropped, the record is kept", t, func() {
		cleaned, stats := cleanAll([]GenericRecord{{
			"species":          "Apis mellifera",
			"decimalLongitude": 512.0,
			"decimalLatitude":  52.0,
			"year":             2001,
		}})

		So(len(cleaned), ShouldEqual, 1)
		So(cleaned[0].HasCoords, ShouldBeFalse)
		So(stats.BadCoords, ShouldEqual, 1)
		So(stats.MissingCoords, ShouldEqual, 1)
	})

	Convey("An unparseable year leaves the record usable but unbinnable", t, func() {
		cleaned, stats := cleanAll([]GenericRecord{{
			"species": "Apis mellifera",
			"year":    "unknown",
		}})

		So(cleaned[0].HasYear, ShouldBeFalse)
		So(stats.MissingYear, ShouldEqual, 1)
	})

	Convey("A zero year is not a usable year", t, func() {
		cleaned, _ := cleanAll([]GenericRecord{{
			"species": "Apis mellifera",
			"year":    0,
		}})
		So(cleaned[0].HasYear, ShouldBeFalse)
	})

	Convey("Coordinate uncertainty and issue flags are preserved", t, func() {
		cleaned, _ := cleanAll([]GenericRecord{{
			"species":                       "Apis mellifera",
			"decimalLongitude":              5.0,
			"decimalLatitude":               52.0,
			"year":                          2001,
			"coordinateUncertaintyInMeters": 250,
			"issue":                         "COORDINATE_ROUNDED;GEODETIC_DATUM_ASSUMED_WGS84",
		}})

		occ := cleaned[0]
		So(occ.UncertaintyM, ShouldNotBeNil)
		So(*occ.UncertaintyM, ShouldEqual, 250)
		So(occ.Issues, ShouldResemble, []string{"COORDINATE_ROUNDED", "GEODETIC_DATUM_ASSUMED_WGS84"})
	})
}

func TestCleanTrackerSnapshot(t *testing.T) {
	Convey("Snapshot returns an independent copy of the counters", t, func() {
		tracker := &CleanTracker{}
		cleanRecord(GenericRecord{"species": "Apis mellifera", "year": 2001}, tracker)

		before := tracker.Snapshot()
		So(before.Total, ShouldEqual, 1)

		cleanRecord(GenericRecord{"genus": "Bombus"}, tracker)

		Convey("Later updates do not leak into earlier snapshots", func() {
			So(before.Total, ShouldEqual, 1)
			So(tracker.Snapshot().Total, ShouldEqual, 2)
		})

		Convey("Snapshots can be copied freely", func() {
			copied := before
			copied.Total = 99
			So(before.Total, ShouldEqual, 1)
		})
	})
}
