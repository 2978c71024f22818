package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"go-occurrence-assess/internal/model"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init db: %v", err)
	}
}

func testSpec() model.AssessmentJobSpec {
	return model.AssessmentJobSpec{
		Sources:   []model.Source{{Type: "csv", URL: "occ.csv"}},
		Periods:   []model.Period{{Start: 1950, End: 1979}, {Start: 1980, End: 2009}},
		GroupBy:   model.GroupSpecies,
		Assessors: []string{model.AssessRecordCounts},
	}
}

func TestJobLifecycle(t *testing.T) {
	Convey("Given a fresh tracking database", t, func() {
		openTestDB(t)

		Convey("A saved job can be fetched back with its spec", func() {
			So(SaveJob("job-1", testSpec()), ShouldBeNil)

			job, err := GetJob("job-1")
			So(err, ShouldBeNil)
			So(job["id"], ShouldEqual, "job-1")
			So(job["status"], ShouldEqual, "pending")

			spec := job["spec"].(model.AssessmentJobSpec)
			So(spec.GroupBy, ShouldEqual, model.GroupSpecies)
			So(len(spec.Periods), ShouldEqual, 2)
		})

		Convey("Status updates are visible on the next fetch", func() {
			So(SaveJob("job-2", testSpec()), ShouldBeNil)
			So(UpdateJobStatus("job-2", "completed"), ShouldBeNil)

			job, err := GetJob("job-2")
			So(err, ShouldBeNil)
			So(job["status"], ShouldEqual, "completed")
		})

		Convey("Listing includes every saved job", func() {
			So(SaveJob("job-3", testSpec()), ShouldBeNil)
			So(SaveJob("job-4", testSpec()), ShouldBeNil)

			jobs, err := ListJobs()
			So(err, ShouldBeNil)
			So(len(jobs), ShouldEqual, 2)
		})

		Convey("Fetching an unknown job fails", func() {
			_, err := GetJob("no-such-job")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestJobErrors(t *testing.T) {
	Convey("Given a job with recorded errors", t, func() {
		openTestDB(t)
		So(SaveJob("job-1", testSpec()), ShouldBeNil)
		So(SaveJobError("job-1", errors.New("source unreachable")), ShouldBeNil)

		Convey("Errors come back in insertion order", func() {
			So(SaveJobError("job-1", errors.New("second failure")), ShouldBeNil)

			errs, err := GetJobErrors("job-1")
			So(err, ShouldBeNil)
			So(len(errs), ShouldEqual, 2)
			So(errs[0]["message"], ShouldEqual, "source unreachable")
		})

		Convey("A nil error is a no-op", func() {
			So(SaveJobError("job-1", nil), ShouldBeNil)
			errs, _ := GetJobErrors("job-1")
			So(len(errs), ShouldEqual, 1)
		})
	})
}

func TestStageProgress(t *testing.T) {
	Convey("Stage progress rows round-trip", t, func() {
		openTestDB(t)

		started := time.Now().UTC()
		ended := started.Add(3 * time.Second)
		So(SaveStageProgress("job-1", "ingestion", "completed", &started, &ended, 1200, 2), ShouldBeNil)
		So(SaveStageProgress("job-1", "binning", "running", &started, nil, 0, 0), ShouldBeNil)

		progress, err := GetStageProgress("job-1")
		So(err, ShouldBeNil)
		So(len(progress), ShouldEqual, 2)

		So(progress[0]["stage"], ShouldEqual, "ingestion")
		So(progress[0]["recordCount"], ShouldEqual, 1200)
		So(progress[0], ShouldContainKey, "endedAt")

		// open stage has no end time yet
		So(progress[1], ShouldNotContainKey, "endedAt")
	})
}

func TestPipelineLogs(t *testing.T) {
	Convey("Structured logs round-trip with their fields", t, func() {
		openTestDB(t)

		So(SavePipelineLog("job-1", "cleaning", "info", "stage done",
			map[string]interface{}{"records": 42}), ShouldBeNil)

		logs, err := GetPipelineLogs("job-1", 0)
		So(err, ShouldBeNil)
		So(len(logs), ShouldEqual, 1)
		So(logs[0]["message"], ShouldEqual, "stage done")

		// JSON round-trip turns numbers into float64
		fields := logs[0]["fields"].(map[string]interface{})
		So(fields["records"], ShouldEqual, 42.0)
	})

	Convey("The limit caps the returned rows", t, func() {
		openTestDB(t)
		for i := 0; i < 5; i++ {
			So(SavePipelineLog("job-1", "assessors", "info", "tick", nil), ShouldBeNil)
		}
		logs, err := GetPipelineLogs("job-1", 3)
		So(err, ShouldBeNil)
		So(len(logs), ShouldEqual, 3)
	})
}

func TestAssessmentResults(t *testing.T) {
	Convey("Summary tables round-trip through the store", t, func() {
		openTestDB(t)

		table := model.SummaryTable{
			Assessor: model.AssessRecordCounts,
			GroupBy:  model.GroupSpecies,
			Rows: []model.SummaryRow{
				{Period: "1950-1979", RecordCount: 3, Metrics: map[string]float64{"records": 3}},
				{Period: "1980-2009", RecordCount: 0, Metrics: map[string]float64{"records": 0}},
			},
			Excluded:   1,
			Exclusions: map[string]int{"missing_year": 1},
		}
		So(SaveAssessmentResult("job-1", table), ShouldBeNil)

		tables, err := GetAssessmentResults("job-1")
		So(err, ShouldBeNil)
		So(len(tables), ShouldEqual, 1)
		So(tables[0], ShouldResemble, table)

		Convey("Other jobs see nothing", func() {
			other, err := GetAssessmentResults("job-2")
			So(err, ShouldBeNil)
			So(other, ShouldBeEmpty)
		})
	})
}
