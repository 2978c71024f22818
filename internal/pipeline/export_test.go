package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go-occurrence-assess/internal/model"
	"go-occurrence-assess/pkg/utils"
)

func exportTables() []model.SummaryTable {
	return []model.SummaryTable{{
		Assessor: model.AssessRecordCounts,
		GroupBy:  model.GroupSpecies,
		Rows: []model.SummaryRow{
			{Period: "1950-1979", RecordCount: 3, Metrics: map[string]float64{"records": 3}},
			{Period: "1950-1979", Group: "Bombus terrestris", RecordCount: 2, Metrics: map[string]float64{"records": 2}},
		},
	}}
}

func TestExportToCSV(t *testing.T) {
	Convey("Summary tables export in long format", t, func() {
		em := &ExportManager{
			JobID:  "job-1",
			Output: utils.NewOutputManager(t.TempDir()),
		}
		path := filepath.Join(t.TempDir(), "summary.csv")

		rows, err := em.exportToCSV(path, exportTables())
		So(err, ShouldBeNil)
		So(rows, ShouldEqual, 2) // one row per metric value

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")

		So(lines[0], ShouldEqual, "assessor,period,group,record_count,metric,value")
		So(lines[1], ShouldEqual, "recordCounts,1950-1979,,3,records,3")
		So(lines[2], ShouldEqual, "recordCounts,1950-1979,Bombus terrestris,2,records,2")
	})
}

func TestExportToJSON(t *testing.T) {
	Convey("The JSON export wraps tables in an envelope", t, func() {
		em := &ExportManager{
			JobID:  "job-1",
			Output: utils.NewOutputManager(t.TempDir()),
		}
		path := filepath.Join(t.TempDir(), "summary.json")

		count, err := em.exportToJSON(path, exportTables())
		So(err, ShouldBeNil)
		So(count, ShouldEqual, 1)

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)

		var payload map[string]interface{}
		So(json.Unmarshal(data, &payload), ShouldBeNil)

		info := payload["export_info"].(map[string]interface{})
		So(info["job_id"], ShouldEqual, "job-1")
		So(info["table_count"], ShouldEqual, 1.0)
		So(payload["data"], ShouldNotBeNil)
	})
}
