package assess

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go-occurrence-assess/internal/model"
)

// writeCovariateGrid lays down a 6x6 degree grid with two covariates that
// follow a west-east and south-north gradient
func writeCovariateGrid(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "covariates.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("covariate file: %v", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "lon,lat,temperature,rainfall")
	for lon := 0; lon < 6; lon++ {
		for lat := 0; lat < 6; lat++ {
			fmt.Fprintf(f, "%d.5,%d.5,%.1f,%.1f\n", lon, lat, 10.0+float64(lon), 600.0+20.0*float64(lat))
		}
	}
	return f.Name()
}

func TestEnvironmentalBias(t *testing.T) {
	Convey("Given a covariate grid and records biased to one corner", t, func() {
		path := writeCovariateGrid(t)
		spec := model.AssessmentJobSpec{
			GroupBy:     model.GroupSpecies,
			Environment: &model.EnvironmentOptions{CovariateFile: path},
		}

		records := []model.Occurrence{
			occ("a", "g", 1960, 0.5, 0.5),
			occ("a", "g", 1960, 0.5, 1.5),
			occ("b", "g", 1960, 1.5, 0.5),
			occ("c", "g", 1990, 100.0, 100.0), // far from every grid point
		}
		b := bin(t, records)

		table, err := EnvironmentalBias(context.Background(), b, spec)
		So(err, ShouldBeNil)

		Convey("Matched records project into component space", func() {
			first := table.Rows[0]
			So(first.Metrics["records_matched"], ShouldEqual, 3)
			So(first.Metrics, ShouldContainKey, "pc1_mean")
			So(first.Metrics, ShouldContainKey, "pc2_mean")
		})

		Convey("Corner-biased sampling sits away from the background centroid", func() {
			So(table.Rows[0].Metrics["centroid_dist"], ShouldBeGreaterThan, 0)
		})

		Convey("Records far from the grid are excluded, not matched to garbage", func() {
			So(table.Exclusions[ExclNoMatch], ShouldEqual, 1)
			second := table.Rows[1]
			So(second.Metrics["records_matched"], ShouldEqual, 0)
		})

		Convey("The background cloud is attached for the chart", func() {
			background := 0
			for _, p := range table.Points {
				if p.Series == "background" {
					background++
				}
			}
			So(background, ShouldEqual, 36)
		})

		Convey("Rerunning yields an identical table", func() {
			again, err := EnvironmentalBias(context.Background(), b, spec)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, table)
		})
	})

	Convey("A missing covariate file is a fatal assessor error", t, func() {
		b := bin(t, nil)
		_, err := EnvironmentalBias(context.Background(), b, model.AssessmentJobSpec{
			GroupBy:     model.GroupSpecies,
			Environment: &model.EnvironmentOptions{CovariateFile: "/nonexistent/covariates.csv"},
		})
		So(err, ShouldNotBeNil)
	})

	Convey("A covariate spec without a file is a fatal assessor error", t, func() {
		b := bin(t, nil)
		_, err := EnvironmentalBias(context.Background(), b, model.AssessmentJobSpec{GroupBy: model.GroupSpecies})
		So(err, ShouldNotBeNil)
	})
}
