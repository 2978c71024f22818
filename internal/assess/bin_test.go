package assess

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go-occurrence-assess/internal/model"
)

func yearOnly(species string, year int) model.Occurrence {
	return model.Occurrence{Species: species, Year: year, HasYear: year != 0}
}

func TestBinPeriods(t *testing.T) {
	periods := []model.Period{
		{Start: 1900, End: 1909},
		{Start: 1990, End: 1999},
		{Start: 2000, End: 2009},
	}

	Convey("Given records scattered across decades", t, func() {
		records := []model.Occurrence{
			yearOnly("Bombus terrestris", 1905),
			yearOnly("Bombus lapidarius", 1915), // between periods
			yearOnly("Bombus pascuorum", 1995),
			yearOnly("Bombus pratorum", 1995),
			yearOnly("Bombus hortorum", 2005),
			yearOnly("Bombus ruderatus", 0), // no usable year
		}

		b, err := BinPeriods(records, periods)
		So(err, ShouldBeNil)

		Convey("Each record lands in at most one period", func() {
			So(len(b.ByPeriod[0]), ShouldEqual, 1)
			So(len(b.ByPeriod[1]), ShouldEqual, 2)
			So(len(b.ByPeriod[2]), ShouldEqual, 1)
		})

		Convey("The partition counters add up to the total", func() {
			So(b.Assigned, ShouldEqual, 4)
			So(b.Unassigned, ShouldEqual, 1)
			So(b.NoYear, ShouldEqual, 1)
			So(b.Assigned+b.Unassigned+b.NoYear, ShouldEqual, b.Total)
		})

		Convey("Binning losses seed the exclusion map", func() {
			ex := b.baseExclusions()
			So(ex[ExclNoYear], ShouldEqual, 1)
			So(ex[ExclUnassigned], ShouldEqual, 1)
			So(sumExclusions(ex), ShouldEqual, 2)
		})
	})

	Convey("Period boundaries are inclusive on both ends", t, func() {
		records := []model.Occurrence{
			yearOnly("a", 1900),
			yearOnly("b", 1909),
			yearOnly("c", 1990),
			yearOnly("d", 1999),
		}
		b, err := BinPeriods(records, periods)
		So(err, ShouldBeNil)
		So(len(b.ByPeriod[0]), ShouldEqual, 2)
		So(len(b.ByPeriod[1]), ShouldEqual, 2)
	})

	Convey("An empty record set still bins cleanly", t, func() {
		b, err := BinPeriods(nil, periods)
		So(err, ShouldBeNil)
		So(b.Total, ShouldEqual, 0)
		So(b.Assigned, ShouldEqual, 0)
		So(len(b.ByPeriod), ShouldEqual, 3)
	})
}

func TestValidatePeriods(t *testing.T) {
	Convey("Period list validation", t, func() {
		Convey("An empty list is rejected", func() {
			So(ValidatePeriods(nil), ShouldNotBeNil)
		})

		Convey("A reversed range is rejected", func() {
			err := ValidatePeriods([]model.Period{{Start: 1950, End: 1940}})
			So(err, ShouldNotBeNil)
		})

		Convey("Overlapping periods are rejected", func() {
			err := ValidatePeriods([]model.Period{
				{Start: 1900, End: 1910},
				{Start: 1910, End: 1920},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("Out-of-order periods are rejected", func() {
			err := ValidatePeriods([]model.Period{
				{Start: 1950, End: 1959},
				{Start: 1900, End: 1909},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("An ordered, disjoint list passes", func() {
			err := ValidatePeriods([]model.Period{
				{Start: 1900, End: 1909},
				{Start: 1910, End: 1919},
			})
			So(err, ShouldBeNil)
		})

		Convey("A single-year period passes", func() {
			So(ValidatePeriods([]model.Period{{Start: 2000, End: 2000}}), ShouldBeNil)
		})
	})
}

func TestValidateGroupBy(t *testing.T) {
	Convey("Grouping column validation", t, func() {
		So(ValidateGroupBy(model.GroupSpecies), ShouldBeNil)
		So(ValidateGroupBy(model.GroupGenus), ShouldBeNil)
		So(ValidateGroupBy(model.GroupFamily), ShouldBeNil)
		So(ValidateGroupBy(""), ShouldNotBeNil)
		So(ValidateGroupBy("order"), ShouldNotBeNil)
	})
}
