package utils

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDuration(t *testing.T) {
	Convey("Duration parsing falls back to five minutes", t, func() {
		So(ParseDuration("30s"), ShouldEqual, 30*time.Second)
		So(ParseDuration("2h"), ShouldEqual, 2*time.Hour)
		So(ParseDuration(""), ShouldEqual, 5*time.Minute)
		So(ParseDuration("soon"), ShouldEqual, 5*time.Minute)
	})
}

func TestParseValue(t *testing.T) {
	Convey("Raw cells parse to the narrowest type", t, func() {
		So(ParseValue("1987"), ShouldEqual, 1987)
		So(ParseValue("5.12"), ShouldEqual, 5.12)
		So(ParseValue(" Bombus terrestris "), ShouldEqual, "Bombus terrestris")
		So(ParseValue(""), ShouldEqual, "")
	})
}

func TestNumericOK(t *testing.T) {
	Convey("NumericOK distinguishes a real zero from garbage", t, func() {
		v, ok := NumericOK(0)
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 0)

		v, ok = NumericOK("52.09")
		So(ok, ShouldBeTrue)
		So(v, ShouldAlmostEqual, 52.09, 1e-9)

		_, ok = NumericOK("")
		So(ok, ShouldBeFalse)

		_, ok = NumericOK("unknown")
		So(ok, ShouldBeFalse)

		_, ok = NumericOK(nil)
		So(ok, ShouldBeFalse)
	})
}

func TestStringField(t *testing.T) {
	rec := map[string]interface{}{
		"species": "  Bombus terrestris ",
		"year":    1987,
		"lon":     5.5,
		"empty":   nil,
	}

	Convey("String fields come back trimmed", t, func() {
		So(StringField(rec, "species"), ShouldEqual, "Bombus terrestris")
	})

	Convey("Parsed numerics render back to strings", t, func() {
		So(StringField(rec, "year"), ShouldEqual, "1987")
		So(StringField(rec, "lon"), ShouldEqual, "5.5")
	})

	Convey("Absent and nil fields are empty", t, func() {
		So(StringField(rec, "missing"), ShouldEqual, "")
		So(StringField(rec, "empty"), ShouldEqual, "")
	})
}
