package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGroupValue(t *testing.T) {
	occ := Occurrence{Species: "Bombus terrestris", Genus: "Bombus", Family: "Apidae"}

	Convey("GroupValue picks the requested taxonomic column", t, func() {
		So(occ.GroupValue(GroupSpecies), ShouldEqual, "Bombus terrestris")
		So(occ.GroupValue(GroupGenus), ShouldEqual, "Bombus")
		So(occ.GroupValue(GroupFamily), ShouldEqual, "Apidae")
	})

	Convey("Blank fields come back as the missing value", t, func() {
		blank := Occurrence{Species: "", Genus: ""}
		So(blank.GroupValue(GroupSpecies), ShouldEqual, MissingTaxon)
		So(blank.GroupValue(GroupGenus), ShouldEqual, MissingTaxon)
	})
}

func TestIdentifiedToSpecies(t *testing.T) {
	Convey("Species-rank identification", t, func() {
		So(Occurrence{Species: "Bombus terrestris"}.IdentifiedToSpecies(), ShouldBeTrue)
		So(Occurrence{Species: ""}.IdentifiedToSpecies(), ShouldBeFalse)
		So(Occurrence{Species: MissingTaxon}.IdentifiedToSpecies(), ShouldBeFalse)
	})
}

func TestPeriod(t *testing.T) {
	p := Period{Start: 1900, End: 1909}

	Convey("Period labels and containment", t, func() {
		So(p.Label(), ShouldEqual, "1900-1909")
		So(p.Contains(1900), ShouldBeTrue)
		So(p.Contains(1909), ShouldBeTrue)
		So(p.Contains(1899), ShouldBeFalse)
		So(p.Contains(1910), ShouldBeFalse)
	})
}
