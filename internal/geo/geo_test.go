package geo

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func squareMask(t *testing.T) *Polygon {
	t.Helper()
	// 1x1 degree square near the equator
	p, err := NewPolygon([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	return p
}

func TestPolygon(t *testing.T) {
	Convey("Given a square mask", t, func() {
		p := squareMask(t)

		Convey("It contains interior points", func() {
			So(p.Contains(Point{Lon: 0.5, Lat: 0.5}), ShouldBeTrue)
			So(p.Contains(Point{Lon: 0.01, Lat: 0.99}), ShouldBeTrue)
		})

		Convey("It rejects exterior points", func() {
			So(p.Contains(Point{Lon: 1.5, Lat: 0.5}), ShouldBeFalse)
			So(p.Contains(Point{Lon: -0.1, Lat: -0.1}), ShouldBeFalse)
		})

		Convey("Its bounds match the ring", func() {
			minLon, minLat, maxLon, maxLat := p.Bounds()
			So(minLon, ShouldEqual, 0)
			So(minLat, ShouldEqual, 0)
			So(maxLon, ShouldEqual, 1)
			So(maxLat, ShouldEqual, 1)
		})

		Convey("Its area is close to one square degree at the equator", func() {
			// 111.195 km per degree in both axes near lat 0.5
			expected := 111.195 * 111.195 * math.Cos(0.5*math.Pi/180)
			So(p.AreaKm2(), ShouldAlmostEqual, expected, expected*0.01)
		})

		Convey("Random points always land inside", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 200; i++ {
				So(p.Contains(p.RandomPoint(rng)), ShouldBeTrue)
			}
		})
	})

	Convey("A ring with fewer than 3 vertices is rejected", t, func() {
		_, err := NewPolygon([][2]float64{{0, 0}, {1, 1}})
		So(err, ShouldNotBeNil)
	})
}

func TestDistanceKm(t *testing.T) {
	Convey("Haversine distance behaves sensibly", t, func() {
		Convey("Zero for identical points", func() {
			p := Point{Lon: 4.9, Lat: 52.37}
			So(DistanceKm(p, p), ShouldEqual, 0)
		})

		Convey("One degree of latitude is about 111 km", func() {
			d := DistanceKm(Point{Lon: 0, Lat: 0}, Point{Lon: 0, Lat: 1})
			So(d, ShouldAlmostEqual, 111.2, 0.5)
		})

		Convey("Distance is symmetric", func() {
			a := Point{Lon: 5.0, Lat: 52.0}
			b := Point{Lon: 5.5, Lat: 52.3}
			So(DistanceKm(a, b), ShouldAlmostEqual, DistanceKm(b, a), 1e-9)
		})
	})
}

func TestGrid(t *testing.T) {
	Convey("Given a 10x10 grid of half-degree cells", t, func() {
		g, err := NewGrid(0, 0, 5, 5, 0.5)
		So(err, ShouldBeNil)
		So(g.Cols, ShouldEqual, 10)
		So(g.Rows, ShouldEqual, 10)
		So(g.NumCells(), ShouldEqual, 100)

		Convey("Points map to the right cell", func() {
			x, y, ok := g.CellIndex(Point{Lon: 0.25, Lat: 0.25})
			So(ok, ShouldBeTrue)
			So(x, ShouldEqual, 0)
			So(y, ShouldEqual, 0)

			x, y, ok = g.CellIndex(Point{Lon: 4.75, Lat: 1.1})
			So(ok, ShouldBeTrue)
			So(x, ShouldEqual, 9)
			So(y, ShouldEqual, 2)
		})

		Convey("Points outside the bounds report not ok", func() {
			_, _, ok := g.CellIndex(Point{Lon: 6, Lat: 1})
			So(ok, ShouldBeFalse)
			_, _, ok = g.CellIndex(Point{Lon: -0.1, Lat: 1})
			So(ok, ShouldBeFalse)
		})

		Convey("Cell centers sit half a cell in", func() {
			c := g.CellCenter(0, 0)
			So(c.Lon, ShouldAlmostEqual, 0.25, 1e-9)
			So(c.Lat, ShouldAlmostEqual, 0.25, 1e-9)
		})
	})

	Convey("A non-positive cell size is rejected", t, func() {
		_, err := NewGrid(0, 0, 5, 5, 0)
		So(err, ShouldNotBeNil)
	})

	Convey("Degenerate bounds are rejected", t, func() {
		_, err := NewGrid(2, 0, 2, 5, 0.5)
		So(err, ShouldNotBeNil)
	})
}

func TestRaster(t *testing.T) {
	Convey("Given a raster over a small grid", t, func() {
		g, err := NewGrid(0, 0, 2, 2, 1)
		So(err, ShouldBeNil)
		r := NewRaster(g)

		Convey("Adding points accumulates per-cell counts", func() {
			So(r.Add(Point{Lon: 0.5, Lat: 0.5}), ShouldBeTrue)
			So(r.Add(Point{Lon: 0.6, Lat: 0.4}), ShouldBeTrue)
			So(r.Add(Point{Lon: 1.5, Lat: 1.5}), ShouldBeTrue)
			So(r.Add(Point{Lon: 3.0, Lat: 0.5}), ShouldBeFalse)

			So(r.OccupiedCells(), ShouldEqual, 2)
			So(r.MaxCount(), ShouldEqual, 2)
		})

		Convey("An empty raster has zero occupancy", func() {
			So(r.OccupiedCells(), ShouldEqual, 0)
			So(r.MaxCount(), ShouldEqual, 0)
		})
	})

	Convey("Jaccard overlap of occupied cells", t, func() {
		g, _ := NewGrid(0, 0, 3, 3, 1)
		a, b := NewRaster(g), NewRaster(g)

		Convey("Two empty rasters overlap fully by convention", func() {
			So(Jaccard(a, b), ShouldEqual, 1)
		})

		Convey("Disjoint rasters score zero", func() {
			a.Add(Point{Lon: 0.5, Lat: 0.5})
			b.Add(Point{Lon: 2.5, Lat: 2.5})
			So(Jaccard(a, b), ShouldEqual, 0)
		})

		Convey("Partial overlap scores the shared fraction", func() {
			a.Add(Point{Lon: 0.5, Lat: 0.5})
			a.Add(Point{Lon: 1.5, Lat: 1.5})
			b.Add(Point{Lon: 1.5, Lat: 1.5})
			b.Add(Point{Lon: 2.5, Lat: 2.5})
			// 1 shared cell of 3 distinct
			So(Jaccard(a, b), ShouldAlmostEqual, 1.0/3.0, 1e-9)
		})

		Convey("Identical rasters score one", func() {
			a.Add(Point{Lon: 0.5, Lat: 0.5})
			b.Add(Point{Lon: 0.7, Lat: 0.7})
			So(Jaccard(a, b), ShouldEqual, 1)
		})
	})
}
