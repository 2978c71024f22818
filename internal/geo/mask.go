package geo

import (
	"fmt"
	"math"
	"math/rand"
)

// kmPerDegree is the length of one degree of latitude in kilometers.
// Longitude degrees shrink by cos(latitude).
const kmPerDegree = 111.195

// Point is a lon/lat position in decimal degrees (WGS84)
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Polygon is a closed boundary ring used as a geographic mask
type Polygon struct {
	ring                           []Point
	minLon, minLat, maxLon, maxLat float64
}

// NewPolygon builds a mask from lon/lat pairs. The ring is closed
// automatically when the last vertex differs from the first.
func NewPolygon(ring [][2]float64) (*Polygon, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("mask polygon needs at least 3 vertices, got %d", len(ring))
	}

	p := &Polygon{
		minLon: math.Inf(1), minLat: math.Inf(1),
		maxLon: math.Inf(-1), maxLat: math.Inf(-1),
	}
	for _, v := range ring {
		pt := Point{Lon: v[0], Lat: v[1]}
		p.ring = append(p.ring, pt)
		p.minLon = math.Min(p.minLon, pt.Lon)
		p.minLat = math.Min(p.minLat, pt.Lat)
		p.maxLon = math.Max(p.maxLon, pt.Lon)
		p.maxLat = math.Max(p.maxLat, pt.Lat)
	}
	// close the ring
	first, last := p.ring[0], p.ring[len(p.ring)-1]
	if first != last {
		p.ring = append(p.ring, first)
	}
	return p, nil
}

// Bounds returns the bounding box of the mask
func (p *Polygon) Bounds() (minLon, minLat, maxLon, maxLat float64) {
	return p.minLon, p.minLat, p.maxLon, p.maxLat
}

// Contains reports whether a point falls inside the mask (ray casting)
func (p *Polygon) Contains(pt Point) bool {
	if pt.Lon < p.minLon || pt.Lon > p.maxLon || pt.Lat < p.minLat || pt.Lat > p.maxLat {
		return false
	}

	inside := false
	n := len(p.ring)
	for i := 0; i < n-1; i++ {
		a, b := p.ring[i], p.ring[i+1]
		if (a.Lat > pt.Lat) != (b.Lat > pt.Lat) {
			cross := (b.Lon-a.Lon)*(pt.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if pt.Lon < cross {
				inside = !inside
			}
		}
	}
	return inside
}

// AreaKm2 computes the mask area using the planar shoelace formula with a
// cos(latitude) correction at the ring's mid-latitude. Adequate for
// country-scale masks; the NNI only needs a density denominator.
func (p *Polygon) AreaKm2() float64 {
	midLat := (p.minLat + p.maxLat) / 2
	kx := kmPerDegree * math.Cos(midLat*math.Pi/180)
	ky := kmPerDegree

	var sum float64
	n := len(p.ring)
	for i := 0; i < n-1; i++ {
		a, b := p.ring[i], p.ring[i+1]
		sum += (a.Lon * kx) * (b.Lat * ky)
		sum -= (b.Lon * kx) * (a.Lat * ky)
	}
	return math.Abs(sum) / 2
}

// RandomPoint draws a uniform point inside the mask by rejection sampling
// over the bounding box
func (p *Polygon) RandomPoint(rng *rand.Rand) Point {
	for {
		pt := Point{
			Lon: p.minLon + rng.Float64()*(p.maxLon-p.minLon),
			Lat: p.minLat + rng.Float64()*(p.maxLat-p.minLat),
		}
		if p.Contains(pt) {
			return pt
		}
	}
}

// DistanceKm returns the haversine great-circle distance between two points
func DistanceKm(a, b Point) float64 {
	const earthRadiusKm = 6371.0
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
