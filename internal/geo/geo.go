// Package geo answers radius queries over latitude/longitude points using a
// bounding-box prefilter followed by an exact great-circle distance check.
package geo

import "math"

const (
	earthRadiusKm = 6371.0
	// One degree of latitude spans roughly 111 km everywhere.
	kmPerDegreeLat = 111.0
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle (haversine) distance between two points
// in kilometers.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// inBox is a cheap rectangular prefilter. It must be a superset of the exact
// radius check: it only prunes candidates, never changes the result set.
func inBox(origin Point, radiusKm float64, p Point) bool {
	dLat := radiusKm / kmPerDegreeLat
	if math.Abs(p.Lat-origin.Lat) > dLat {
		return false
	}
	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	if cosLat < 1e-6 {
		// Near the poles longitude degrees collapse; skip the lon prune.
		return true
	}
	dLon := radiusKm / (kmPerDegreeLat * cosLat)
	// Longitude wraps at the antimeridian; compare the shorter arc.
	d := math.Abs(p.Lon - origin.Lon)
	if d > 180 {
		d = 360 - d
	}
	return d <= dLon
}

// Within reports whether p lies inside radiusKm of origin, returning the exact
// distance when it does.
func Within(origin Point, radiusKm float64, p Point) (float64, bool) {
	if !inBox(origin, radiusKm, p) {
		return 0, false
	}
	d := Distance(origin, p)
	if d > radiusKm {
		return 0, false
	}
	return d, true
}
