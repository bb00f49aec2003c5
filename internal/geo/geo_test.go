package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKnownPairs(t *testing.T) {
	// Paris to London, roughly 344 km.
	paris := Point{Lat: 48.8566, Lon: 2.3522}
	london := Point{Lat: 51.5074, Lon: -0.1278}
	d := Distance(paris, london)
	assert.InDelta(t, 344, d, 5)

	// Symmetric.
	assert.InDelta(t, d, Distance(london, paris), 1e-9)

	// Zero distance to itself.
	assert.InDelta(t, 0, Distance(paris, paris), 1e-9)
}

func TestWithinRadius(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}

	// ~10 km north of the origin: one degree of latitude is ~111 km.
	near := Point{Lat: 10.0 / 111.0, Lon: 0}
	d, ok := Within(origin, 50, near)
	require.True(t, ok)
	assert.InDelta(t, 10, d, 0.5)

	// ~80 km away must be excluded at a 50 km radius.
	far := Point{Lat: 80.0 / 111.0, Lon: 0}
	_, ok = Within(origin, 50, far)
	assert.False(t, ok)
}

// The bounding box may only prune, never change the result set: anything the
// exact check accepts must pass the box.
func TestBoxIsSupersetOfRadius(t *testing.T) {
	origin := Point{Lat: 40, Lon: -70}
	radius := 25.0

	points := []Point{
		{Lat: 40.01, Lon: -70.01},
		{Lat: 40.2, Lon: -70.2},
		{Lat: 40.22, Lon: -70},
		{Lat: 40, Lon: -70.29},
		{Lat: 39.8, Lon: -69.8},
	}
	for _, p := range points {
		if Distance(origin, p) <= radius {
			assert.True(t, inBox(origin, radius, p), "box rejected an in-radius point %+v", p)
		}
	}
}

func TestWithinAcrossAntimeridian(t *testing.T) {
	// Neighbors on opposite sides of the 180° meridian: the raw longitude
	// delta is nearly 360° but the true distance is ~22 km.
	origin := Point{Lat: 0, Lon: 179.9}
	p := Point{Lat: 0, Lon: -179.9}

	d, ok := Within(origin, 50, p)
	require.True(t, ok, "box rejected an in-radius point across the antimeridian")
	assert.InDelta(t, 22, d, 1)

	// Still excluded when genuinely out of range.
	_, ok = Within(origin, 10, p)
	assert.False(t, ok)
}

func TestWithinNearPole(t *testing.T) {
	origin := Point{Lat: 89.9999, Lon: 0}
	p := Point{Lat: 89.9999, Lon: 90}
	// Longitudes diverge wildly near the pole but true distance is tiny; the
	// box prefilter must not reject it.
	d, ok := Within(origin, 5, p)
	require.True(t, ok)
	assert.Less(t, d, 5.0)
}
