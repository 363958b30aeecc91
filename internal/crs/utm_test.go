package crs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardUTM10_CentralMeridian(t *testing.T) {
	// Points on the central meridian map to the false easting exactly.
	for _, lat := range []float64{0, 30, 47.6, 60} {
		e, n := forwardUTM10(-123, lat)
		assert.InDelta(t, 500000.0, e, 1e-6, "lat %v", lat)
		if lat > 0 {
			assert.Greater(t, n, 0.0)
		}
	}
}

func TestForwardUTM10_Seattle(t *testing.T) {
	// Downtown Seattle sits roughly 50 km east of the central meridian
	// and a bit over 5200 km north of the equator.
	e, n := forwardUTM10(-122.3321, 47.6062)
	assert.InDelta(t, 550000, e, 5000)
	assert.InDelta(t, 5272000, n, 5000)
}

func TestUTM10_RoundTrip(t *testing.T) {
	pts := [][2]float64{
		{-122.3321, 47.6062},
		{-123.0, 47.0},
		{-121.5, 48.5},
		{-124.2, 46.1},
	}
	for _, p := range pts {
		e, n := forwardUTM10(p[0], p[1])
		lon, lat := inverseUTM10(e, n)
		assert.InDelta(t, p[0], lon, 1e-7)
		assert.InDelta(t, p[1], lat, 1e-7)
	}
}

func TestMeridianArc_Monotonic(t *testing.T) {
	prev := -1.0
	for deg := 0.0; deg <= 80; deg += 10 {
		m := meridianArc(deg * degToRad)
		require.Greater(t, m, prev)
		prev = m
	}
}
