package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twpayne/go-geom"
)

func poly(coords ...float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
}

func unitSquare(x, y float64) *geom.Polygon {
	return poly(
		x, y,
		x+1, y,
		x+1, y+1,
		x, y+1,
		x, y,
	)
}

func TestWithin_SimplePolygon(t *testing.T) {
	sq := unitSquare(0, 0)

	assert.True(t, Within(geom.Coord{0.5, 0.5}, sq))
	assert.False(t, Within(geom.Coord{1.5, 0.5}, sq))
	assert.False(t, Within(geom.Coord{-0.1, 0.5}, sq))
}

func TestWithin_PolygonWithHole(t *testing.T) {
	shell := []float64{0, 0, 4, 0, 4, 4, 0, 4, 0, 0}
	hole := []float64{1, 1, 3, 1, 3, 3, 1, 3, 1, 1}
	flat := append(append([]float64{}, shell...), hole...)
	p := geom.NewPolygonFlat(geom.XY, flat, []int{len(shell), len(flat)})

	assert.True(t, Within(geom.Coord{0.5, 0.5}, p), "between shell and hole")
	assert.False(t, Within(geom.Coord{2, 2}, p), "inside the hole")
	assert.False(t, Within(geom.Coord{5, 5}, p), "outside the shell")
}

func TestWithin_MultiPolygon(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY)
	_ = mp.Push(unitSquare(0, 0))
	_ = mp.Push(unitSquare(10, 10))

	assert.True(t, Within(geom.Coord{0.5, 0.5}, mp))
	assert.True(t, Within(geom.Coord{10.5, 10.5}, mp))
	assert.False(t, Within(geom.Coord{5, 5}, mp))
}

func TestWithin_NonArealGeometry(t *testing.T) {
	pt := geom.NewPointFlat(geom.XY, []float64{0, 0})
	assert.False(t, Within(geom.Coord{0, 0}, pt))
	assert.False(t, Within(geom.Coord{0, 0}, nil))
}

func TestFirst_AttributesToExactlyOneArea(t *testing.T) {
	regions := []Region{
		{ID: "1", Name: "Ballard", Geom: unitSquare(0, 0)},
		{ID: "2", Name: "Fremont", Geom: unitSquare(2, 0)},
	}

	m := First(0.5, 0.5, regions)
	assert.True(t, m.Attached)
	assert.Equal(t, "1", m.ID)
	assert.Equal(t, "Ballard", m.Name)

	m = First(2.5, 0.5, regions)
	assert.True(t, m.Attached)
	assert.Equal(t, "2", m.ID)
}

func TestFirst_OutsideAllIsNullAttribution(t *testing.T) {
	regions := []Region{{ID: "1", Geom: unitSquare(0, 0)}}

	m := First(9, 9, regions)
	assert.False(t, m.Attached)
	assert.Empty(t, m.ID)
	assert.Empty(t, m.Name)
}

func TestFirst_OverlappingRegionsPickFirstDeterministically(t *testing.T) {
	// Malformed input: two identical polygons. The point must land in
	// exactly one region, the first by ordering.
	regions := []Region{
		{ID: "a", Geom: unitSquare(0, 0)},
		{ID: "b", Geom: unitSquare(0, 0)},
	}

	for i := 0; i < 10; i++ {
		m := First(0.5, 0.5, regions)
		assert.Equal(t, "a", m.ID)
	}
}

func TestInAny(t *testing.T) {
	zones := []geom.T{unitSquare(0, 0), unitSquare(5, 5)}

	assert.True(t, InAny(0.5, 0.5, zones))
	assert.True(t, InAny(5.5, 5.5, zones))
	assert.False(t, InAny(3, 3, zones))
	assert.False(t, InAny(0.5, 0.5, nil))
}
