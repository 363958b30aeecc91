// Package spatial performs in-memory point-in-polygon attribution.
// Containment is strict "within": a point on a polygon boundary is not
// guaranteed to match. A point matching several polygons is attributed
// to the first in input order, never duplicated.
package spatial

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Region is one attributable polygon with the fields a matched point
// inherits.
type Region struct {
	ID   string
	Name string
	Geom geom.T
}

// Match is the attribution result for one point.
type Match struct {
	ID       string
	Name     string
	Attached bool
}

// First returns the attribution for a lon/lat point against regions in
// order. Zero matches yield an empty, unattached Match.
func First(lon, lat float64, regions []Region) Match {
	c := geom.Coord{lon, lat}
	for _, r := range regions {
		if Within(c, r.Geom) {
			return Match{ID: r.ID, Name: r.Name, Attached: true}
		}
	}
	return Match{}
}

// InAny reports whether the point lies within any of the geometries.
func InAny(lon, lat float64, geoms []geom.T) bool {
	c := geom.Coord{lon, lat}
	for _, g := range geoms {
		if Within(c, g) {
			return true
		}
	}
	return false
}

// Within tests strict polygon containment with even-odd semantics:
// inside the shell and outside every hole. Non-areal geometries never
// contain a point.
func Within(c geom.Coord, g geom.T) bool {
	if g == nil {
		return false
	}
	if !boundsContain(g.Bounds(), c) {
		return false
	}

	switch t := g.(type) {
	case *geom.Polygon:
		return polygonContains(t, c)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonContains(t.Polygon(i), c) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), c, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), c, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

func boundsContain(b *geom.Bounds, c geom.Coord) bool {
	if b == nil {
		return false
	}
	return c[0] >= b.Min(0) && c[0] <= b.Max(0) &&
		c[1] >= b.Min(1) && c[1] <= b.Max(1)
}
