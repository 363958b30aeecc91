// Package crs handles coordinate reference system tagging and the fixed
// reprojections the compile pipeline needs. Exactly two systems are
// supported: EPSG:4326 (WGS84 lon/lat) and EPSG:26910 (UTM zone 10N,
// NAD83), the locally accurate equal-area system for the Puget Sound
// region. Area and overlap measurement is only valid in EPSG:26910.
package crs

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// CRS identifies a coordinate reference system by EPSG code.
// Unknown (0) means the layer declared no system.
type CRS int

const (
	Unknown   CRS = 0
	WGS84     CRS = 4326
	EqualArea CRS = 26910
)

// String returns the EPSG URN-style name for logging.
func (c CRS) String() string {
	switch c {
	case WGS84:
		return "EPSG:4326"
	case EqualArea:
		return "EPSG:26910"
	case Unknown:
		return "unknown"
	default:
		return "EPSG:unsupported"
	}
}

// Supported reports whether geometry in this system can be transformed.
func (c CRS) Supported() bool {
	return c == WGS84 || c == EqualArea
}

// Transform returns a copy of g with coordinates expressed in to.
// The input geometry is never mutated. Transforming between identical
// systems returns a structural copy.
func Transform(g geom.T, from, to CRS) (geom.T, error) {
	if g == nil {
		return nil, nil
	}
	if !from.Supported() {
		return nil, eris.Errorf("crs: cannot transform from %s", from)
	}
	if !to.Supported() {
		return nil, eris.Errorf("crs: cannot transform to %s", to)
	}

	var fn func(x, y float64) (float64, float64)
	switch {
	case from == to:
		fn = func(x, y float64) (float64, float64) { return x, y }
	case from == WGS84 && to == EqualArea:
		fn = forwardUTM10
	case from == EqualArea && to == WGS84:
		fn = inverseUTM10
	default:
		return nil, eris.Errorf("crs: unsupported transform %s -> %s", from, to)
	}

	return mapCoords(g, fn)
}

// mapCoords rebuilds g with every coordinate pair passed through fn.
// Only XY layouts are produced by the layer readers.
func mapCoords(g geom.T, fn func(x, y float64) (float64, float64)) (geom.T, error) {
	if g.Layout() != geom.XY {
		return nil, eris.Errorf("crs: unsupported layout %v", g.Layout())
	}

	flat := transformFlat(g.FlatCoords(), fn)

	switch t := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(geom.XY, flat).SetSRID(t.SRID()), nil
	case *geom.MultiPoint:
		return geom.NewMultiPointFlat(geom.XY, flat).SetSRID(t.SRID()), nil
	case *geom.LineString:
		return geom.NewLineStringFlat(geom.XY, flat).SetSRID(t.SRID()), nil
	case *geom.MultiLineString:
		ends := append([]int(nil), t.Ends()...)
		return geom.NewMultiLineStringFlat(geom.XY, flat, ends).SetSRID(t.SRID()), nil
	case *geom.Polygon:
		ends := append([]int(nil), t.Ends()...)
		return geom.NewPolygonFlat(geom.XY, flat, ends).SetSRID(t.SRID()), nil
	case *geom.MultiPolygon:
		endss := make([][]int, len(t.Endss()))
		for i, ends := range t.Endss() {
			endss[i] = append([]int(nil), ends...)
		}
		return geom.NewMultiPolygonFlat(geom.XY, flat, endss).SetSRID(t.SRID()), nil
	default:
		return nil, eris.Errorf("crs: unsupported geometry type %T", g)
	}
}

func transformFlat(src []float64, fn func(x, y float64) (float64, float64)) []float64 {
	dst := make([]float64, len(src))
	for i := 0; i+1 < len(src); i += 2 {
		dst[i], dst[i+1] = fn(src[i], src[i+1])
	}
	return dst
}
