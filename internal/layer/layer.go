// Package layer loads geometry-plus-attribute input layers and aligns
// their coordinate reference systems before any spatial operation.
package layer

import (
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/cascadia-civic/crarisk/internal/crs"
)

// Feature is one geometry with its attribute map.
type Feature struct {
	Geom  geom.T
	Props map[string]any
}

// FeatureCollection is a loaded input layer. CRS is the declared system,
// crs.Unknown when the source carried none.
type FeatureCollection struct {
	CRS      crs.CRS
	Features []Feature
}

// Normalize returns fc expressed in target. An untagged layer is assumed
// to already be in target and is only tagged, never reprojected; a layer
// declaring a different system is transformed, not re-labeled.
func Normalize(fc *FeatureCollection, target crs.CRS) (*FeatureCollection, error) {
	if fc == nil {
		return nil, nil
	}
	if fc.CRS == target {
		return fc, nil
	}
	if fc.CRS == crs.Unknown {
		out := &FeatureCollection{CRS: target, Features: fc.Features}
		return out, nil
	}

	out := &FeatureCollection{CRS: target, Features: make([]Feature, len(fc.Features))}
	for i, f := range fc.Features {
		g, err := crs.Transform(f.Geom, fc.CRS, target)
		if err != nil {
			return nil, eris.Wrapf(err, "layer: normalize feature %d", i)
		}
		out.Features[i] = Feature{Geom: g, Props: f.Props}
	}
	return out, nil
}

// ToEqualArea reprojects fc to the fixed equal-area system regardless of
// its declared CRS. This is mandatory before any area or overlap
// measurement. An untagged layer cannot be projected and is an error.
func ToEqualArea(fc *FeatureCollection) (*FeatureCollection, error) {
	if fc == nil {
		return nil, nil
	}
	if fc.CRS == crs.Unknown {
		return nil, eris.New("layer: cannot project a layer with no declared CRS to equal area")
	}

	out := &FeatureCollection{CRS: crs.EqualArea, Features: make([]Feature, len(fc.Features))}
	for i, f := range fc.Features {
		g, err := crs.Transform(f.Geom, fc.CRS, crs.EqualArea)
		if err != nil {
			return nil, eris.Wrapf(err, "layer: project feature %d to equal area", i)
		}
		out.Features[i] = Feature{Geom: g, Props: f.Props}
	}
	return out, nil
}

// Columns returns the sorted union of property keys across all features.
func (fc *FeatureCollection) Columns() []string {
	seen := map[string]bool{}
	for _, f := range fc.Features {
		for k := range f.Props {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// StringProp returns the named property as a string, "" when absent.
func StringProp(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// FloatProp returns the named property as a float64. ok is false when
// the property is absent or not numeric; numeric strings are coerced.
func FloatProp(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
