// Package urm cleans the unreinforced-masonry building inventory layer
// into typed building records.
package urm

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/layer"
	"github.com/cascadia-civic/crarisk/internal/model"
)

// Source columns dropped during cleaning; they are program-internal
// compliance tracking, not risk inputs.
var droppedColumns = map[string]bool{
	"COMPLIANCE_METHOD": true,
	"COUNCIL_DISTRICT":  true,
	"OVERLAY_DISTRICT":  true,
	"LANDMARK_STATUS":   true,
}

// FromLayer converts a URM point layer into building records. Features
// without point geometry are skipped and counted. Yes/No source flags
// become booleans; anything but "Yes" is false.
func FromLayer(fc *layer.FeatureCollection) ([]model.Building, error) {
	if fc == nil {
		return nil, eris.New("urm: nil layer")
	}

	var out []model.Building
	var skipped int
	for _, f := range fc.Features {
		pt, ok := pointCoord(f.Geom)
		if !ok {
			skipped++
			continue
		}

		props := make(map[string]any, len(f.Props))
		for k, v := range f.Props {
			if !droppedColumns[k] {
				props[k] = v
			}
		}

		out = append(out, model.Building{
			Longitude:         pt[0],
			Latitude:          pt[1],
			Vulnerability:     model.ParseVulnerability(layer.StringProp(f.Props, "VULNERABILITY_CLASSIFICATION")),
			InLiquefaction:    yesFlag(f.Props, "ECA_LIQUEFACTION"),
			InSlide:           yesFlag(f.Props, "ECA_POTENTIAL_SLIDE"),
			ConfirmedRetrofit: yesFlag(f.Props, "CONFIRMED_RETROFIT"),
			Props:             props,
		})
	}

	if skipped > 0 {
		zap.L().Warn("urm: skipped buildings without point geometry", zap.Int("skipped", skipped))
	}
	return out, nil
}

func yesFlag(props map[string]any, key string) bool {
	return strings.EqualFold(layer.StringProp(props, key), "Yes")
}

func pointCoord(g geom.T) (geom.Coord, bool) {
	switch t := g.(type) {
	case *geom.Point:
		return t.Coords(), true
	case *geom.MultiPoint:
		if t.NumPoints() == 0 {
			return nil, false
		}
		return t.Point(0).Coords(), true
	default:
		return nil, false
	}
}
