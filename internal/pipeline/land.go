package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/crs"
	"github.com/cascadia-civic/crarisk/internal/layer"
	"github.com/cascadia-civic/crarisk/internal/model"
	"github.com/cascadia-civic/crarisk/internal/overlay"
)

// landSubset builds the reporting-area base from the land-area layer:
// water-flagged areas are excluded before any join, and land area
// measures are taken from the source columns when present, otherwise
// computed from the geometry in the equal-area system.
func (p *Pipeline) landSubset(fc *layer.FeatureCollection) ([]model.ReportingArea, error) {
	areaKey := p.cfg.Compile.AreaKey
	aliasKey := p.cfg.Compile.AliasKey
	waterKey := p.cfg.Compile.WaterKey

	hasKey := false
	for _, col := range fc.Columns() {
		if col == areaKey {
			hasKey = true
			break
		}
	}
	if !hasKey {
		return nil, eris.Errorf("pipeline: expected land area data to contain a %s column", areaKey)
	}

	var out []model.ReportingArea
	var skipped, water int
	for _, f := range fc.Features {
		areaID := layer.StringProp(f.Props, areaKey)
		if areaID == "" || f.Geom == nil {
			skipped++
			continue
		}
		if waterFlag(f.Props, waterKey) {
			water++
			continue
		}

		acres, acresOK := layer.FloatProp(f.Props, "AREA_ACRES")
		sqMiles, sqMilesOK := layer.FloatProp(f.Props, "AREA_SQMI")
		if !acresOK || !sqMilesOK {
			g, err := crs.Transform(f.Geom, fc.CRS, crs.EqualArea)
			if err != nil {
				return nil, eris.Wrapf(err, "pipeline: project area %s", areaID)
			}
			sqMeters, err := overlay.AreaSqMeters(g)
			if err != nil {
				return nil, eris.Wrapf(err, "pipeline: measure area %s", areaID)
			}
			if !acresOK {
				acres = sqMeters / overlay.SqMetersPerAcre
			}
			if !sqMilesOK {
				sqMiles = sqMeters / overlay.SqMetersPerSqMile
			}
		}

		out = append(out, model.ReportingArea{
			AreaID:      areaID,
			Name:        layer.StringProp(f.Props, aliasKey),
			LandAcres:   acres,
			LandSqMiles: sqMiles,
			Geom:        f.Geom,
		})
	}

	if skipped > 0 || water > 0 {
		p.log.Debug("land subset filtered features",
			zap.Int("missing_key_or_geometry", skipped),
			zap.Int("water", water),
		)
	}
	if len(out) == 0 {
		return nil, eris.New("pipeline: land area layer has no usable land features")
	}
	return out, nil
}

// waterFlag interprets the water column, which civic exports carry as
// either a numeric 1/0 or a Yes/No string.
func waterFlag(props map[string]any, key string) bool {
	if key == "" {
		return false
	}
	if v, ok := layer.FloatProp(props, key); ok {
		return v != 0
	}
	s := layer.StringProp(props, key)
	return strings.EqualFold(s, "yes") || strings.EqualFold(s, "y") || strings.EqualFold(s, "true")
}
