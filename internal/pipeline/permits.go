package pipeline

import (
	"context"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/config"
	"github.com/cascadia-civic/crarisk/internal/model"
	"github.com/cascadia-civic/crarisk/internal/spatial"
)

// CleanPermits runs the standalone permit cleaner: read and clean the
// permit export, then attribute each permit against whichever spatial
// layers are configured. With no land-area layer the permits come back
// cleaned but unattributed.
func (p *Pipeline) CleanPermits(ctx context.Context) ([]model.Permit, error) {
	ps, err := p.loadPermits(ctx)
	if err != nil {
		return nil, err
	}

	var regions []spatial.Region
	if p.cfg.Layers.LandArea.Path != "" || p.cfg.Layers.LandArea.URL != "" {
		land, err := p.loadLayer(ctx, p.cfg.Layers.LandArea)
		if err != nil {
			return nil, err
		}
		areas, err := p.landSubset(land)
		if err != nil {
			return nil, err
		}
		regions = make([]spatial.Region, len(areas))
		for i, a := range areas {
			regions[i] = spatial.Region{ID: a.AreaID, Name: a.Name, Geom: a.Geom}
		}
	}

	liq, err := p.zoneGeoms(ctx, p.cfg.Layers.Liquefaction)
	if err != nil {
		return nil, err
	}
	slide, err := p.zoneGeoms(ctx, p.cfg.Layers.Slide)
	if err != nil {
		return nil, err
	}

	AttributePermits(ps, regions, liq, slide)

	p.log.Info("permits cleaned",
		zap.Int("permits", len(ps)),
		zap.Bool("attributed", regions != nil),
	)
	return ps, nil
}

// zoneGeoms loads a hazard layer's geometries for point-in-polygon
// tests. An unconfigured layer yields nil.
func (p *Pipeline) zoneGeoms(ctx context.Context, lc config.LayerConfig) ([]geom.T, error) {
	fc, err := p.loadLayer(ctx, lc)
	if err != nil || fc == nil {
		return nil, err
	}
	geoms := make([]geom.T, 0, len(fc.Features))
	for _, f := range fc.Features {
		geoms = append(geoms, f.Geom)
	}
	return geoms, nil
}
