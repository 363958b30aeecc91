// Package pipeline orchestrates one compile run: load layers, join
// everything onto the reporting-area base, and write the result.
package pipeline

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cascadia-civic/crarisk/internal/census"
	"github.com/cascadia-civic/crarisk/internal/config"
	"github.com/cascadia-civic/crarisk/internal/crs"
	"github.com/cascadia-civic/crarisk/internal/fetcher"
	"github.com/cascadia-civic/crarisk/internal/layer"
	"github.com/cascadia-civic/crarisk/internal/model"
	"github.com/cascadia-civic/crarisk/internal/overlay"
	"github.com/cascadia-civic/crarisk/internal/permits"
	"github.com/cascadia-civic/crarisk/internal/sink"
	"github.com/cascadia-civic/crarisk/internal/spatial"
	"github.com/cascadia-civic/crarisk/internal/stats"
	"github.com/cascadia-civic/crarisk/internal/store"
	"github.com/cascadia-civic/crarisk/internal/urm"
)

// HazardKinds is the fixed set of hazard overlays in the output, in
// column order.
var HazardKinds = []string{"liquefaction", "slide"}

// Pipeline runs the compile. Store and Fetcher are optional: a nil
// store skips run logging, a nil fetcher disallows URL-sourced layers.
type Pipeline struct {
	cfg     *config.Config
	store   store.Store
	fetcher fetcher.Fetcher
	writer  sink.Writer

	log *zap.Logger
}

// New assembles a pipeline from its collaborators.
func New(cfg *config.Config, st store.Store, f fetcher.Fetcher, w sink.Writer) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		fetcher: f,
		writer:  w,
		log:     zap.L().With(zap.String("component", "pipeline")),
	}
}

// Result is what a completed run produced.
type Result struct {
	RunID string
	Rows  []model.AreaStats
	Table *sink.Table
}

// layers holds the five loaded inputs. Optional entries are nil when
// the layer was not configured or could not be loaded.
type layers struct {
	land         *layer.FeatureCollection
	liquefaction *layer.FeatureCollection
	slide        *layer.FeatureCollection
	urm          *layer.FeatureCollection
	census       *layer.FeatureCollection
}

// Run executes one compile end to end. The run is logged to the store
// when one is configured; a failure is recorded there before returning.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, p.cfg.Sink.Format)
		if err != nil {
			return nil, err
		}
		runID = run.ID
		if err := p.store.UpdateRunStatus(ctx, runID, model.RunStatusRunning); err != nil {
			return nil, err
		}
	}

	res, err := p.compile(ctx)
	if p.store != nil {
		if err != nil {
			if ferr := p.store.FailRun(ctx, runID, err); ferr != nil {
				p.log.Warn("failed to record run failure", zap.Error(ferr))
			}
		} else if cerr := p.store.CompleteRun(ctx, runID, len(res.Rows)); cerr != nil {
			p.log.Warn("failed to record run completion", zap.Error(cerr))
		}
	}
	if err != nil {
		return nil, err
	}

	res.RunID = runID
	return res, nil
}

func (p *Pipeline) compile(ctx context.Context) (*Result, error) {
	ls, err := p.loadLayers(ctx)
	if err != nil {
		return nil, err
	}

	areas, err := p.landSubset(ls.land)
	if err != nil {
		return nil, err
	}

	in := stats.Inputs{
		Areas:       areas,
		HazardKinds: HazardKinds,
		Overlaps:    map[string]map[string]model.Overlap{},
	}

	if ls.census != nil {
		blocks, err := census.FromLayer(ls.census, p.cfg.Compile.AreaKey, p.cfg.Compile.AliasKey)
		if err != nil {
			return nil, err
		}
		in.Census = census.Sum(blocks)
		popField, ok := census.ResolvePopulationField(ls.census.Columns())
		if !ok {
			p.log.Warn("no population column found; per-capita rates will be null")
		}
		in.PopulationField = popField
	}

	zoneGeoms := map[string][]geom.T{}
	for kind, fc := range map[string]*layer.FeatureCollection{
		"liquefaction": ls.liquefaction,
		"slide":        ls.slide,
	} {
		if fc == nil {
			continue
		}
		zones := make([]model.HazardZone, 0, len(fc.Features))
		for _, f := range fc.Features {
			zones = append(zones, model.HazardZone{Kind: kind, Geom: f.Geom})
			zoneGeoms[kind] = append(zoneGeoms[kind], f.Geom)
		}
		measures, err := overlay.Calculate(areas, crs.WGS84, zones, crs.WGS84, kind)
		if err != nil {
			return nil, err
		}
		in.Overlaps[kind] = measures
	}

	regions := make([]spatial.Region, len(areas))
	for i, a := range areas {
		regions[i] = spatial.Region{ID: a.AreaID, Name: a.Name, Geom: a.Geom}
	}

	if ls.urm != nil {
		buildings, err := urm.FromLayer(ls.urm)
		if err != nil {
			return nil, err
		}
		for i := range buildings {
			m := spatial.First(buildings[i].Longitude, buildings[i].Latitude, regions)
			buildings[i].AreaID = m.ID
			buildings[i].AreaName = m.Name
			buildings[i].InArea = m.Attached
		}
		in.Buildings = buildings
		in.HasBuildings = true
	}

	if p.cfg.Permits.Path != "" || p.cfg.Permits.URL != "" {
		ps, err := p.loadPermits(ctx)
		if err != nil {
			return nil, err
		}
		AttributePermits(ps, regions, zoneGeoms["liquefaction"], zoneGeoms["slide"])
		in.Permits = ps
		in.HasPermits = true
	}

	rows := stats.Compile(in)
	table := sink.BuildTable(rows, HazardKinds)

	if p.writer != nil {
		if err := p.writer.Write(ctx, table); err != nil {
			return nil, err
		}
	}

	p.log.Info("compile complete",
		zap.Int("areas", len(rows)),
		zap.Bool("has_buildings", in.HasBuildings),
		zap.Bool("has_permits", in.HasPermits),
	)
	return &Result{Rows: rows, Table: table}, nil
}

// AttributePermits fills the spatial attributes of each permit in
// place: reporting area by first match, hazard exposure by membership
// in any zone of the kind.
func AttributePermits(ps []model.Permit, regions []spatial.Region, liqZones, slideZones []geom.T) {
	for i := range ps {
		m := spatial.First(ps[i].Longitude, ps[i].Latitude, regions)
		ps[i].AreaID = m.ID
		ps[i].AreaName = m.Name
		ps[i].InArea = m.Attached
		ps[i].LiquefactionProne = spatial.InAny(ps[i].Longitude, ps[i].Latitude, liqZones)
		ps[i].SlideProne = spatial.InAny(ps[i].Longitude, ps[i].Latitude, slideZones)
	}
}

// loadLayers fetches and parses the five inputs in parallel. The land
// area layer is required; the rest degrade with a warning.
func (p *Pipeline) loadLayers(ctx context.Context) (*layers, error) {
	ls := &layers{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fc, err := p.loadLayer(gctx, p.cfg.Layers.LandArea)
		if err != nil {
			return eris.Wrap(err, "pipeline: load land area layer")
		}
		if fc == nil {
			return eris.New("pipeline: land area layer is required")
		}
		ls.land = fc
		return nil
	})

	optional := []struct {
		name string
		cfg  config.LayerConfig
		dst  **layer.FeatureCollection
	}{
		{"liquefaction", p.cfg.Layers.Liquefaction, &ls.liquefaction},
		{"slide", p.cfg.Layers.Slide, &ls.slide},
		{"urm", p.cfg.Layers.URM, &ls.urm},
		{"census", p.cfg.Layers.Census, &ls.census},
	}
	for _, opt := range optional {
		g.Go(func() error {
			fc, err := p.loadLayer(gctx, opt.cfg)
			if err != nil {
				p.log.Warn("optional layer unavailable; its columns will be empty",
					zap.String("layer", opt.name),
					zap.Error(err),
				)
				return nil
			}
			*opt.dst = fc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ls, nil
}

// loadLayer reads one layer and normalizes it to WGS84. Untagged
// sources are assumed to already be geographic. Returns nil for an
// unconfigured layer.
func (p *Pipeline) loadLayer(ctx context.Context, lc config.LayerConfig) (*layer.FeatureCollection, error) {
	pathOnDisk, err := p.resolvePath(ctx, lc.Path, lc.URL)
	if err != nil {
		return nil, err
	}
	if pathOnDisk == "" {
		return nil, nil
	}

	var fc *layer.FeatureCollection
	switch strings.ToLower(lc.Format) {
	case "", "geojson":
		fc, err = layer.ReadGeoJSON(pathOnDisk)
	case "shapefile":
		fc, err = layer.ReadShapefile(pathOnDisk)
	default:
		return nil, eris.Errorf(`pipeline: expected "geojson" or "shapefile" for layer format, got %q`, lc.Format)
	}
	if err != nil {
		return nil, err
	}

	return layer.Normalize(fc, crs.WGS84)
}

func (p *Pipeline) loadPermits(ctx context.Context) ([]model.Permit, error) {
	format, err := permits.ParseFormat(p.cfg.Permits.Format)
	if err != nil {
		return nil, err
	}
	pathOnDisk, err := p.resolvePath(ctx, p.cfg.Permits.Path, p.cfg.Permits.URL)
	if err != nil {
		return nil, err
	}
	return permits.Read(pathOnDisk, format)
}

// resolvePath returns the local path for an input, downloading it
// first when only a URL is configured.
func (p *Pipeline) resolvePath(ctx context.Context, localPath, rawURL string) (string, error) {
	if localPath != "" {
		return localPath, nil
	}
	if rawURL == "" {
		return "", nil
	}
	if p.fetcher == nil {
		return "", eris.Errorf("pipeline: no fetcher configured for remote layer %s", rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "pipeline: parse layer url %s", rawURL)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = uuid.New().String()
	}
	dst := filepath.Join(p.cfg.Fetch.TempDir, name)

	if _, err := p.fetcher.DownloadToFile(ctx, rawURL, dst); err != nil {
		return "", err
	}
	return dst, nil
}
