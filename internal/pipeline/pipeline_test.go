package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-civic/crarisk/internal/config"
	"github.com/cascadia-civic/crarisk/internal/model"
	"github.com/cascadia-civic/crarisk/internal/sink"
	"github.com/cascadia-civic/crarisk/internal/store"
)

// fixture helpers

func polygonFeature(props map[string]any, lonMin, latMin, lonMax, latMax float64) map[string]any {
	ring := [][]float64{
		{lonMin, latMin}, {lonMax, latMin}, {lonMax, latMax}, {lonMin, latMax}, {lonMin, latMin},
	}
	return map[string]any{
		"type":       "Feature",
		"properties": props,
		"geometry": map[string]any{
			"type":        "Polygon",
			"coordinates": [][][]float64{ring},
		},
	}
}

func pointFeature(props map[string]any, lon, lat float64) map[string]any {
	return map[string]any{
		"type":       "Feature",
		"properties": props,
		"geometry": map[string]any{
			"type":        "Point",
			"coordinates": []float64{lon, lat},
		},
	}
}

func writeGeoJSON(t *testing.T, dir, name string, features ...map[string]any) string {
	t.Helper()
	fc := map[string]any{"type": "FeatureCollection", "features": features}
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

const permitsCSV = `PermitNum,Description,EstProjectCost,OriginalCity,Latitude,Longitude
P-1,Mandatory URM seismic retrofit,"12,500",SEATLLE,47.610,-122.395
P-2,Repair earthquake damage to chimney,5000,Seattle,47.615,-122.385
P-3,New deck and stairs,1000,Seattle,47.612,-122.382
P-4,Seismic upgrade per retrofit standard,2000,Seattle,47.610,-130.000
P-5,Missing coordinates,100,Seattle,,
`

// testConfig wires a full fixture set: two land areas plus one water
// area, a liquefaction zone over the west half of area A, census rows,
// URM points, permits. No slide layer.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	land := writeGeoJSON(t, dir, "land.geojson",
		polygonFeature(map[string]any{"CRA_NO": "A", "GEN_ALIAS": "Alpha"}, -122.40, 47.60, -122.38, 47.62),
		polygonFeature(map[string]any{"CRA_NO": "B", "GEN_ALIAS": "Beta"}, -122.36, 47.60, -122.34, 47.62),
		polygonFeature(map[string]any{"CRA_NO": "W", "GEN_ALIAS": "Bay", "WATER": 1}, -122.44, 47.60, -122.42, 47.62),
	)
	liq := writeGeoJSON(t, dir, "liq.geojson",
		polygonFeature(map[string]any{}, -122.40, 47.60, -122.39, 47.62),
	)
	censusLayer := writeGeoJSON(t, dir, "census.geojson",
		pointFeature(map[string]any{"CRA_NO": "A", "GEN_ALIAS": "Alpha", "POP2024": 10000}, -122.39, 47.61),
		pointFeature(map[string]any{"CRA_NO": "A", "GEN_ALIAS": "Alpha", "POP2024": 10000}, -122.385, 47.61),
		pointFeature(map[string]any{"CRA_NO": "B", "GEN_ALIAS": "Beta", "POP2024": 4000}, -122.35, 47.61),
	)
	urmLayer := writeGeoJSON(t, dir, "urm.geojson",
		pointFeature(map[string]any{
			"VULNERABILITY_CLASSIFICATION": "Critical",
			"CONFIRMED_RETROFIT":           "Yes",
			"ECA_LIQUEFACTION":             "Yes",
		}, -122.395, 47.61),
		pointFeature(map[string]any{"VULNERABILITY_CLASSIFICATION": "Medium"}, -122.385, 47.615),
	)

	permitsPath := filepath.Join(dir, "permits.csv")
	require.NoError(t, os.WriteFile(permitsPath, []byte(permitsCSV), 0644))

	cfg := &config.Config{}
	cfg.Layers.LandArea = config.LayerConfig{Path: land, Format: "geojson"}
	cfg.Layers.Liquefaction = config.LayerConfig{Path: liq, Format: "geojson"}
	cfg.Layers.URM = config.LayerConfig{Path: urmLayer, Format: "geojson"}
	cfg.Layers.Census = config.LayerConfig{Path: censusLayer, Format: "geojson"}
	cfg.Permits = config.PermitsConfig{Path: permitsPath, Format: "csv"}
	cfg.Compile = config.CompileConfig{AreaKey: "CRA_NO", AliasKey: "GEN_ALIAS", WaterKey: "WATER"}
	cfg.Sink = config.SinkConfig{Format: "csv", Path: filepath.Join(dir, "out.csv")}
	return cfg
}

func rowByID(t *testing.T, rows []model.AreaStats, id string) model.AreaStats {
	t.Helper()
	for _, r := range rows {
		if r.AreaID == id {
			return r
		}
	}
	t.Fatalf("area %s not in result", id)
	return model.AreaStats{}
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	w, err := sink.New(sink.FormatCSV, sink.Options{Path: cfg.Sink.Path})
	require.NoError(t, err)

	p := New(cfg, st, nil, w)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	// Water area excluded before any join.
	require.Len(t, res.Rows, 2)

	a := rowByID(t, res.Rows, "A")
	b := rowByID(t, res.Rows, "B")

	assert.Equal(t, "Alpha", a.Name)
	assert.Greater(t, a.LandAcres, 0.0, "land area computed from geometry")

	// The zone covers the west half of A and none of B.
	assert.InDelta(t, 0.5, a.Overlaps["liquefaction"].Relative, 0.01)
	assert.Zero(t, b.Overlaps["liquefaction"].Acres)
	// No slide layer: the columns exist and are zero.
	assert.Equal(t, model.Overlap{}, a.Overlaps["slide"])

	// Census summed per area.
	require.NotNil(t, a.Population)
	assert.Equal(t, 20000.0, *a.Population)
	require.NotNil(t, b.Population)
	assert.Equal(t, 4000.0, *b.Population)

	// URM attribution: both buildings land in A.
	assert.Equal(t, 2, a.NURM)
	assert.Equal(t, 4.0, a.RiskWeighted) // Critical=3 + Medium=1
	assert.Equal(t, 1, a.NURMLiq)
	assert.InDelta(t, 4.5, a.RiskScore, 1e-9)
	require.NotNil(t, a.URMRetrofitShare)
	assert.InDelta(t, 0.5, *a.URMRetrofitShare, 1e-9)
	assert.Zero(t, b.NURM)
	assert.Nil(t, b.URMRetrofitShare)

	// Permits: P-1..P-3 in A, P-4 outside all areas, P-5 dropped.
	assert.Equal(t, 3, a.PermitCount)
	assert.Equal(t, 1, a.RetrofitPermitCount)
	require.NotNil(t, a.RetrofitSharePermits)
	assert.InDelta(t, 1.0/3.0, *a.RetrofitSharePermits, 1e-9)
	require.NotNil(t, a.RetrofitRatePer10K)
	assert.InDelta(t, 0.5, *a.RetrofitRatePer10K, 1e-9) // 1 / 20000 * 10k
	assert.Zero(t, b.PermitCount)
	assert.Nil(t, b.RetrofitSharePermits)

	// Indices over the two-row batch.
	assert.Equal(t, 1.0, a.RiskIndex)
	assert.Equal(t, 0.0, b.RiskIndex)

	// Sink file written.
	data, err := os.ReadFile(cfg.Sink.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "LIQUEFACTION_RELATIVE")

	// Run recorded as complete.
	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 2, runs[0].AreaCount)
}

func TestRun_MissingOptionalLayersDegrade(t *testing.T) {
	cfg := testConfig(t)
	cfg.Layers.Liquefaction = config.LayerConfig{}
	cfg.Layers.URM = config.LayerConfig{Path: "does-not-exist.geojson", Format: "geojson"}
	cfg.Layers.Census = config.LayerConfig{}
	cfg.Permits = config.PermitsConfig{}
	cfg.Sink.Path = filepath.Join(t.TempDir(), "out.csv")

	w, err := sink.New(sink.FormatCSV, sink.Options{Path: cfg.Sink.Path})
	require.NoError(t, err)

	p := New(cfg, nil, nil, w)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	for _, r := range res.Rows {
		assert.Len(t, r.Overlaps, 2, "hazard columns exist even with no zone layers")
		assert.Equal(t, model.Overlap{}, r.Overlaps["liquefaction"])
		assert.Zero(t, r.NURM)
		assert.Zero(t, r.PermitCount)
		assert.Nil(t, r.Population)
		assert.Nil(t, r.RetrofitSharePermits)
	}

	// Hazard and statistic columns are present even though nothing fed them.
	for _, col := range []string{"LIQUEFACTION_RELATIVE", "SLIDE_ACRES", "N_URM", "RETROFIT_SHARE_PERMITS", "RISK_INDEX"} {
		assert.Contains(t, res.Table.Columns, col)
	}
}

func TestRun_MissingLandLayerFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Layers.LandArea.Path = "nope.geojson"

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	p := New(cfg, st, nil, nil)
	_, err = p.Run(context.Background())
	require.Error(t, err)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "land area")
}

func TestRun_MissingAreaKeyIsConfigError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Compile.AreaKey = "DISTRICT_NO"

	p := New(cfg, nil, nil, nil)
	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISTRICT_NO")
}
