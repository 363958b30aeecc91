package urm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/cascadia-civic/crarisk/internal/layer"
	"github.com/cascadia-civic/crarisk/internal/model"
)

func point(x, y float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{x, y})
}

func TestFromLayer(t *testing.T) {
	fc := &layer.FeatureCollection{Features: []layer.Feature{
		{
			Geom: point(-122.33, 47.61),
			Props: map[string]any{
				"VULNERABILITY_CLASSIFICATION": "Critical",
				"ECA_LIQUEFACTION":             "Yes",
				"ECA_POTENTIAL_SLIDE":          "No",
				"CONFIRMED_RETROFIT":           "Yes",
				"NEIGHBORHOOD":                 "Pioneer Square",
				"COMPLIANCE_METHOD":            "dropped",
			},
		},
		{
			Geom:  point(-122.35, 47.66),
			Props: map[string]any{"VULNERABILITY_CLASSIFICATION": "Unrated"},
		},
		{
			// No geometry: skipped, not fatal.
			Props: map[string]any{"NEIGHBORHOOD": "Nowhere"},
		},
	}}

	got, err := FromLayer(fc)
	require.NoError(t, err)
	require.Len(t, got, 2)

	b := got[0]
	assert.Equal(t, model.VulnCritical, b.Vulnerability)
	assert.True(t, b.InLiquefaction)
	assert.False(t, b.InSlide)
	assert.True(t, b.ConfirmedRetrofit)
	assert.Equal(t, -122.33, b.Longitude)
	assert.Equal(t, 47.61, b.Latitude)
	_, kept := b.Props["NEIGHBORHOOD"]
	assert.True(t, kept)
	_, droppedCol := b.Props["COMPLIANCE_METHOD"]
	assert.False(t, droppedCol)

	// Unknown classification maps to none, weight zero.
	assert.Equal(t, model.VulnNone, got[1].Vulnerability)
	assert.Zero(t, got[1].Vulnerability.Weight())
}

func TestVulnerabilityOrdering(t *testing.T) {
	assert.Less(t, model.VulnNone, model.VulnMedium)
	assert.Less(t, model.VulnMedium, model.VulnHigh)
	assert.Less(t, model.VulnHigh, model.VulnCritical)

	assert.Equal(t, 1.0, model.VulnMedium.Weight())
	assert.Equal(t, 2.0, model.VulnHigh.Weight())
	assert.Equal(t, 3.0, model.VulnCritical.Weight())
}
