// Package census aggregates block-level population estimates up to
// reporting areas. The reporting-area key is supplied by the source
// layer, never computed spatially.
package census

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/cascadia-civic/crarisk/internal/layer"
	"github.com/cascadia-civic/crarisk/internal/model"
)

// Aggregate holds the per-area census rollup: summed numeric fields and
// the first display alias seen for the area.
type Aggregate struct {
	Fields map[string]float64
	Alias  string
}

// FromLayer converts a census layer into block records. areaKey is the
// reporting-area foreign-key column; its absence is a configuration
// error because no aggregation is possible without it. Non-numeric
// properties other than the alias are ignored.
func FromLayer(fc *layer.FeatureCollection, areaKey, aliasKey string) ([]model.CensusBlock, error) {
	if fc == nil {
		return nil, eris.New("census: nil layer")
	}

	hasKey := false
	for _, col := range fc.Columns() {
		if col == areaKey {
			hasKey = true
			break
		}
	}
	if !hasKey {
		return nil, eris.Errorf("census: expected census data to contain a %s column for aggregation", areaKey)
	}

	blocks := make([]model.CensusBlock, 0, len(fc.Features))
	for _, f := range fc.Features {
		areaID := layer.StringProp(f.Props, areaKey)
		if areaID == "" {
			continue
		}

		fields := map[string]float64{}
		for k := range f.Props {
			if k == areaKey || k == aliasKey {
				continue
			}
			if fv, ok := layer.FloatProp(f.Props, k); ok {
				fields[k] = fv
			}
		}

		blocks = append(blocks, model.CensusBlock{
			AreaID:   areaID,
			AreaName: layer.StringProp(f.Props, aliasKey),
			Fields:   fields,
		})
	}
	return blocks, nil
}

// Sum groups blocks by reporting area, summing every numeric field and
// picking the first alias per area.
func Sum(blocks []model.CensusBlock) map[string]Aggregate {
	out := map[string]Aggregate{}
	for _, b := range blocks {
		agg, ok := out[b.AreaID]
		if !ok {
			agg = Aggregate{Fields: map[string]float64{}}
		}
		for k, v := range b.Fields {
			agg.Fields[k] += v
		}
		if agg.Alias == "" {
			agg.Alias = b.AreaName
		}
		out[b.AreaID] = agg
	}
	return out
}

// populationFallbacks is the explicit preference order used when no
// POP20* column exists, most recent first.
var populationFallbacks = []string{"POP2025", "POP2024", "POP2023"}

// ResolvePopulationField picks the population column from a schema:
// the lexicographically greatest name with the POP20 prefix (read as
// "most recent year"), else the first present fallback. ok is false
// when no candidate exists; callers fail closed and continue with a
// missing population.
func ResolvePopulationField(columns []string) (string, bool) {
	var popCols []string
	for _, c := range columns {
		if strings.HasPrefix(strings.ToUpper(c), "POP20") {
			popCols = append(popCols, c)
		}
	}
	if len(popCols) > 0 {
		sort.Strings(popCols)
		return popCols[len(popCols)-1], true
	}

	present := map[string]bool{}
	for _, c := range columns {
		present[c] = true
	}
	for _, candidate := range populationFallbacks {
		if present[candidate] {
			return candidate, true
		}
	}
	return "", false
}
