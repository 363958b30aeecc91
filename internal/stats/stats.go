// Package stats assembles the final reporting-area table: grouped
// aggregations, derived ratios, and batch-normalized composite indices.
// Every join onto the area base is a left join; unmatched records drop
// out of counts, they never error and never duplicate rows.
package stats

import (
	"go.uber.org/zap"

	"github.com/cascadia-civic/crarisk/internal/census"
	"github.com/cascadia-civic/crarisk/internal/model"
)

// Inputs carries everything the engine joins onto the area base.
// Capability flags state whether an optional layer was supplied; an
// absent layer degrades to zero/null-filled columns so the output
// schema is identical either way.
type Inputs struct {
	Areas []model.ReportingArea

	Census          map[string]census.Aggregate
	PopulationField string

	// HazardKinds is the fixed set of output kinds; Overlaps holds the
	// measured coverage per kind for supplied layers. A kind with no
	// measurements gets zero columns.
	HazardKinds []string
	Overlaps    map[string]map[string]model.Overlap

	Buildings    []model.Building
	HasBuildings bool

	Permits    []model.Permit
	HasPermits bool
}

type urmRollup struct {
	n            int
	riskWeighted float64
	nLiq         int
	nSlide       int
	nRetrofit    int
}

type permitRollup struct {
	total    int
	retrofit int
}

// Compile materializes one AreaStats row per reporting area, in input
// order, then computes the two min–max indices over the whole batch.
// The indices cannot be computed row-by-row; all rows exist first.
func Compile(in Inputs) []model.AreaStats {
	urmByArea := map[string]urmRollup{}
	if in.HasBuildings {
		for _, b := range in.Buildings {
			if !b.InArea {
				continue
			}
			r := urmByArea[b.AreaID]
			r.n++
			r.riskWeighted += b.Vulnerability.Weight()
			if b.InLiquefaction {
				r.nLiq++
			}
			if b.InSlide {
				r.nSlide++
			}
			if b.ConfirmedRetrofit {
				r.nRetrofit++
			}
			urmByArea[b.AreaID] = r
		}
	}

	permitsByArea := map[string]permitRollup{}
	if in.HasPermits {
		for _, p := range in.Permits {
			if !p.InArea {
				continue
			}
			r := permitsByArea[p.AreaID]
			r.total++
			if p.Topic == model.TopicRetrofit {
				r.retrofit++
			}
			permitsByArea[p.AreaID] = r
		}
	}

	rows := make([]model.AreaStats, 0, len(in.Areas))
	for _, area := range in.Areas {
		row := model.AreaStats{
			AreaID:      area.AreaID,
			Name:        area.Name,
			LandAcres:   area.LandAcres,
			LandSqMiles: area.LandSqMiles,
			Census:      map[string]float64{},
			Overlaps:    map[string]model.Overlap{},
		}

		if agg, ok := in.Census[area.AreaID]; ok {
			for k, v := range agg.Fields {
				row.Census[k] = v
			}
			if row.Name == "" {
				row.Name = agg.Alias
			}
		}
		if in.PopulationField != "" {
			if pop, ok := row.Census[in.PopulationField]; ok {
				row.Population = model.Float(pop)
			}
		}

		for _, kind := range in.HazardKinds {
			if measures, ok := in.Overlaps[kind]; ok {
				row.Overlaps[kind] = measures[area.AreaID]
			} else {
				row.Overlaps[kind] = model.Overlap{}
			}
		}

		u := urmByArea[area.AreaID]
		row.NURM = u.n
		row.RiskWeighted = u.riskWeighted
		row.NURMLiq = u.nLiq
		row.NURMSlide = u.nSlide
		row.NURMRetrofit = u.nRetrofit
		row.RiskScore = u.riskWeighted + 0.5*float64(u.nLiq) + 0.5*float64(u.nSlide)
		if u.n > 0 {
			row.URMRetrofitShare = model.Float(float64(u.nRetrofit) / float64(u.n))
		}

		p := permitsByArea[area.AreaID]
		row.PermitCount = p.total
		row.RetrofitPermitCount = p.retrofit
		if p.total > 0 {
			row.RetrofitSharePermits = model.Float(float64(p.retrofit) / float64(p.total))
		}
		if row.Population != nil && *row.Population > 0 {
			row.RetrofitRatePer10K = model.Float(float64(p.retrofit) / *row.Population * 10000)
		}

		rows = append(rows, row)
	}

	applyIndices(rows)

	zap.L().Debug("stats: compiled area table",
		zap.Int("areas", len(rows)),
		zap.Bool("has_buildings", in.HasBuildings),
		zap.Bool("has_permits", in.HasPermits),
	)

	return rows
}

// applyIndices computes both composite indices over the full row set in
// one pass, treating null inputs as 0 before scaling.
func applyIndices(rows []model.AreaStats) {
	if len(rows) == 0 {
		return
	}

	risk := make([]float64, len(rows))
	mitigation := make([]float64, len(rows))
	for i, r := range rows {
		risk[i] = r.RiskScore
		var m float64
		if r.RetrofitRatePer10K != nil {
			m += *r.RetrofitRatePer10K
		}
		if r.URMRetrofitShare != nil {
			m += *r.URMRetrofitShare
		}
		mitigation[i] = m
	}

	riskIdx := minmax(risk)
	mitIdx := minmax(mitigation)
	for i := range rows {
		rows[i].RiskIndex = riskIdx[i]
		rows[i].MitigationIndex = mitIdx[i]
	}
}

// minmax scales values into [0, 1]. A uniform vector scales to all
// zeros rather than dividing by zero.
func minmax(vals []float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}

	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return out
	}
	for i, v := range vals {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
