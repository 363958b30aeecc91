// Package sink writes the compiled area table to its output format.
// Every writer receives the same flattened table, so the schema is
// identical across formats.
package sink

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/cascadia-civic/crarisk/internal/model"
	"github.com/cascadia-civic/crarisk/internal/overlay"
)

// Format selects the output writer.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatXLSX     Format = "xlsx"
	FormatSQLite   Format = "sqlite"
	FormatPostgres Format = "postgres"
)

// ParseFormat validates a format literal from config. Anything outside
// the enumerated set is a configuration error.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatXLSX, FormatSQLite, FormatPostgres:
		return Format(s), nil
	default:
		return "", eris.Errorf(`sink: expected one of "csv", "json", "xlsx", "sqlite" or "postgres" for format, got %q`, s)
	}
}

// Writer persists one compiled table. Implementations are single-shot;
// a second Write replaces the first run's output.
type Writer interface {
	Write(ctx context.Context, t *Table) error
}

// Options carries the per-format destination settings.
type Options struct {
	Path string // csv, json, xlsx, sqlite
	DSN  string // postgres
}

// New returns the writer for a format. Unknown formats and missing
// destinations fail here, before any geometry work happens.
func New(format Format, opts Options) (Writer, error) {
	switch format {
	case FormatCSV:
		return newCSVWriter(opts.Path)
	case FormatJSON:
		return newJSONWriter(opts.Path)
	case FormatXLSX:
		return newXLSXWriter(opts.Path)
	case FormatSQLite:
		return newSQLiteWriter(opts.Path)
	case FormatPostgres:
		return newPostgresWriter(opts.DSN)
	default:
		return nil, eris.Errorf("sink: unsupported format %q", format)
	}
}

// Table is the flattened output: one header, one []any row per area,
// nil cells where a value is undefined.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Fixed tail columns, after the census and hazard blocks.
var statColumns = []string{
	"N_URM",
	"RISK_WEIGHTED",
	"N_URM_LIQ",
	"N_URM_SLIDE",
	"N_URM_RETROFIT",
	"URM_RETROFIT_SHARE",
	"BLDG_PERMIT_COUNT",
	"RETROFIT_PERMIT_COUNT",
	"RETROFIT_SHARE_PERMITS",
	"RETROFIT_RATE_PER_10K",
	"RISK_SCORE",
	"RISK_INDEX",
	"MITIGATION_INDEX",
}

// BuildTable flattens compiled rows into the canonical column order:
// identity, land area, census fields (sorted), hazard triples in kind
// order, then the fixed statistic tail. The census block is the sorted
// union across rows so a sparse row cannot shrink the schema.
func BuildTable(rows []model.AreaStats, kinds []string) *Table {
	censusSet := map[string]bool{}
	for _, r := range rows {
		for k := range r.Census {
			censusSet[k] = true
		}
	}
	censusCols := make([]string, 0, len(censusSet))
	for k := range censusSet {
		censusCols = append(censusCols, k)
	}
	sort.Strings(censusCols)

	columns := []string{"CRA_NO", "GEN_ALIAS", "AREA_ACRES", "AREA_SQMI"}
	columns = append(columns, censusCols...)
	for _, kind := range kinds {
		acres, sqMiles, relative := overlay.Columns(kind)
		columns = append(columns, acres, sqMiles, relative)
	}
	columns = append(columns, statColumns...)

	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		row := make([]any, 0, len(columns))
		row = append(row, r.AreaID, r.Name, r.LandAcres, r.LandSqMiles)
		for _, c := range censusCols {
			if v, ok := r.Census[c]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		for _, kind := range kinds {
			ov := r.Overlaps[kind]
			row = append(row, ov.Acres, ov.SqMiles, ov.Relative)
		}
		row = append(row,
			r.NURM,
			r.RiskWeighted,
			r.NURMLiq,
			r.NURMSlide,
			r.NURMRetrofit,
			nullable(r.URMRetrofitShare),
			r.PermitCount,
			r.RetrofitPermitCount,
			nullable(r.RetrofitSharePermits),
			nullable(r.RetrofitRatePer10K),
			r.RiskScore,
			r.RiskIndex,
			r.MitigationIndex,
		)
		out = append(out, row)
	}

	return &Table{Columns: columns, Rows: out}
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
