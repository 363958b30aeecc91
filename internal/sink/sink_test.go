package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-civic/crarisk/internal/model"
)

func sampleRows() []model.AreaStats {
	return []model.AreaStats{
		{
			AreaID:      "1.1",
			Name:        "Ballard",
			LandAcres:   640,
			LandSqMiles: 1,
			Census:      map[string]float64{"POP2024": 20000, "HU2024": 9000},
			Population:  model.Float(20000),
			Overlaps: map[string]model.Overlap{
				"liquefaction": {Acres: 64, SqMiles: 0.1, Relative: 0.1},
				"slide":        {},
			},
			NURM:                 3,
			RiskWeighted:         6,
			NURMLiq:              1,
			NURMSlide:            1,
			NURMRetrofit:         1,
			URMRetrofitShare:     model.Float(1.0 / 3.0),
			PermitCount:          4,
			RetrofitPermitCount:  2,
			RetrofitSharePermits: model.Float(0.5),
			RetrofitRatePer10K:   model.Float(1),
			RiskScore:            7,
			RiskIndex:            1,
			MitigationIndex:      1,
		},
		{
			AreaID:      "2.3",
			Name:        "Fremont",
			LandAcres:   320,
			LandSqMiles: 0.5,
			Census:      map[string]float64{"POP2024": 5000},
			Overlaps: map[string]model.Overlap{
				"liquefaction": {},
				"slide":        {},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"csv", "json", "xlsx", "sqlite", "postgres"} {
		got, err := ParseFormat(ok)
		require.NoError(t, err)
		assert.Equal(t, Format(ok), got)
	}

	_, err := ParseFormat("parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"parquet"`)
}

func TestBuildTable(t *testing.T) {
	tbl := BuildTable(sampleRows(), []string{"liquefaction", "slide"})

	want := []string{
		"CRA_NO", "GEN_ALIAS", "AREA_ACRES", "AREA_SQMI",
		"HU2024", "POP2024",
		"LIQUEFACTION_ACRES", "LIQUEFACTION_SQ_MILES", "LIQUEFACTION_RELATIVE",
		"SLIDE_ACRES", "SLIDE_SQ_MILES", "SLIDE_RELATIVE",
		"N_URM", "RISK_WEIGHTED", "N_URM_LIQ", "N_URM_SLIDE", "N_URM_RETROFIT",
		"URM_RETROFIT_SHARE", "BLDG_PERMIT_COUNT", "RETROFIT_PERMIT_COUNT",
		"RETROFIT_SHARE_PERMITS", "RETROFIT_RATE_PER_10K",
		"RISK_SCORE", "RISK_INDEX", "MITIGATION_INDEX",
	}
	assert.Equal(t, want, tbl.Columns)

	require.Len(t, tbl.Rows, 2)
	for _, row := range tbl.Rows {
		assert.Len(t, row, len(want))
	}

	cell := func(rowIdx int, col string) any {
		for i, c := range tbl.Columns {
			if c == col {
				return tbl.Rows[rowIdx][i]
			}
		}
		t.Fatalf("column %s not found", col)
		return nil
	}

	assert.Equal(t, "1.1", cell(0, "CRA_NO"))
	assert.Equal(t, 64.0, cell(0, "LIQUEFACTION_ACRES"))
	assert.Equal(t, 0.0, cell(0, "SLIDE_ACRES"))
	assert.InDelta(t, 1.0/3.0, cell(0, "URM_RETROFIT_SHARE").(float64), 1e-12)

	// A row missing a census column gets a null, not a shorter row.
	assert.Nil(t, cell(1, "HU2024"))
	// Null-able stats stay null.
	assert.Nil(t, cell(1, "URM_RETROFIT_SHARE"))
	assert.Nil(t, cell(1, "RETROFIT_SHARE_PERMITS"))
	assert.Nil(t, cell(1, "RETROFIT_RATE_PER_10K"))
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Format("parquet"), Options{Path: "x"})
	require.Error(t, err)
}

func TestNew_MissingDestination(t *testing.T) {
	_, err := New(FormatCSV, Options{})
	require.Error(t, err)
	_, err = New(FormatPostgres, Options{})
	require.Error(t, err)
}
