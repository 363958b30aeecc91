// Package model defines the domain records shared across the compile pipeline.
package model

import (
	"github.com/twpayne/go-geom"
)

// ReportingArea is one community reporting area polygon, the aggregation
// unit for every derived statistic. Geometry is immutable for a run.
type ReportingArea struct {
	AreaID      string
	Name        string
	LandAcres   float64
	LandSqMiles float64
	Geom        geom.T
}

// Overlap holds the measured intersection between one reporting area and
// all hazard zones of a single kind.
type Overlap struct {
	Acres    float64
	SqMiles  float64
	Relative float64
}

// AreaStats is the final output row, one per reporting area.
// Pointer fields are null-able: nil means the value is undefined for the
// area (for example a retrofit share with no permits), never zero.
type AreaStats struct {
	AreaID      string
	Name        string
	LandAcres   float64
	LandSqMiles float64

	// Summed numeric census fields, keyed by source column name.
	Census     map[string]float64
	Population *float64

	// Hazard overlap measures keyed by hazard kind (lower case).
	Overlaps map[string]Overlap

	NURM         int
	RiskWeighted float64
	NURMLiq      int
	NURMSlide    int
	NURMRetrofit int

	PermitCount         int
	RetrofitPermitCount int

	RiskScore            float64
	URMRetrofitShare     *float64
	RetrofitSharePermits *float64
	RetrofitRatePer10K   *float64

	RiskIndex       float64
	MitigationIndex float64
}

// HazardZone is a single hazard polygon. Zones carry no attributes beyond
// their kind; they are scratch inputs to the overlap calculator.
type HazardZone struct {
	Kind string
	Geom geom.T
}

// Float returns a pointer to v, for populating null-able fields.
func Float(v float64) *float64 { return &v }
