package model

// CensusBlock is one census block estimate row. The reporting-area key
// is supplied by the source data, not computed.
type CensusBlock struct {
	AreaID   string
	AreaName string

	// Numeric fields keyed by source column name (POP20xx, housing
	// unit counts, change-from-2020 fields).
	Fields map[string]float64
}
