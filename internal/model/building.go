package model

import "strings"

// Vulnerability is the ordered URM vulnerability classification.
type Vulnerability int

const (
	VulnNone Vulnerability = iota
	VulnMedium
	VulnHigh
	VulnCritical
)

// ParseVulnerability maps the source classification string to a
// Vulnerability. Unknown or empty values map to VulnNone.
func ParseVulnerability(s string) Vulnerability {
	switch strings.TrimSpace(s) {
	case "Medium":
		return VulnMedium
	case "High":
		return VulnHigh
	case "Critical":
		return VulnCritical
	default:
		return VulnNone
	}
}

// Weight returns the risk weight used in the area risk score.
func (v Vulnerability) Weight() float64 {
	switch v {
	case VulnMedium:
		return 1
	case VulnHigh:
		return 2
	case VulnCritical:
		return 3
	default:
		return 0
	}
}

// String returns the source spelling of the classification.
func (v Vulnerability) String() string {
	switch v {
	case VulnMedium:
		return "Medium"
	case VulnHigh:
		return "High"
	case VulnCritical:
		return "Critical"
	default:
		return ""
	}
}

// Building is one URM inventory point. AreaID and Name are computed by
// point-in-polygon attribution, not supplied by the source.
type Building struct {
	Latitude  float64
	Longitude float64

	Vulnerability     Vulnerability
	InLiquefaction    bool
	InSlide           bool
	ConfirmedRetrofit bool

	AreaID   string
	AreaName string
	InArea   bool

	// Remaining source attributes, kept for passthrough output.
	Props map[string]any
}
