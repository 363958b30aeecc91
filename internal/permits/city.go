package permits

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// knownCityMistakes maps recurring misspellings in the permit export to
// the correct city name (already lower-cased).
var knownCityMistakes = map[string]string{
	"seatlle": "seattle",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// NormalizeCity canonicalizes an origin city name: lower-case, fix the
// known misspellings, then title-case for display.
func NormalizeCity(city string) string {
	lower := strings.ToLower(strings.TrimSpace(city))
	if lower == "" {
		return ""
	}
	if fixed, ok := knownCityMistakes[lower]; ok {
		lower = fixed
	}
	return titleCaser.String(lower)
}
