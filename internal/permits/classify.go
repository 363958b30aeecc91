package permits

import (
	"strings"

	"github.com/cascadia-civic/crarisk/internal/model"
)

// Phrase lists for topic classification. Exact substring containment
// only: no regex, no stemming, no word boundaries. Retrofit phrases are
// checked first and win when both classes of phrase co-occur.
var retrofitPhrases = []string{
	"seismic retrofit",
	"seismic upgrade",
	"seismic proof",
	"seismic home retrofit",
	"seismic home upgrade",
	"seismic home proof",
	"seismically retrofit",
	"seismically upgrade",
	"seismically proof",
	"earthquake retrofit",
	"earthquake upgrade",
	"earthquake proof",
	"earthquake home retrofit",
	"earthquake home upgrade",
	"earthquake home proof",
}

var damagePhrases = []string{
	"seismic damage",
	"earthquake damage",
}

// NormalizeDescription collapses whitespace runs to single spaces and
// lower-cases the text, making classification idempotent.
func NormalizeDescription(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ClassifyTopic tags a permit description with its seismic topic.
// Empty or missing descriptions are TopicUnknown, not an error.
func ClassifyTopic(description string) model.Topic {
	desc := NormalizeDescription(description)
	if desc == "" {
		return model.TopicUnknown
	}
	for _, phrase := range retrofitPhrases {
		if strings.Contains(desc, phrase) {
			return model.TopicRetrofit
		}
	}
	for _, phrase := range damagePhrases {
		if strings.Contains(desc, phrase) {
			return model.TopicDamage
		}
	}
	return model.TopicUnknown
}
