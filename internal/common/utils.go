package common

import (
	"math"
	"strings"
)

// HasAny returns true if s contains any of the substrings, ignoring case.
func HasAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// Round1 rounds v to one decimal place, matching the normalization the
// weather endpoints apply to temperature fields.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
