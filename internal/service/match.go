package service

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultMatchCutoff is the minimum similarity ratio for a knowledge base hit.
const DefaultMatchCutoff = 0.7

// closestMatch returns the key most similar to query whose ratio is at least
// cutoff. The ratio is difflib's 2*M/T over characters of the full strings.
// Equal scores resolve to the lexicographically greater key.
func closestMatch(query string, keys []string, cutoff float64) (string, float64, bool) {
	m := difflib.NewMatcher(nil, splitChars(query))

	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, key := range keys {
		m.SetSeq1(splitChars(key))
		// Cheap upper bounds first.
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && key > best) {
			best, bestScore, found = key, score, true
		}
	}
	return best, bestScore, found
}

func splitChars(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "")
}
