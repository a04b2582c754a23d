package match

import (
	"strings"
	"unicode/utf8"
)

// KeywordOverlap returns the fraction of signals that hit a query token,
// where a hit means either string contains the other.
func KeywordOverlap(signals, queryTokens []string) float64 {
	if len(signals) == 0 {
		return 0
	}
	hits := 0
	for _, s := range signals {
		if hitsAny(s, queryTokens) {
			hits++
		}
	}
	return float64(hits) / float64(len(signals))
}

// FieldProximity returns the fraction of the first limit field tokens that
// hit a query token. limit <= 0 considers every token.
func FieldProximity(fieldTokens, queryTokens []string, limit int) float64 {
	if limit > 0 && len(fieldTokens) > limit {
		fieldTokens = fieldTokens[:limit]
	}
	if len(fieldTokens) == 0 {
		return 0
	}
	hits := 0
	for _, t := range fieldTokens {
		if hitsAny(t, queryTokens) {
			hits++
		}
	}
	return float64(hits) / float64(len(fieldTokens))
}

func hitsAny(word string, queryTokens []string) bool {
	for _, q := range queryTokens {
		if strings.Contains(q, word) || strings.Contains(word, q) {
			return true
		}
	}
	return false
}

// normalizeSignals lowercases and trims signal words, dropping empties so
// they neither hit nor count toward the denominator.
func normalizeSignals(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(lower(w))
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

// mentions reports whether needle occurs verbatim in the lowercased query.
func mentions(queryLower, needle string) bool {
	return needle != "" && strings.Contains(queryLower, needle)
}

// idSegments returns the hyphen-separated parts of a lowercased id that are
// at least minLen runes long.
func idSegments(idLower string, minLen int) []string {
	var out []string
	for _, seg := range strings.Split(idLower, "-") {
		if seg != "" && utf8.RuneCountInString(seg) >= minLen {
			out = append(out, seg)
		}
	}
	return out
}

func countMentioned(queryLower string, segments []string) int {
	n := 0
	for _, s := range segments {
		if mentions(queryLower, s) {
			n++
		}
	}
	return n
}
