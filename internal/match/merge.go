package match

import "sort"

// merge combines keyword-pass and fallback results. Fallback results whose
// id the keyword pass already produced are dropped, the rest are sorted by
// descending score and truncated to limit (limit < 0 means no cap).
//
// The sort is stable: equal scores keep keyword-pass results ahead of
// fallback results, each in registry order.
func merge(keyword, fuzzy []ScoredMatch, limit int) []ScoredMatch {
	out := make([]ScoredMatch, 0, len(keyword)+len(fuzzy))
	seen := make(map[string]struct{}, len(keyword))
	for _, m := range keyword {
		seen[m.ID()] = struct{}{}
		out = append(out, m)
	}
	for _, m := range fuzzy {
		if _, ok := seen[m.ID()]; ok {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	out = dedupe(out)

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dedupe keeps the first occurrence of each id. The registry builder keeps
// ids unique, so this only matters for hand-built registries.
func dedupe(in []ScoredMatch) []ScoredMatch {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, m := range in {
		if _, ok := seen[m.ID()]; ok {
			continue
		}
		seen[m.ID()] = struct{}{}
		out = append(out, m)
	}
	return out
}
