package match

import "github.com/kamusis/axon-context/internal/registry"

// Rules ranks rules for q by overlap with their relevance-signal words. Any
// positive score qualifies and the configured limit defaults to Unlimited.
func (e *Engine) Rules(q string, limit int) []ScoredMatch {
	c := e.cfg.Rule
	limit = resolveLimit(limit, c.Limit)
	if limit == 0 {
		return []ScoredMatch{}
	}
	qq := newQuery(q)

	var keyword []ScoredMatch
	for i, r := range e.reg.Rules {
		score := KeywordOverlap(e.rules[i].signals, qq.tokens)
		if score > c.MinScore {
			keyword = append(keyword, ScoredMatch{Entry: r, Score: score, MatchType: MatchKeyword})
		}
	}

	fuzzy := e.fallback(qq, e.ruleDocs, func(i int) registry.Entry { return e.reg.Rules[i] })
	out := merge(keyword, fuzzy, limit)
	e.logPass(registry.KindRule, qq, len(keyword), len(fuzzy), len(out))
	return out
}
