package match

import "github.com/kamusis/axon-context/internal/registry"

// Agents ranks agents for q. A negative limit selects the configured limit.
//
// The base score is the better of the task-signal overlap and description
// proximity; an id segment appearing verbatim in q adds SegmentBoost once.
func (e *Engine) Agents(q string, limit int) []ScoredMatch {
	c := e.cfg.Agent
	limit = resolveLimit(limit, c.Limit)
	if limit == 0 {
		return []ScoredMatch{}
	}
	qq := newQuery(q)

	var keyword []ScoredMatch
	for i, a := range e.reg.Agents {
		p := e.agents[i]
		score := max(
			KeywordOverlap(p.signals, qq.tokens),
			FieldProximity(p.desc, qq.tokens, c.DescriptionCap),
		)
		if countMentioned(qq.lower, p.segments) > 0 {
			score += c.SegmentBoost
		}
		if score > c.MinScore {
			keyword = append(keyword, ScoredMatch{Entry: a, Score: score, MatchType: MatchKeyword})
		}
	}

	fuzzy := e.fallback(qq, e.agentDocs, func(i int) registry.Entry { return e.reg.Agents[i] })
	out := merge(keyword, fuzzy, limit)
	e.logPass(registry.KindAgent, qq, len(keyword), len(fuzzy), len(out))
	return out
}
