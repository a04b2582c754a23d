package match

import "github.com/kamusis/axon-context/internal/registry"

// Skills ranks skills for q. A negative limit selects the configured limit.
//
// score = keyword·overlap(keywords) + name·proximity(name)
// + description·proximity(description, cap), plus MentionBoost when the full
// name or id appears in q and SegmentBoost for every long id segment that does.
func (e *Engine) Skills(q string, limit int) []ScoredMatch {
	c := e.cfg.Skill
	limit = resolveLimit(limit, c.Limit)
	if limit == 0 {
		return []ScoredMatch{}
	}
	qq := newQuery(q)

	var keyword []ScoredMatch
	for i, s := range e.reg.Skills {
		p := e.skills[i]
		score := c.KeywordWeight*KeywordOverlap(p.signals, qq.tokens) +
			c.NameWeight*FieldProximity(p.name, qq.tokens, 0) +
			c.DescriptionWeight*FieldProximity(p.desc, qq.tokens, c.DescriptionCap)
		if mentions(qq.lower, p.nameLower) || mentions(qq.lower, p.idLower) {
			score += c.MentionBoost
		}
		score += c.SegmentBoost * float64(countMentioned(qq.lower, p.segments))
		if score > c.MinScore {
			keyword = append(keyword, ScoredMatch{Entry: s, Score: score, MatchType: MatchKeyword})
		}
	}

	fuzzy := e.fallback(qq, e.skillDocs, func(i int) registry.Entry { return e.reg.Skills[i] })
	out := merge(keyword, fuzzy, limit)
	e.logPass(registry.KindSkill, qq, len(keyword), len(fuzzy), len(out))
	return out
}
