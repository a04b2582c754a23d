package match

import "github.com/kamusis/axon-context/internal/registry"

// Commands ranks commands for q. matchedSkills holds the skill ids already
// selected for the same query; a command related to any of them gets
// RelatedBoost. A negative limit selects the configured limit.
//
// Only the skill hand-off feeds this score. Agents and rules already matched
// are not considered.
func (e *Engine) Commands(q string, matchedSkills []string, limit int) []ScoredMatch {
	c := e.cfg.Command
	limit = resolveLimit(limit, c.Limit)
	if limit == 0 {
		return []ScoredMatch{}
	}
	qq := newQuery(q)

	selected := make(map[string]struct{}, len(matchedSkills))
	for _, id := range matchedSkills {
		selected[id] = struct{}{}
	}

	var keyword []ScoredMatch
	for i, cmd := range e.reg.Commands {
		p := e.commands[i]
		score := max(
			FieldProximity(p.name, qq.tokens, 0),
			FieldProximity(p.desc, qq.tokens, c.DescriptionCap),
			c.SummaryWeight*FieldProximity(p.summary, qq.tokens, c.SummaryCap),
		)
		if relatedTo(cmd.RelatedSkills, selected) {
			score += c.RelatedBoost
		}
		if score > c.MinScore {
			keyword = append(keyword, ScoredMatch{Entry: cmd, Score: score, MatchType: MatchKeyword})
		}
	}

	fuzzy := e.fallback(qq, e.commandDocs, func(i int) registry.Entry { return e.reg.Commands[i] })
	out := merge(keyword, fuzzy, limit)
	e.logPass(registry.KindCommand, qq, len(keyword), len(fuzzy), len(out))
	return out
}

func relatedTo(related []string, selected map[string]struct{}) bool {
	for _, id := range related {
		if _, ok := selected[id]; ok {
			return true
		}
	}
	return false
}
