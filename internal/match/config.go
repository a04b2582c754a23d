package match

import "fmt"

// Unlimited disables truncation when used as a limit.
const Unlimited = -1

// FieldWeights weighs the fields of a fuzzy fallback document. Extra is the
// category-specific field: keywords for skills, role for agents, summary for
// commands and signal words for rules.
type FieldWeights struct {
	Name        float64 `yaml:"name"`
	Description float64 `yaml:"description"`
	Extra       float64 `yaml:"extra"`
}

// SkillConfig tunes skill scoring.
type SkillConfig struct {
	KeywordWeight     float64      `yaml:"keyword_weight"`
	NameWeight        float64      `yaml:"name_weight"`
	DescriptionWeight float64      `yaml:"description_weight"`
	DescriptionCap    int          `yaml:"description_cap"`
	MentionBoost      float64      `yaml:"mention_boost"`
	SegmentBoost      float64      `yaml:"segment_boost"`
	SegmentMinLen     int          `yaml:"segment_min_len"`
	MinScore          float64      `yaml:"min_score"`
	Limit             int          `yaml:"limit"`
	Fuzzy             FieldWeights `yaml:"fuzzy"`
}

// AgentConfig tunes agent scoring.
type AgentConfig struct {
	DescriptionCap int          `yaml:"description_cap"`
	SegmentBoost   float64      `yaml:"segment_boost"`
	SegmentMinLen  int          `yaml:"segment_min_len"`
	MinScore       float64      `yaml:"min_score"`
	Limit          int          `yaml:"limit"`
	Fuzzy          FieldWeights `yaml:"fuzzy"`
}

// CommandConfig tunes command scoring.
type CommandConfig struct {
	DescriptionCap int          `yaml:"description_cap"`
	SummaryCap     int          `yaml:"summary_cap"`
	SummaryWeight  float64      `yaml:"summary_weight"`
	RelatedBoost   float64      `yaml:"related_boost"`
	MinScore       float64      `yaml:"min_score"`
	Limit          int          `yaml:"limit"`
	Fuzzy          FieldWeights `yaml:"fuzzy"`
}

// RuleConfig tunes rule scoring.
type RuleConfig struct {
	MinScore float64      `yaml:"min_score"`
	Limit    int          `yaml:"limit"`
	Fuzzy    FieldWeights `yaml:"fuzzy"`
}

// Config holds every tunable constant of the engine plus the signal tables
// for agents and rules, keyed by entry id.
type Config struct {
	Skill          SkillConfig   `yaml:"skill"`
	Agent          AgentConfig   `yaml:"agent"`
	Command        CommandConfig `yaml:"command"`
	Rule           RuleConfig    `yaml:"rule"`
	FuzzyThreshold float64       `yaml:"fuzzy_threshold"`

	AgentSignals map[string][]string `yaml:"-"`
	RuleSignals  map[string][]string `yaml:"-"`
}

// DefaultConfig returns the stock constants with empty signal tables.
func DefaultConfig() Config {
	return Config{
		Skill: SkillConfig{
			KeywordWeight:     0.5,
			NameWeight:        0.3,
			DescriptionWeight: 0.2,
			DescriptionCap:    20,
			MentionBoost:      0.6,
			SegmentBoost:      0.1,
			SegmentMinLen:     5,
			MinScore:          0.05,
			Limit:             10,
			Fuzzy:             FieldWeights{Name: 0.4, Description: 0.4, Extra: 0.2},
		},
		Agent: AgentConfig{
			DescriptionCap: 30,
			SegmentBoost:   0.15,
			SegmentMinLen:  4,
			MinScore:       0.05,
			Limit:          3,
			Fuzzy:          FieldWeights{Name: 0.3, Description: 0.5, Extra: 0.2},
		},
		Command: CommandConfig{
			DescriptionCap: 20,
			SummaryCap:     20,
			SummaryWeight:  0.7,
			RelatedBoost:   0.3,
			MinScore:       0.15,
			Limit:          5,
			Fuzzy:          FieldWeights{Name: 0.4, Description: 0.4, Extra: 0.2},
		},
		Rule: RuleConfig{
			MinScore: 0,
			Limit:    Unlimited,
			Fuzzy:    FieldWeights{Name: 0.4, Description: 0.4, Extra: 0.2},
		},
		FuzzyThreshold: DefaultFuzzyThreshold,
		AgentSignals:   map[string][]string{},
		RuleSignals:    map[string][]string{},
	}
}

// Validate rejects negative weights and caps and an out-of-range fuzzy
// threshold. Limits may be Unlimited.
func (c Config) Validate() error {
	floats := map[string]float64{
		"skill.keyword_weight":     c.Skill.KeywordWeight,
		"skill.name_weight":        c.Skill.NameWeight,
		"skill.description_weight": c.Skill.DescriptionWeight,
		"skill.mention_boost":      c.Skill.MentionBoost,
		"skill.segment_boost":      c.Skill.SegmentBoost,
		"skill.min_score":          c.Skill.MinScore,
		"agent.segment_boost":      c.Agent.SegmentBoost,
		"agent.min_score":          c.Agent.MinScore,
		"command.summary_weight":   c.Command.SummaryWeight,
		"command.related_boost":    c.Command.RelatedBoost,
		"command.min_score":        c.Command.MinScore,
		"rule.min_score":           c.Rule.MinScore,
	}
	for _, fw := range []struct {
		name string
		w    FieldWeights
	}{
		{"skill.fuzzy", c.Skill.Fuzzy},
		{"agent.fuzzy", c.Agent.Fuzzy},
		{"command.fuzzy", c.Command.Fuzzy},
		{"rule.fuzzy", c.Rule.Fuzzy},
	} {
		floats[fw.name+".name"] = fw.w.Name
		floats[fw.name+".description"] = fw.w.Description
		floats[fw.name+".extra"] = fw.w.Extra
	}
	for name, v := range floats {
		if v < 0 {
			return fmt.Errorf("invalid match config: %s must not be negative (got %g)", name, v)
		}
	}

	ints := map[string]int{
		"skill.description_cap":   c.Skill.DescriptionCap,
		"skill.segment_min_len":   c.Skill.SegmentMinLen,
		"agent.description_cap":   c.Agent.DescriptionCap,
		"agent.segment_min_len":   c.Agent.SegmentMinLen,
		"command.description_cap": c.Command.DescriptionCap,
		"command.summary_cap":     c.Command.SummaryCap,
	}
	for name, v := range ints {
		if v < 0 {
			return fmt.Errorf("invalid match config: %s must not be negative (got %d)", name, v)
		}
	}

	limits := map[string]int{
		"skill.limit":   c.Skill.Limit,
		"agent.limit":   c.Agent.Limit,
		"command.limit": c.Command.Limit,
		"rule.limit":    c.Rule.Limit,
	}
	for name, v := range limits {
		if v < Unlimited {
			return fmt.Errorf("invalid match config: %s must be >= %d (got %d)", name, Unlimited, v)
		}
	}

	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("invalid match config: fuzzy_threshold must be in (0, 1] (got %g)", c.FuzzyThreshold)
	}
	return nil
}
