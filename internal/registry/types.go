// Package registry holds the typed knowledge-base entries (skills, agents,
// commands, rules) and the builder that discovers them in a hub directory.
package registry

import "fmt"

// Kind identifies one of the four entry categories.
type Kind string

const (
	KindSkill   Kind = "skill"
	KindAgent   Kind = "agent"
	KindCommand Kind = "command"
	KindRule    Kind = "rule"
)

// Kinds lists every category in registry order.
var Kinds = []Kind{KindSkill, KindAgent, KindCommand, KindRule}

// ParseKind accepts singular or plural category names.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "skill", "skills":
		return KindSkill, nil
	case "agent", "agents":
		return KindAgent, nil
	case "command", "commands":
		return KindCommand, nil
	case "rule", "rules":
		return KindRule, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Dir returns the hub subdirectory holding entries of this kind.
func (k Kind) Dir() string {
	return string(k) + "s"
}

// Base is the metadata every entry shares.
type Base struct {
	ID          string
	Path        string
	Name        string
	Description string
	Summary     string
}

// Common returns the shared metadata.
func (b Base) Common() Base { return b }

// Entry is implemented by Skill, Agent, Command and Rule.
type Entry interface {
	Kind() Kind
	Common() Base
}

// Skill carries declared keywords. Category is informational.
type Skill struct {
	Base
	Keywords []string
	Category string
}

func (Skill) Kind() Kind { return KindSkill }

// Agent is matched against an external task-signal table keyed by ID.
type Agent struct {
	Base
	Role string
}

func (Agent) Kind() Kind { return KindAgent }

// Command lists the skill IDs it is known to support.
type Command struct {
	Base
	RelatedSkills []string
}

func (Command) Kind() Kind { return KindCommand }

// Rule is matched against an external relevance-signal table keyed by ID.
type Rule struct {
	Base
}

func (Rule) Kind() Kind { return KindRule }

// Registry is an immutable snapshot of all entries. Callers must not mutate
// the slices once the registry is handed to a matcher.
type Registry struct {
	Skills   []Skill
	Agents   []Agent
	Commands []Command
	Rules    []Rule
}

// Len returns the total number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Skills) + len(r.Agents) + len(r.Commands) + len(r.Rules)
}

// Count returns the number of entries of kind k.
func (r *Registry) Count(k Kind) int {
	if r == nil {
		return 0
	}
	switch k {
	case KindSkill:
		return len(r.Skills)
	case KindAgent:
		return len(r.Agents)
	case KindCommand:
		return len(r.Commands)
	case KindRule:
		return len(r.Rules)
	}
	return 0
}

// Entries returns all entries of kind k in registry order.
func (r *Registry) Entries(k Kind) []Entry {
	if r == nil {
		return nil
	}
	var out []Entry
	switch k {
	case KindSkill:
		for _, e := range r.Skills {
			out = append(out, e)
		}
	case KindAgent:
		for _, e := range r.Agents {
			out = append(out, e)
		}
	case KindCommand:
		for _, e := range r.Commands {
			out = append(out, e)
		}
	case KindRule:
		for _, e := range r.Rules {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds an entry by kind and ID.
func (r *Registry) Lookup(k Kind, id string) (Entry, bool) {
	for _, e := range r.Entries(k) {
		if e.Common().ID == id {
			return e, true
		}
	}
	return nil, false
}
