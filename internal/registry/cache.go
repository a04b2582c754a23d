package registry

// Manifest describes a registry cache directory.
type Manifest struct {
	RegistryVersion int            `json:"registry_version"`
	CreatedAt       string         `json:"created_at"`
	HubPath         string         `json:"hub_path"`
	ContentHash     string         `json:"content_hash"`
	Counts          map[string]int `json:"counts"`
	EntriesFile     string         `json:"entries_file"`
}

const (
	manifestFile       = "registry_manifest.json"
	defaultEntriesFile = "entries.jsonl"
	registryVersion    = 1
)

// record is one line of entries.jsonl.
type record struct {
	Kind          Kind     `json:"kind"`
	ID            string   `json:"id"`
	Path          string   `json:"path"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Summary       string   `json:"summary,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Category      string   `json:"category,omitempty"`
	Role          string   `json:"role,omitempty"`
	RelatedSkills []string `json:"related_skills,omitempty"`
	TextHash      string   `json:"text_hash"`
}

func toRecord(e Entry) record {
	b := e.Common()
	r := record{
		Kind:        e.Kind(),
		ID:          b.ID,
		Path:        b.Path,
		Name:        b.Name,
		Description: b.Description,
		Summary:     b.Summary,
		TextHash:    TextHash(CanonicalText(e)),
	}
	switch v := e.(type) {
	case Skill:
		r.Keywords = v.Keywords
		r.Category = v.Category
	case Agent:
		r.Role = v.Role
	case Command:
		r.RelatedSkills = v.RelatedSkills
	}
	return r
}

func (r record) base() Base {
	return Base{ID: r.ID, Path: r.Path, Name: r.Name, Description: r.Description, Summary: r.Summary}
}

func (r record) addTo(reg *Registry) error {
	switch r.Kind {
	case KindSkill:
		reg.Skills = append(reg.Skills, Skill{Base: r.base(), Keywords: r.Keywords, Category: r.Category})
	case KindAgent:
		reg.Agents = append(reg.Agents, Agent{Base: r.base(), Role: r.Role})
	case KindCommand:
		reg.Commands = append(reg.Commands, Command{Base: r.base(), RelatedSkills: r.RelatedSkills})
	case KindRule:
		reg.Rules = append(reg.Rules, Rule{Base: r.base()})
	default:
		return ErrUnknownKind
	}
	return nil
}

func counts(reg *Registry) map[string]int {
	out := make(map[string]int, len(Kinds))
	for _, k := range Kinds {
		out[string(k)] = reg.Count(k)
	}
	return out
}
