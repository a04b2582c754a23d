package registry

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// header is the subset of frontmatter keys the builder understands.
// Unknown keys are ignored.
type header struct {
	Name          string     `yaml:"name"`
	Description   string     `yaml:"description"`
	Keywords      stringList `yaml:"keywords"`
	Tags          stringList `yaml:"tags"`
	Category      string     `yaml:"category"`
	Role          string     `yaml:"role"`
	RelatedSkills stringList `yaml:"related-skills"`
	Skills        stringList `yaml:"skills"`
}

// stringList accepts either a YAML sequence or a comma-separated scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*l = splitList(n.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = cleanList(items)
		return nil
	}
	return fmt.Errorf("line %d: expected list or string", n.Line)
}

func splitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

// splitFrontmatter separates a leading "---" fenced YAML block from the body.
// A missing block yields an empty header and the full content; a malformed
// block yields an empty header and the body after it.
func splitFrontmatter(content string) (header, string) {
	s := strings.TrimPrefix(content, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.HasPrefix(s, "---") {
		return header{}, s
	}

	parts := strings.SplitN(s, "---", 3)
	if len(parts) < 3 {
		return header{}, s
	}

	fmText := strings.TrimSpace(parts[1])
	body := strings.TrimPrefix(parts[2], "\n")

	var h header
	if err := yaml.Unmarshal([]byte(fmText), &h); err != nil {
		return header{}, body
	}
	return h, body
}
