package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	skillFile  = "SKILL.md"
	summaryMax = 200
)

// document is one parsed markdown file before it is typed by kind.
type document struct {
	id   string
	path string
	head header
	body string
}

// Discover scans a hub directory and returns every entry it finds:
//
//	root/skills/<id>/SKILL.md
//	root/agents/**/<id>.md
//	root/commands/**/<id>.md
//	root/rules/**/<id>.md
//
// A missing category directory contributes no entries.
func Discover(root string) (*Registry, error) {
	reg := &Registry{}
	for _, k := range Kinds {
		docs, err := scanKind(root, k)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			add(reg, k, d)
		}
	}
	sortRegistry(reg)
	return reg, nil
}

func scanKind(root string, k Kind) ([]document, error) {
	dir := filepath.Join(root, k.Dir())
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot stat %s directory %s: %w", k.Dir(), dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s path is not a directory: %s", k.Dir(), dir)
	}

	var out []document
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		id, ok := entryID(k, path, d.Name())
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		h, body := splitFrontmatter(string(b))
		out = append(out, document{id: id, path: filepath.ToSlash(rel), head: h, body: body})
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", k.Dir(), err)
	}
	return out, nil
}

// entryID derives the entry ID from a file path, reporting false for files
// that are not entries of kind k.
func entryID(k Kind, path, name string) (string, bool) {
	if k == KindSkill {
		if name != skillFile {
			return "", false
		}
		return filepath.Base(filepath.Dir(path)), true
	}
	if !strings.EqualFold(filepath.Ext(name), ".md") || strings.EqualFold(name, "README.md") {
		return "", false
	}
	return strings.TrimSuffix(name, filepath.Ext(name)), true
}

func add(reg *Registry, k Kind, d document) {
	base := Base{
		ID:          d.id,
		Path:        d.path,
		Name:        strings.TrimSpace(d.head.Name),
		Description: strings.TrimSpace(d.head.Description),
		Summary:     inferSummaryFromBody(d.body),
	}
	if base.Name == "" {
		base.Name = d.id
	}
	if base.Description == "" {
		base.Description = inferDescriptionFromBody(d.body)
	}

	switch k {
	case KindSkill:
		keywords := []string(d.head.Keywords)
		if len(keywords) == 0 {
			keywords = d.head.Tags
		}
		reg.Skills = append(reg.Skills, Skill{
			Base:     base,
			Keywords: keywords,
			Category: strings.TrimSpace(d.head.Category),
		})
	case KindAgent:
		reg.Agents = append(reg.Agents, Agent{Base: base, Role: strings.TrimSpace(d.head.Role)})
	case KindCommand:
		related := []string(d.head.RelatedSkills)
		if len(related) == 0 {
			related = d.head.Skills
		}
		reg.Commands = append(reg.Commands, Command{Base: base, RelatedSkills: related})
	case KindRule:
		reg.Rules = append(reg.Rules, Rule{Base: base})
	}
}

func sortRegistry(reg *Registry) {
	sort.SliceStable(reg.Skills, func(i, j int) bool { return reg.Skills[i].ID < reg.Skills[j].ID })
	sort.SliceStable(reg.Agents, func(i, j int) bool { return reg.Agents[i].ID < reg.Agents[j].ID })
	sort.SliceStable(reg.Commands, func(i, j int) bool { return reg.Commands[i].ID < reg.Commands[j].ID })
	sort.SliceStable(reg.Rules, func(i, j int) bool { return reg.Rules[i].ID < reg.Rules[j].ID })
}

func inferDescriptionFromBody(body string) string {
	lines := strings.Split(body, "\n")
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if strings.HasPrefix(ln, "#") {
			continue
		}
		return ln
	}
	return ""
}

// inferSummaryFromBody returns the first body paragraph with whitespace
// collapsed, capped at summaryMax runes.
func inferSummaryFromBody(body string) string {
	var para []string
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "#") {
			if len(para) > 0 {
				break
			}
			continue
		}
		if ln == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		para = append(para, ln)
	}
	s := strings.Join(strings.Fields(strings.Join(para, " ")), " ")
	if utf8.RuneCountInString(s) <= summaryMax {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:summaryMax]))
}
