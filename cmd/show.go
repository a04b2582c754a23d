package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamusis/axon-context/internal/registry"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxSuggestions = 5

var flagShowLive bool

var showCmd = &cobra.Command{
	Use:   "show <kind> <id>",
	Short: "Show one skill, agent, command or rule",
	Long: `Display a registry entry with its metadata, inferred summary and, for
skills, the notable files in its folder.

<kind> is one of skill, agent, command, rule (plural forms accepted).

Example:
  axon show skill shopify-development
  axon show agent code-reviewer`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&flagShowLive, "live", false, "Scan the hub instead of using the registry cache")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	kind, err := registry.ParseKind(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, _, err := loadRegistry(cfg, newLogger(cfg), flagShowLive)
	if err != nil {
		return err
	}

	id := args[1]
	e, ok := reg.Lookup(kind, id)
	if !ok {
		return notFoundError(kind, id, suggestIDs(reg, kind, id))
	}
	printEntry(cmd.OutOrStdout(), cfg.RepoPath, e)
	return nil
}

// suggestIDs ranks the ids of kind against id, best first.
func suggestIDs(reg *registry.Registry, kind registry.Kind, id string) []string {
	entries := reg.Entries(kind)
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Common().ID
	}
	var out []string
	for _, m := range fuzzy.Find(id, ids) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func notFoundError(kind registry.Kind, id string, suggestions []string) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("%s %q not found in registry.\nTip: run 'axon registry build' after adding entries to the hub.", kind, id)
	}
	return fmt.Errorf("%s %q not found in registry. Did you mean:\n  %s", kind, id, strings.Join(suggestions, "\n  "))
}

// printEntry writes the formatted view of one entry. Entry paths are
// relative to hubRoot.
func printEntry(w io.Writer, hubRoot string, e registry.Entry) {
	b := e.Common()
	fmt.Fprintf(w, "📦 %s: %s\n", cases.Title(language.Und).String(string(e.Kind())), b.Name)
	fmt.Fprintf(w, "ID:       %s\n", b.ID)
	if b.Description != "" {
		fmt.Fprintf(w, "Summary:  %s\n", strings.ReplaceAll(strings.TrimSpace(b.Description), "\n", " "))
	}

	switch v := e.(type) {
	case registry.Skill:
		if v.Category != "" {
			fmt.Fprintf(w, "Category: %s\n", v.Category)
		}
		if len(v.Keywords) > 0 {
			fmt.Fprintf(w, "\nKeywords: %s\n", strings.Join(v.Keywords, ", "))
		}
	case registry.Agent:
		if v.Role != "" {
			fmt.Fprintf(w, "Role:     %s\n", v.Role)
		}
	case registry.Command:
		if len(v.RelatedSkills) > 0 {
			fmt.Fprintln(w, "\nRelated skills:")
			for _, s := range v.RelatedSkills {
				fmt.Fprintf(w, "  - %s\n", s)
			}
		}
	}

	if b.Summary != "" && b.Summary != b.Description {
		fmt.Fprintf(w, "\nBody:\n  %s\n", b.Summary)
	}

	files, scripts := entryAssets(hubRoot, e)
	if len(files) > 0 {
		fmt.Fprintln(w, "\nFiles:")
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(scripts) > 0 {
		fmt.Fprintln(w, "\nScripts:")
		for _, sc := range scripts {
			fmt.Fprintf(w, "  - %s (Executable)\n", sc)
		}
	}
	if b.Path != "" {
		fmt.Fprintf(w, "\nPath: %s\n", filepath.Join(hubRoot, filepath.FromSlash(b.Path)))
	}
}

var (
	assetLabels = map[string]string{
		"skill.md":   "Instructions",
		"readme.md":  "Readme",
		"scripts/":   "Scripts directory",
		"examples/":  "Examples",
		"resources/": "Resources",
		"templates/": "Templates",
	}
	scriptExts = map[string]bool{".py": true, ".sh": true, ".js": true, ".ts": true, ".rb": true}
)

// assetDir returns the folder holding an entry's supporting files: the skill
// folder itself, or a directory named after the id beside the entry file
// (commands/deploy/ next to commands/deploy.md).
func assetDir(hubRoot string, e registry.Entry) string {
	b := e.Common()
	if b.Path == "" {
		return ""
	}
	dir := filepath.Join(hubRoot, filepath.Dir(filepath.FromSlash(b.Path)))
	if e.Kind() == registry.KindSkill {
		return dir
	}
	return filepath.Join(dir, b.ID)
}

// entryAssets lists the top-level files of the entry's asset folder, labelled
// where the name is well known, and every script beneath scripts/.
func entryAssets(hubRoot string, e registry.Entry) (files, scripts []string) {
	root := assetDir(hubRoot, e)
	if root == "" {
		return nil, nil
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	_ = fs.WalkDir(os.DirFS(root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		top := !strings.Contains(p, "/")
		if top {
			name := d.Name()
			key := strings.ToLower(name)
			if d.IsDir() {
				name += "/"
				key += "/"
			}
			if label, ok := assetLabels[key]; ok {
				name += " (" + label + ")"
			}
			files = append(files, name)
		}
		if d.IsDir() {
			if p == "scripts" || strings.HasPrefix(p, "scripts/") {
				return nil
			}
			return fs.SkipDir
		}
		if strings.HasPrefix(p, "scripts/") && isScript(d) {
			scripts = append(scripts, p)
		}
		return nil
	})
	return files, scripts
}

func isScript(d fs.DirEntry) bool {
	if scriptExts[strings.ToLower(filepath.Ext(d.Name()))] {
		return true
	}
	info, err := d.Info()
	return err == nil && info.Mode()&0o111 != 0
}
