package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kamusis/axon-context/internal/config"
	"github.com/kamusis/axon-context/internal/registry"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run environment and hub consistency checks",
	Long: `Check that axon.yaml, the hub, the registry cache and the signal
tables are consistent. Run this command when recommendations look wrong.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues in the Axon environment.

Currently fixes:
  - Leftover temporary registry builds under ~/.axon/tmp
  - A missing or stale registry cache (rebuilds it)

Run 'axon doctor' first to see what will be fixed.`,
	Args: cobra.NoArgs,
	RunE: runDoctorFix,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("axon doctor")
	fmt.Println()

	// ── Check 1: axon.yaml ────────────────────────────────────────────────────
	fmt.Println("[ axon.yaml ]")
	cfg, loadErr := config.Load()
	if loadErr != nil {
		failD("cannot load axon.yaml: %v — run 'axon init' first", loadErr)
		fmt.Println()
		return fmt.Errorf("doctor found problems")
	}
	cfgPath, _ := config.ConfigPath()
	printOK("", fmt.Sprintf("valid YAML: %s", cfgPath))
	if cfg.RepoPath == "" {
		failD("repo_path is empty")
	}
	fmt.Println()

	// ── Check 2: hub layout ───────────────────────────────────────────────────
	fmt.Println("[ Hub ]")
	live, scanErr := registry.Discover(cfg.RepoPath)
	if scanErr != nil {
		failD("cannot scan hub: %v", scanErr)
	} else {
		for _, k := range registry.Kinds {
			dir := filepath.Join(cfg.RepoPath, k.Dir())
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printSkip(k.Dir(), "directory missing")
				continue
			}
			printOK(k.Dir(), fmt.Sprintf("%d entr%s", live.Count(k), plural(live.Count(k))))
		}
		if live.Len() == 0 {
			printWarn("", fmt.Sprintf("hub has no entries: %s", cfg.RepoPath))
		}
		for _, d := range duplicateIDs(live) {
			failD("duplicate id %s", d)
		}
	}
	fmt.Println()

	// ── Check 3: registry cache ───────────────────────────────────────────────
	fmt.Println("[ Registry cache ]")
	regDir, err := cfg.EffectiveRegistryDir()
	if err != nil {
		failD("%v", err)
	} else if m, err := registry.LoadManifest(regDir); err != nil {
		printWarn("", "no registry cache — run 'axon registry build' (match falls back to scanning the hub)")
	} else if scanErr == nil && m.ContentHash != registry.ContentHash(live) {
		printWarn("", fmt.Sprintf("cache built %s is stale — run 'axon registry build'", m.CreatedAt))
	} else {
		printOK("", fmt.Sprintf("cache built %s is current", m.CreatedAt))
	}
	fmt.Println()

	// ── Check 4: signal tables ────────────────────────────────────────────────
	fmt.Println("[ Signals ]")
	sigPath, err := cfg.EffectiveSignalsFile()
	if err != nil {
		failD("%v", err)
	} else if sig, err := config.LoadSignals(sigPath); err != nil {
		failD("%v", err)
	} else if _, err := sig.MatchConfig(); err != nil {
		failD("invalid weights in %s: %v", sigPath, err)
	} else {
		printOK("", fmt.Sprintf("%d agent / %d rule signal table(s): %s", len(sig.Agents), len(sig.Rules), sigPath))
		if scanErr == nil {
			for _, id := range unknownSignalIDs(sig.Agents, live, registry.KindAgent) {
				printWarn("agents", fmt.Sprintf("%s has signals but no agent entry", id))
			}
			for _, id := range unknownSignalIDs(sig.Rules, live, registry.KindRule) {
				printWarn("rules", fmt.Sprintf("%s has signals but no rule entry", id))
			}
		}
	}
	fmt.Println()

	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("  ✓  All checks passed.")
	return nil
}

func runDoctorFix(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("axon doctor fix")

	fmt.Println("\n[ Temporary builds ]")
	axonDir, err := config.AxonDir()
	if err != nil {
		return err
	}
	leftovers, _ := filepath.Glob(filepath.Join(axonDir, "tmp", "registry-*"))
	if len(leftovers) == 0 {
		printOK("", "no leftover builds — nothing to fix")
	}
	var failed int
	for _, dir := range leftovers {
		if err := os.RemoveAll(dir); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", dir, err))
			failed++
		} else {
			printOK("", fmt.Sprintf("deleted %s", dir))
		}
	}

	fmt.Println("\n[ Registry cache ]")
	res, err := buildRegistry(commandContext(cmd), cfg, false)
	switch {
	case err != nil:
		printErr("", err.Error())
		failed++
	case res.Unchanged:
		printOK("", "cache is current — nothing to fix")
	default:
		printOK("", fmt.Sprintf("cache rebuilt (%d entries)", res.Registry.Len()))
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d issue(s) could not be fixed", failed)
	}
	return nil
}

// duplicateIDs reports "<kind>/<id>" for ids that appear more than once
// within a kind. Nested agent, command or rule files can collide.
func duplicateIDs(reg *registry.Registry) []string {
	var out []string
	for _, k := range registry.Kinds {
		seen := map[string]int{}
		for _, e := range reg.Entries(k) {
			seen[e.Common().ID]++
		}
		for id, n := range seen {
			if n > 1 {
				out = append(out, fmt.Sprintf("%s/%s (%d files)", k.Dir(), id, n))
			}
		}
	}
	sort.Strings(out)
	return out
}

// unknownSignalIDs returns the table keys with no entry of kind k, sorted.
func unknownSignalIDs(table map[string][]string, reg *registry.Registry, k registry.Kind) []string {
	var out []string
	for id := range table {
		if _, ok := reg.Lookup(k, strings.TrimSpace(id)); !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
