package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamusis/axon-context/internal/config"
	"github.com/kamusis/axon-context/internal/registry"
	"github.com/spf13/cobra"
)

var flagInitRepo string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.axon with default config, signal tables and hub layout",
	Long: `Initialize Axon under ~/.axon/.

Writes axon.yaml, a commented signals.yaml template and the .env template,
then creates the hub skeleton (skills/, agents/, commands/, rules/).
Existing files are never overwritten.

Example:
  axon init
  axon init --repo ~/work/knowledge-hub`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitRepo, "repo", "", "Hub directory to record as repo_path (default ~/.axon/repo)")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.axon directory ──────────────────────────────────────────
	axonDir, err := config.AxonDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(axonDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", axonDir, err)
	}
	printOK("", fmt.Sprintf("Axon directory ready: %s", axonDir))

	// ── 2. Write axon.yaml if missing ─────────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if flagInitRepo != "" {
			repo, err := config.ExpandPath(flagInitRepo)
			if err != nil {
				return err
			}
			if cfg.RepoPath, err = filepath.Abs(repo); err != nil {
				return fmt.Errorf("cannot resolve %s: %w", repo, err)
			}
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ── 3. signals.yaml and .env templates ────────────────────────────────────
	sigPath, err := cfg.EffectiveSignalsFile()
	if err != nil {
		return err
	}
	created, err := config.EnsureSignalsTemplate(sigPath)
	if err != nil {
		return err
	}
	if created {
		printOK("", fmt.Sprintf("Signals template written: %s", sigPath))
	} else {
		printSkip("", fmt.Sprintf("Signals file already exists: %s", sigPath))
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf(".env ready: %s", envPath))

	// ── 4. Hub skeleton ───────────────────────────────────────────────────────
	for _, k := range registry.Kinds {
		dir := filepath.Join(cfg.RepoPath, k.Dir())
		if _, err := os.Stat(dir); err == nil {
			printSkip(k.Dir(), "already exists")
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
		printOK(k.Dir(), fmt.Sprintf("created %s", dir))
	}

	fmt.Println("\n✓  axon init complete. Add entries to the hub, then run 'axon registry build'.")
	return nil
}
