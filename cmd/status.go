package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/axon-context/internal/config"
	"github.com/kamusis/axon-context/internal/registry"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show config paths and registry cache freshness",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("Paths")
	cfgPath, _ := config.ConfigPath()
	printInfo("config", cfgPath)
	printInfo("hub", cfg.RepoPath)
	regDir, err := cfg.EffectiveRegistryDir()
	if err != nil {
		return err
	}
	printInfo("registry", regDir)
	sigPath, err := cfg.EffectiveSignalsFile()
	if err != nil {
		return err
	}
	if _, err := os.Stat(sigPath); err == nil {
		printInfo("signals", sigPath)
	} else {
		printSkip("signals", fmt.Sprintf("%s (not found, signal tables empty)", sigPath))
	}

	printSection("Registry Cache")
	m, err := registry.LoadManifest(regDir)
	if err != nil {
		printWarn("", "No registry cache. Run 'axon registry build'.")
		return nil
	}
	printOK("", fmt.Sprintf("Built %s (version %d)", m.CreatedAt, m.RegistryVersion))
	for _, k := range registry.Kinds {
		printInfo(k.Dir(), fmt.Sprintf("%d", m.Counts[string(k)]))
	}

	live, err := registry.Discover(cfg.RepoPath)
	if err != nil {
		printWarn("", fmt.Sprintf("cannot scan hub: %v", err))
		return nil
	}
	if registry.ContentHash(live) == m.ContentHash {
		printOK("", "Cache matches hub content.")
	} else {
		printWarn("", "Cache is stale. Run 'axon registry build'.")
	}
	return nil
}
