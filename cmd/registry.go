package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kamusis/axon-context/internal/config"
	"github.com/kamusis/axon-context/internal/registry"
	"github.com/spf13/cobra"
)

const registryLockTimeout = 10 * time.Second

var flagRegistryForce bool

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the registry cache built from the hub",
}

var registryBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scan the hub and install a fresh registry cache",
	Long: `Discover every skill, agent, command and rule under the hub and write
the registry cache (registry_manifest.json + entries.jsonl).

The cache is written to a temporary directory and swapped into place, so a
running 'axon match' never sees a half-written cache. When the hub content
is unchanged the existing cache is kept; use --force to rebuild anyway.`,
	Args: cobra.NoArgs,
	RunE: runRegistryBuild,
}

func init() {
	registryBuildCmd.Flags().BoolVar(&flagRegistryForce, "force", false, "Rebuild even if the hub content is unchanged")
	registryCmd.AddCommand(registryBuildCmd)
	rootCmd.AddCommand(registryCmd)
}

func runRegistryBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	printSection("Registry Build")
	res, err := buildRegistry(commandContext(cmd), cfg, flagRegistryForce)
	if err != nil {
		if errors.Is(err, registry.ErrNoEntries) {
			printWarn("", fmt.Sprintf("Hub has no entries: %s", cfg.RepoPath))
		}
		return err
	}
	log.Debug("registry build finished", "hash", res.Manifest.ContentHash, "unchanged", res.Unchanged)

	dir, _ := cfg.EffectiveRegistryDir()
	if res.Unchanged {
		printSkip("", fmt.Sprintf("Registry up to date: %s", dir))
	} else {
		printOK("", fmt.Sprintf("Registry installed: %s", dir))
	}
	for _, k := range registry.Kinds {
		printInfo(k.Dir(), fmt.Sprintf("%d", res.Registry.Count(k)))
	}
	return nil
}

// buildRegistry builds into ~/.axon/tmp and swaps the result over the
// installed cache while holding the registry lock.
func buildRegistry(ctx context.Context, cfg *config.Config, force bool) (*registry.BuildResult, error) {
	dest, err := cfg.EffectiveRegistryDir()
	if err != nil {
		return nil, err
	}
	release, err := registry.AcquireLock(dest, registryLockTimeout)
	defer release()
	if err != nil {
		return nil, err
	}

	axonDir, err := config.AxonDir()
	if err != nil {
		return nil, err
	}
	tmpRoot := filepath.Join(axonDir, "tmp")
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", tmpRoot, err)
	}
	tmp, err := os.MkdirTemp(tmpRoot, "registry-")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	res, err := registry.Build(ctx, registry.BuildOptions{
		HubPath:  cfg.RepoPath,
		OutDir:   tmp,
		Previous: dest,
		Force:    force,
	})
	if err != nil {
		return nil, err
	}
	if res.Unchanged {
		return res, nil
	}
	if err := registry.AtomicSwap(tmp, dest); err != nil {
		return nil, fmt.Errorf("cannot install registry cache: %w", err)
	}
	return res, nil
}
