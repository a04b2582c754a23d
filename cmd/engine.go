package cmd

import (
	"fmt"
	"log/slog"

	"github.com/kamusis/axon-context/internal/config"
	"github.com/kamusis/axon-context/internal/match"
	"github.com/kamusis/axon-context/internal/registry"
)

// loadRegistry returns the installed registry cache, or scans the hub when
// live is set or no usable cache exists. The second value names the source.
func loadRegistry(cfg *config.Config, log *slog.Logger, live bool) (*registry.Registry, string, error) {
	if !live {
		dir, err := cfg.EffectiveRegistryDir()
		if err != nil {
			return nil, "", err
		}
		reg, m, err := registry.Load(dir)
		if err == nil {
			log.Debug("registry cache loaded", "dir", dir, "created_at", m.CreatedAt, "entries", reg.Len())
			return reg, dir, nil
		}
		log.Debug("registry cache unavailable, scanning hub", "dir", dir, "err", err)
	}

	reg, err := registry.Discover(cfg.RepoPath)
	if err != nil {
		return nil, "", err
	}
	log.Debug("hub scanned", "repo", cfg.RepoPath, "entries", reg.Len())
	return reg, cfg.RepoPath, nil
}

// loadMatchConfig reads signals.yaml into a validated match.Config.
func loadMatchConfig(cfg *config.Config) (match.Config, error) {
	path, err := cfg.EffectiveSignalsFile()
	if err != nil {
		return match.Config{}, err
	}
	sig, err := config.LoadSignals(path)
	if err != nil {
		return match.Config{}, err
	}
	mc, err := sig.MatchConfig()
	if err != nil {
		return match.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return mc, nil
}

// loadEngine wires the registry, signal tables and logger into an engine.
func loadEngine(cfg *config.Config, log *slog.Logger, live bool) (*match.Engine, error) {
	reg, _, err := loadRegistry(cfg, log, live)
	if err != nil {
		return nil, err
	}
	mc, err := loadMatchConfig(cfg)
	if err != nil {
		return nil, err
	}
	return match.NewEngine(reg, mc, match.WithLogger(log)), nil
}
