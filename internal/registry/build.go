package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOptions controls registry cache building.
type BuildOptions struct {
	HubPath string
	OutDir  string
	// Previous is the installed cache directory used for change detection.
	Previous string
	Force    bool
}

// BuildResult reports what Build produced.
type BuildResult struct {
	Registry *Registry
	Manifest Manifest
	// Unchanged is true when the previous cache already matched the hub and
	// nothing was written.
	Unchanged bool
}

// Build discovers entries under opts.HubPath and writes a registry cache to
// opts.OutDir.
//
// When opts.Previous holds a cache with the same content hash and Force is
// false, nothing is written. It is the caller's responsibility to apply an
// atomic swap strategy.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if opts.HubPath == "" {
		return nil, fmt.Errorf("hub path is required")
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("out dir is required")
	}

	reg, err := Discover(opts.HubPath)
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoEntries, opts.HubPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ContentHash(reg)
	if opts.Previous != "" && !opts.Force {
		if old, err := LoadManifest(opts.Previous); err == nil && old.ContentHash == hash {
			return &BuildResult{Registry: reg, Manifest: *old, Unchanged: true}, nil
		}
	}

	manifest := Manifest{
		RegistryVersion: registryVersion,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		HubPath:         opts.HubPath,
		ContentHash:     hash,
		EntriesFile:     defaultEntriesFile,
	}
	if err := Write(opts.OutDir, manifest, reg); err != nil {
		return nil, err
	}
	manifest.Counts = counts(reg)
	return &BuildResult{Registry: reg, Manifest: manifest}, nil
}

// AtomicSwap replaces destDir with srcDir by renaming.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}
