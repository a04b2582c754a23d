package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Write writes registry cache artifacts to dir.
func Write(dir string, manifest Manifest, reg *Registry) error {
	if reg.Len() == 0 {
		return fmt.Errorf("cannot write registry: %w", ErrNoEntries)
	}
	if manifest.EntriesFile == "" {
		manifest.EntriesFile = defaultEntriesFile
	}
	if manifest.CreatedAt == "" {
		manifest.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if manifest.RegistryVersion == 0 {
		manifest.RegistryVersion = registryVersion
	}
	if manifest.ContentHash == "" {
		manifest.ContentHash = ContentHash(reg)
	}
	manifest.Counts = counts(reg)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create registry dir %s: %w", dir, err)
	}

	// manifest
	mb, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	// entries jsonl
	f, err := os.Create(filepath.Join(dir, manifest.EntriesFile))
	if err != nil {
		return fmt.Errorf("cannot create entries file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, k := range Kinds {
		for _, e := range reg.Entries(k) {
			line, err := json.Marshal(toRecord(e))
			if err != nil {
				_ = f.Close()
				return err
			}
			if _, err := bw.Write(line); err != nil {
				_ = f.Close()
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				_ = f.Close()
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
