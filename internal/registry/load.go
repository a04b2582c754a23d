package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadManifest reads only the manifest of a registry cache.
func LoadManifest(dir string) (*Manifest, error) {
	manifestPath := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON %s: %w", manifestPath, err)
	}
	if m.RegistryVersion != registryVersion {
		return nil, fmt.Errorf("unsupported registry version in manifest: %d", m.RegistryVersion)
	}
	if m.EntriesFile == "" {
		m.EntriesFile = defaultEntriesFile
	}
	return &m, nil
}

// Load reads a registry cache from dir.
func Load(dir string) (*Registry, *Manifest, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	reg, err := loadEntries(filepath.Join(dir, m.EntriesFile))
	if err != nil {
		return nil, nil, err
	}
	return reg, m, nil
}

func loadEntries(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open entries file %s: %w", path, err)
	}
	defer f.Close()

	reg := &Registry{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("invalid entries JSONL %s: %w", path, err)
		}
		if err := r.addTo(reg); err != nil {
			return nil, fmt.Errorf("%s line %d: %w: %q", path, line, err, r.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read entries file %s: %w", path, err)
	}
	return reg, nil
}
