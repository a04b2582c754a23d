package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.axon/axon.yaml.
type Config struct {
	// RepoPath is the knowledge hub holding skills/, agents/, commands/ and rules/.
	RepoPath    string `yaml:"repo_path"`
	RegistryDir string `yaml:"registry_dir,omitempty"`
	SignalsFile string `yaml:"signals_file,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

// AxonDir returns the absolute path to ~/.axon/.
func AxonDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".axon"), nil
}

// ConfigPath returns the absolute path to ~/.axon/axon.yaml.
func ConfigPath() (string, error) {
	dir, err := AxonDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "axon.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first axon init.
func DefaultConfig() (*Config, error) {
	dir, err := AxonDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		RepoPath:    filepath.Join(dir, "repo"),
		RegistryDir: filepath.Join(dir, "registry"),
		SignalsFile: filepath.Join(dir, "signals.yaml"),
		LogLevel:    "warn",
	}, nil
}

// EffectiveRegistryDir returns the registry cache directory, defaulting to
// ~/.axon/registry.
func (c *Config) EffectiveRegistryDir() (string, error) {
	if c.RegistryDir != "" {
		return ExpandPath(c.RegistryDir)
	}
	dir, err := AxonDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "registry"), nil
}

// EffectiveSignalsFile returns the signal table path, defaulting to
// ~/.axon/signals.yaml.
func (c *Config) EffectiveSignalsFile() (string, error) {
	if c.SignalsFile != "" {
		return ExpandPath(c.SignalsFile)
	}
	dir, err := AxonDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "signals.yaml"), nil
}

// Load reads and parses ~/.axon/axon.yaml, then applies AXON_REPO_PATH and
// AXON_LOG_LEVEL overrides from the environment or ~/.axon/.env.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := applyOverrides(&cfg); err != nil {
		return nil, err
	}
	// Expand ~ in RepoPath at load time.
	cfg.RepoPath, err = ExpandPath(cfg.RepoPath)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyOverrides(cfg *Config) error {
	repo, err := GetConfigValue("AXON_REPO_PATH")
	if err != nil {
		return err
	}
	if repo != "" {
		cfg.RepoPath = repo
	}
	level, err := GetConfigValue("AXON_LOG_LEVEL")
	if err != nil {
		return err
	}
	if level != "" {
		cfg.LogLevel = level
	}
	return nil
}

// Save marshals cfg and writes it to ~/.axon/axon.yaml, creating ~/.axon
// when missing.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
