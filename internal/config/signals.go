package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamusis/axon-context/internal/match"
	"gopkg.in/yaml.v3"
)

// Signals is the in-memory representation of signals.yaml: the task-signal
// words for agents and the relevance-signal words for rules, keyed by entry
// id, plus optional overrides of the match constants.
type Signals struct {
	Agents map[string][]string `yaml:"agents"`
	Rules  map[string][]string `yaml:"rules"`

	// Weights is decoded over match.DefaultConfig(), so only the keys present
	// in the file change.
	Weights yaml.Node `yaml:"weights"`
}

// SignalsTemplate is written by axon init.
const SignalsTemplate = `# Signal words matched against requests, keyed by entry id.
agents:
  code-reviewer: [review, pr, diff, pull request, refactor]
  test-writer: [test, coverage, spec, mock]
rules:
  security: [secret, password, credential, token, auth]
  testing: [test, coverage]

# Uncomment to override match constants.
# weights:
#   skill:
#     keyword_weight: 0.5
#     min_score: 0.05
#     limit: 10
#   command:
#     related_boost: 0.3
#   fuzzy_threshold: 0.4
`

// LoadSignals reads a signals file. A missing file yields empty tables.
func LoadSignals(path string) (*Signals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Signals{}, nil
		}
		return nil, fmt.Errorf("cannot read signals %s: %w", path, err)
	}
	var s Signals
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return &s, nil
}

// MatchConfig builds a validated match.Config from the defaults, the weight
// overrides and the signal tables.
func (s *Signals) MatchConfig() (match.Config, error) {
	cfg := match.DefaultConfig()
	if s.Weights.Kind != 0 {
		if err := s.Weights.Decode(&cfg); err != nil {
			return match.Config{}, fmt.Errorf("invalid weights block: %w", err)
		}
	}
	for id, words := range s.Agents {
		cfg.AgentSignals[id] = words
	}
	for id, words := range s.Rules {
		cfg.RuleSignals[id] = words
	}
	if err := cfg.Validate(); err != nil {
		return match.Config{}, err
	}
	return cfg, nil
}

// EnsureSignalsTemplate writes SignalsTemplate to path unless a file exists.
// It reports whether the file was created.
func EnsureSignalsTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("cannot stat signals file %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(SignalsTemplate), 0o644); err != nil {
		return false, fmt.Errorf("cannot write signals template %s: %w", path, err)
	}
	return true, nil
}
