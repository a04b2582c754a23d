package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kamusis/axon-context/internal/match"
)

func TestLoadSignals_NotExist(t *testing.T) {
	s, err := LoadSignals(filepath.Join(t.TempDir(), "signals.yaml"))
	if err != nil {
		t.Fatalf("LoadSignals: %v", err)
	}
	cfg, err := s.MatchConfig()
	if err != nil {
		t.Fatalf("MatchConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, match.DefaultConfig()) {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestLoadSignals_TablesAndWeights(t *testing.T) {
	p := filepath.Join(t.TempDir(), "signals.yaml")
	body := `agents:
  code-reviewer: [review, diff]
rules:
  security: [secret]
weights:
  skill:
    keyword_weight: 0.7
  command:
    limit: 8
  fuzzy_threshold: 0.3
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSignals(p)
	if err != nil {
		t.Fatalf("LoadSignals: %v", err)
	}
	cfg, err := s.MatchConfig()
	if err != nil {
		t.Fatalf("MatchConfig: %v", err)
	}
	if cfg.Skill.KeywordWeight != 0.7 {
		t.Fatalf("keyword weight = %v, want 0.7", cfg.Skill.KeywordWeight)
	}
	if cfg.Skill.NameWeight != 0.3 {
		t.Fatalf("untouched weight changed: %v", cfg.Skill.NameWeight)
	}
	if cfg.Command.Limit != 8 || cfg.Command.MinScore != 0.15 {
		t.Fatalf("unexpected command config: %+v", cfg.Command)
	}
	if cfg.FuzzyThreshold != 0.3 {
		t.Fatalf("fuzzy threshold = %v, want 0.3", cfg.FuzzyThreshold)
	}
	if !reflect.DeepEqual(cfg.AgentSignals["code-reviewer"], []string{"review", "diff"}) {
		t.Fatalf("agent signals = %v", cfg.AgentSignals)
	}
	if !reflect.DeepEqual(cfg.RuleSignals["security"], []string{"secret"}) {
		t.Fatalf("rule signals = %v", cfg.RuleSignals)
	}
}

func TestLoadSignals_InvalidWeights(t *testing.T) {
	p := filepath.Join(t.TempDir(), "signals.yaml")
	if err := os.WriteFile(p, []byte("weights:\n  agent:\n    min_score: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSignals(p)
	if err != nil {
		t.Fatalf("LoadSignals: %v", err)
	}
	if _, err := s.MatchConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEnsureSignalsTemplate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "signals.yaml")
	created, err := EnsureSignalsTemplate(p)
	if err != nil || !created {
		t.Fatalf("EnsureSignalsTemplate = %v, %v", created, err)
	}

	s, err := LoadSignals(p)
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if _, err := s.MatchConfig(); err != nil {
		t.Fatalf("template config invalid: %v", err)
	}
	if len(s.Agents) == 0 || len(s.Rules) == 0 {
		t.Fatalf("template should carry starter tables: %+v", s)
	}

	created, err = EnsureSignalsTemplate(p)
	if err != nil || created {
		t.Fatalf("second call should not overwrite: %v, %v", created, err)
	}
}
