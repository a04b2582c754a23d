package match

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/kamusis/axon-context/internal/registry"
)

func shopifySkill() registry.Skill {
	return registry.Skill{
		Base: registry.Base{
			ID:          "shopify-integration",
			Name:        "Shopify Integration",
			Description: "Shopify store setup and checkout customization",
		},
		Keywords: []string{"shopify", "checkout", "liquid"},
	}
}

func testRegistry() *registry.Registry {
	return &registry.Registry{
		Skills: []registry.Skill{
			{
				Base:     registry.Base{ID: "docker", Name: "Docker", Description: "Container images and compose files"},
				Keywords: []string{"docker", "containers"},
			},
			{
				Base:     registry.Base{ID: "kubernetes-deployment", Name: "Kubernetes Deployment", Description: "Deploy containers to clusters"},
				Keywords: []string{"k8s", "helm"},
			},
			shopifySkill(),
		},
		Agents: []registry.Agent{
			{Base: registry.Base{ID: "code-reviewer", Name: "Code Reviewer", Description: "Reviews pull requests for correctness"}, Role: "reviewer"},
			{Base: registry.Base{ID: "database-admin", Name: "Database Admin", Description: "Tunes queries and schemas"}, Role: "dba"},
		},
		Commands: []registry.Command{
			{
				Base:          registry.Base{ID: "frontend-dev", Name: "frontend-dev", Description: "Run the frontend development server"},
				RelatedSkills: []string{"shopify-integration"},
			},
			{Base: registry.Base{ID: "db-migrate", Name: "db-migrate", Description: "Apply pending schema migrations"}},
		},
		Rules: []registry.Rule{
			{Base: registry.Base{ID: "security", Name: "security", Description: "Never commit secrets or credentials"}},
			{Base: registry.Base{ID: "style", Name: "style", Description: "Format code with gofmt and lint"}},
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AgentSignals = map[string][]string{
		"code-reviewer":  {"review", "pr", "diff", "pull request"},
		"database-admin": {"sql", "index", "migration", "postgres"},
	}
	cfg.RuleSignals = map[string][]string{
		"security": {"secret", "password", "credential"},
		"style":    {"format", "lint"},
	}
	return cfg
}

func newTestEngine() *Engine {
	return NewEngine(testRegistry(), testConfig())
}

func find(ms []ScoredMatch, id string) (ScoredMatch, bool) {
	for _, m := range ms {
		if m.ID() == id {
			return m, true
		}
	}
	return ScoredMatch{}, false
}

func assertUniqueIDs(t *testing.T, ms []ScoredMatch) {
	t.Helper()
	seen := map[string]bool{}
	for _, m := range ms {
		if seen[m.ID()] {
			t.Fatalf("duplicate id %q in %v", m.ID(), IDs(ms))
		}
		seen[m.ID()] = true
	}
}

func TestSkills_ShopifyScenario(t *testing.T) {
	e := newTestEngine()
	got := e.Skills("Build a Shopify store with checkout", -1)

	m, ok := find(got, "shopify-integration")
	if !ok {
		t.Fatalf("shopify-integration not matched: %v", IDs(got))
	}
	if m.MatchType != MatchKeyword {
		t.Fatalf("match type = %q, want keyword", m.MatchType)
	}
	// 0.5*(2/3) + 0.3*(1/2) + 0.2*(3/6) + 0.1 for the "shopify" id segment.
	want := 0.5*(2.0/3) + 0.3*0.5 + 0.2*0.5 + 0.1
	if !approx(m.Score, want) {
		t.Fatalf("score = %v, want %v", m.Score, want)
	}
	if m.Score <= 0.6 {
		t.Fatalf("score %v should exceed 0.6", m.Score)
	}
}

func TestSkills_ShopifyWithoutDescription(t *testing.T) {
	sk := shopifySkill()
	sk.Description = ""
	e := NewEngine(&registry.Registry{Skills: []registry.Skill{sk}}, DefaultConfig())

	m, ok := find(e.Skills("Build a Shopify store with checkout", -1), "shopify-integration")
	if !ok {
		t.Fatal("shopify-integration not matched")
	}
	// Keywords and name alone stay under 0.6; the description carries the
	// remaining proximity.
	want := 0.5*(2.0/3) + 0.3*0.5 + 0.1
	if !approx(m.Score, want) {
		t.Fatalf("score = %v, want %v", m.Score, want)
	}
	if m.Score >= 0.6 {
		t.Fatalf("score %v unexpectedly reaches 0.6 without a description", m.Score)
	}
}

func TestSkills_MentionBoostIsMonotonic(t *testing.T) {
	e := NewEngine(&registry.Registry{Skills: []registry.Skill{shopifySkill()}}, DefaultConfig())

	with, ok := find(e.Skills("help with shopify integration today", -1), "shopify-integration")
	if !ok {
		t.Fatal("expected match with embedded name")
	}
	without, ok := find(e.Skills("help with shopify today", -1), "shopify-integration")
	if !ok {
		t.Fatal("expected match without embedded name")
	}
	if with.Score <= without.Score {
		t.Fatalf("embedded name should raise score: %v <= %v", with.Score, without.Score)
	}
	if with.Score-without.Score < 0.6 {
		t.Fatalf("mention boost not applied: delta %v", with.Score-without.Score)
	}
}

func TestSkills_FuzzyFallbackRecoversTypo(t *testing.T) {
	e := newTestEngine()
	got := e.Skills("kubernetse", -1)
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %v", IDs(got))
	}
	m := got[0]
	if m.ID() != "kubernetes-deployment" || m.MatchType != MatchFuzzy {
		t.Fatalf("unexpected match %q (%s)", m.ID(), m.MatchType)
	}
	if !approx(m.Score, 0.8) {
		t.Fatalf("fuzzy score = %v, want 0.8", m.Score)
	}
}

func TestSkills_FallbackNeverDuplicatesKeyword(t *testing.T) {
	e := newTestEngine()
	got := e.Skills("docker", -1)
	assertUniqueIDs(t, got)

	m, ok := find(got, "docker")
	if !ok {
		t.Fatalf("docker not matched: %v", IDs(got))
	}
	if m.MatchType != MatchKeyword {
		t.Fatalf("keyword pass must win, got %s", m.MatchType)
	}
	// 0.5*(1/2) + 0.3*1 + 0.6 mention + 0.1 segment
	if !approx(m.Score, 1.25) {
		t.Fatalf("score = %v, want 1.25", m.Score)
	}
}

func TestSkills_Gibberish(t *testing.T) {
	e := newTestEngine()
	if got := e.Skills("zzzzz nonsense gibberish", -1); len(got) != 0 {
		t.Fatalf("expected no skills, got %v", IDs(got))
	}
	if got := e.Agents("zzzzz nonsense gibberish", -1); len(got) != 0 {
		t.Fatalf("expected no agents, got %v", IDs(got))
	}
}

func TestEmptyQuery(t *testing.T) {
	e := newTestEngine()
	res, err := e.All(context.Background(), "", DefaultLimits())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	for name, ms := range map[string][]ScoredMatch{
		"skills": res.Skills, "agents": res.Agents, "commands": res.Commands, "rules": res.Rules,
	} {
		if len(ms) != 0 {
			t.Fatalf("%s: expected empty, got %v", name, IDs(ms))
		}
	}
}

func TestEmptyRegistry(t *testing.T) {
	e := NewEngine(nil, DefaultConfig())
	q := "Build a Shopify store with checkout"
	if n := len(e.Skills(q, -1)) + len(e.Agents(q, -1)) + len(e.Commands(q, []string{"x"}, -1)) + len(e.Rules(q, -1)); n != 0 {
		t.Fatalf("expected no matches from empty registry, got %d", n)
	}
}

func TestDeterminism(t *testing.T) {
	e := newTestEngine()
	q := "deploy docker containers to kubernetes and review the diff"
	a, err := e.All(context.Background(), q, DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.All(context.Background(), q, DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ between calls:\n%+v\n%+v", a, b)
	}
}

func manySkills(n int) *registry.Registry {
	reg := &registry.Registry{}
	for i := 0; i < n; i++ {
		reg.Skills = append(reg.Skills, registry.Skill{
			Base:     registry.Base{ID: fmt.Sprintf("tool-%02d", i), Name: fmt.Sprintf("Tool %02d", i)},
			Keywords: []string{"docker"},
		})
	}
	return reg
}

func TestSkills_LimitInvariant(t *testing.T) {
	e := NewEngine(manySkills(15), DefaultConfig())
	for n := 0; n <= 16; n++ {
		got := e.Skills("docker", n)
		if len(got) > n {
			t.Fatalf("limit %d: got %d results", n, len(got))
		}
		assertUniqueIDs(t, got)
	}
	if got := e.Skills("docker", -1); len(got) != 10 {
		t.Fatalf("default skill limit: got %d, want 10", len(got))
	}
}

func TestSkills_TiesKeepRegistryOrder(t *testing.T) {
	e := NewEngine(manySkills(15), DefaultConfig())
	got := e.Skills("docker", 5)
	want := []string{"tool-00", "tool-01", "tool-02", "tool-03", "tool-04"}
	if !reflect.DeepEqual(IDs(got), want) {
		t.Fatalf("tie order = %v, want %v", IDs(got), want)
	}
}

func TestAgents_TaskSignals(t *testing.T) {
	e := newTestEngine()
	got := e.Agents("please review this pull request diff", -1)
	if len(got) == 0 || got[0].ID() != "code-reviewer" {
		t.Fatalf("expected code-reviewer first, got %v", IDs(got))
	}
	// review, diff and "pull request" hit; "pr" does not.
	if !approx(got[0].Score, 0.75) {
		t.Fatalf("score = %v, want 0.75", got[0].Score)
	}
}

func TestAgents_SegmentBoostOnce(t *testing.T) {
	e := newTestEngine()
	m, ok := find(e.Agents("ask the code reviewer", -1), "code-reviewer")
	if !ok {
		t.Fatal("code-reviewer not matched")
	}
	// "review" is inside "reviewer" (1/4) plus a single 0.15 boost even though
	// both "code" and "reviewer" appear.
	if !approx(m.Score, 0.25+0.15) {
		t.Fatalf("score = %v, want 0.4", m.Score)
	}
}

func TestAgents_Limit(t *testing.T) {
	reg := &registry.Registry{}
	cfg := DefaultConfig()
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("helper-%d", i)
		reg.Agents = append(reg.Agents, registry.Agent{Base: registry.Base{ID: id, Name: id}})
		cfg.AgentSignals[id] = []string{"deploy"}
	}
	e := NewEngine(reg, cfg)
	if got := e.Agents("deploy now", -1); len(got) != 3 {
		t.Fatalf("default agent limit: got %d, want 3", len(got))
	}
	if got := e.Agents("deploy now", 1); len(got) != 1 {
		t.Fatalf("explicit limit: got %d, want 1", len(got))
	}
}

func TestCommands_RelatedSkillBonus(t *testing.T) {
	e := newTestEngine()

	// Unrelated query: only the bonus can lift the command over 0.15.
	if _, ok := find(e.Commands("optimize database indexes", nil, -1), "frontend-dev"); ok {
		t.Fatal("frontend-dev should not match without related skill")
	}
	m, ok := find(e.Commands("optimize database indexes", []string{"shopify-integration"}, -1), "frontend-dev")
	if !ok {
		t.Fatal("frontend-dev should match via related skill")
	}
	if m.Score < 0.3 {
		t.Fatalf("bonus score = %v, want >= 0.3", m.Score)
	}

	without, ok := find(e.Commands("frontend server", nil, -1), "frontend-dev")
	if !ok {
		t.Fatal("frontend-dev should match by name")
	}
	with, ok := find(e.Commands("frontend server", []string{"shopify-integration"}, -1), "frontend-dev")
	if !ok {
		t.Fatal("frontend-dev should match by name")
	}
	if !approx(with.Score-without.Score, 0.3) {
		t.Fatalf("bonus delta = %v, want 0.3", with.Score-without.Score)
	}
}

func TestCommands_UnrelatedSkillNoBonus(t *testing.T) {
	e := newTestEngine()
	if _, ok := find(e.Commands("optimize database indexes", []string{"docker"}, -1), "frontend-dev"); ok {
		t.Fatal("unrelated skill must not boost frontend-dev")
	}
}

func TestCommands_SummaryWeighted(t *testing.T) {
	reg := &registry.Registry{Commands: []registry.Command{{
		Base: registry.Base{ID: "ship", Name: "ship", Summary: "release notes changelog"},
	}}}
	e := NewEngine(reg, DefaultConfig())
	got := e.Commands("write the changelog", nil, -1)
	if len(got) != 1 || got[0].MatchType != MatchKeyword {
		t.Fatalf("expected keyword match, got %+v", got)
	}
	// 0.7 * (1/3)
	if !approx(got[0].Score, 0.7/3) {
		t.Fatalf("score = %v, want %v", got[0].Score, 0.7/3)
	}
}

func TestRules_SignalOverlap(t *testing.T) {
	e := newTestEngine()
	got := e.Rules("rotate the leaked password", -1)
	if len(got) != 1 || got[0].ID() != "security" {
		t.Fatalf("expected only security, got %v", IDs(got))
	}
	if !approx(got[0].Score, 1.0/3) {
		t.Fatalf("score = %v, want 1/3", got[0].Score)
	}
}

func TestRules_Unbounded(t *testing.T) {
	reg := &registry.Registry{}
	cfg := DefaultConfig()
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("rule-%02d", i)
		reg.Rules = append(reg.Rules, registry.Rule{Base: registry.Base{ID: id, Name: id}})
		cfg.RuleSignals[id] = []string{"deploy"}
	}
	e := NewEngine(reg, cfg)
	if got := e.Rules("deploy now", -1); len(got) != 15 {
		t.Fatalf("rules should not be truncated by default, got %d", len(got))
	}
	if got := e.Rules("deploy now", 4); len(got) != 4 {
		t.Fatalf("explicit rule limit: got %d, want 4", len(got))
	}
}

func TestAll_MatchesSequentialComposition(t *testing.T) {
	e := newTestEngine()
	q := "Build a Shopify store with checkout and review the diff before we commit the password rotation"

	res, err := e.All(context.Background(), q, DefaultLimits())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	skills := e.Skills(q, -1)
	if !reflect.DeepEqual(res.Skills, skills) {
		t.Fatalf("skills differ")
	}
	if !reflect.DeepEqual(res.Commands, e.Commands(q, IDs(skills), -1)) {
		t.Fatalf("commands differ")
	}
	if !reflect.DeepEqual(res.Agents, e.Agents(q, -1)) {
		t.Fatalf("agents differ")
	}
	if !reflect.DeepEqual(res.Rules, e.Rules(q, -1)) {
		t.Fatalf("rules differ")
	}
	if _, ok := find(res.Commands, "frontend-dev"); !ok {
		t.Fatalf("frontend-dev should ride on the shopify skill: %v", IDs(res.Commands))
	}
}

func TestAll_LimitsZeroValue(t *testing.T) {
	e := newTestEngine()
	q := "Build a Shopify store with checkout and review the diff"

	res, err := e.All(context.Background(), q, Limits{})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if n := len(res.Skills) + len(res.Agents) + len(res.Commands) + len(res.Rules); n != 0 {
		t.Fatalf("zero Limits should request nothing, got %d results", n)
	}

	lim := DefaultLimits()
	lim.Skills = 1
	res, err = e.All(context.Background(), q, lim)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(res.Skills) != 1 || len(res.Agents) == 0 {
		t.Fatalf("overriding one field: skills=%v agents=%v", IDs(res.Skills), IDs(res.Agents))
	}
}

func TestAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestEngine().All(ctx, "docker", DefaultLimits()); err == nil {
		t.Fatal("expected context error")
	}
}

func TestEngine_ConcurrentQueries(t *testing.T) {
	e := newTestEngine()
	want, err := e.All(context.Background(), "docker containers", DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.All(context.Background(), "docker containers", DefaultLimits())
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- fmt.Errorf("concurrent result differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

// stubSearcher returns fixed hits regardless of input.
type stubSearcher struct{ hits []Hit }

func (s stubSearcher) Search([]Document, string) []Hit { return s.hits }

func TestWithSearcher_FiltersHits(t *testing.T) {
	e := NewEngine(testRegistry(), testConfig(), WithSearcher(stubSearcher{hits: []Hit{
		{Index: 0, Distance: 0},   // docker: already a keyword match
		{Index: 1, Distance: 0.3}, // kubernetes-deployment
		{Index: 2, Distance: 1},   // score 0, dropped
		{Index: 9, Distance: 0.1}, // out of range, dropped
	}}))
	got := e.Skills("docker", -1)
	assertUniqueIDs(t, got)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", IDs(got))
	}
	if got[0].ID() != "docker" || got[0].MatchType != MatchKeyword {
		t.Fatalf("docker should stay a keyword match: %+v", got[0])
	}
	if got[1].ID() != "kubernetes-deployment" || got[1].MatchType != MatchFuzzy || !approx(got[1].Score, 0.7) {
		t.Fatalf("unexpected fallback match: %+v", got[1])
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.Skill.KeywordWeight = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for negative weight")
	}
	bad = DefaultConfig()
	bad.FuzzyThreshold = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for zero threshold")
	}
	bad = DefaultConfig()
	bad.Agent.Limit = -2
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for limit below Unlimited")
	}
}
