// Package match ranks registry entries against a free-form request.
//
// Each category runs a precise pass (keyword overlap, field proximity and
// direct-mention boosts, weighted per category) and an approximate fallback
// pass that only adds entries the precise pass missed. An Engine holds an
// immutable registry snapshot and is safe for concurrent use.
package match

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/kamusis/axon-context/internal/registry"
	"golang.org/x/sync/errgroup"
)

// MatchType records which pass produced a result.
type MatchType string

const (
	MatchKeyword MatchType = "keyword"
	MatchFuzzy   MatchType = "fuzzy"
)

// ScoredMatch is one ranked entry. Keyword scores may exceed 1 through
// boosts; fuzzy scores are in (0, 1].
type ScoredMatch struct {
	Entry     registry.Entry
	Score     float64
	MatchType MatchType
}

// ID returns the entry id.
func (m ScoredMatch) ID() string {
	if m.Entry == nil {
		return ""
	}
	return m.Entry.Common().ID
}

// IDs returns the ids of ms in order.
func IDs(ms []ScoredMatch) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID())
	}
	return out
}

// Limits caps each category in All. Negative values select the configured
// category limit and zero requests nothing, so the zero Limits{} returns four
// empty lists. Start from DefaultLimits and override single fields.
type Limits struct {
	Skills   int
	Agents   int
	Commands int
	Rules    int
}

// DefaultLimits selects the configured limit for every category.
func DefaultLimits() Limits {
	return Limits{Skills: -1, Agents: -1, Commands: -1, Rules: -1}
}

// Result holds the four ranked lists for one query.
type Result struct {
	Query    string
	Skills   []ScoredMatch
	Agents   []ScoredMatch
	Commands []ScoredMatch
	Rules    []ScoredMatch
}

// prepared caches the tokenized fields of one entry.
type prepared struct {
	idLower   string
	nameLower string
	name      []string
	desc      []string
	summary   []string
	signals   []string
	segments  []string
}

// Engine matches queries against one registry snapshot.
type Engine struct {
	reg      *registry.Registry
	cfg      Config
	searcher Searcher
	logger   *slog.Logger

	skills   []prepared
	agents   []prepared
	commands []prepared
	rules    []prepared

	skillDocs   []Document
	agentDocs   []Document
	commandDocs []Document
	ruleDocs    []Document
}

// Option configures an Engine.
type Option func(*Engine)

// WithSearcher replaces the fallback searcher.
func WithSearcher(s Searcher) Option {
	return func(e *Engine) {
		if s != nil {
			e.searcher = s
		}
	}
}

// WithLogger sets the debug logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine prepares reg for matching. reg must not be mutated afterwards;
// a nil reg behaves as an empty registry.
func NewEngine(reg *registry.Registry, cfg Config, opts ...Option) *Engine {
	if reg == nil {
		reg = &registry.Registry{}
	}
	e := &Engine{
		reg:    reg,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	e.searcher = NewEditDistanceSearcher(cfg.FuzzyThreshold)
	for _, o := range opts {
		o(e)
	}

	for _, s := range reg.Skills {
		p := prepare(s.Base, e.cfg.Skill.SegmentMinLen)
		p.signals = normalizeSignals(s.Keywords)
		e.skills = append(e.skills, p)
		e.skillDocs = append(e.skillDocs, document(s.Base, e.cfg.Skill.Fuzzy, strings.Join(s.Keywords, " ")))
	}
	for _, a := range reg.Agents {
		p := prepare(a.Base, e.cfg.Agent.SegmentMinLen)
		p.signals = normalizeSignals(e.cfg.AgentSignals[a.ID])
		e.agents = append(e.agents, p)
		e.agentDocs = append(e.agentDocs, document(a.Base, e.cfg.Agent.Fuzzy, a.Role))
	}
	for _, c := range reg.Commands {
		e.commands = append(e.commands, prepare(c.Base, 0))
		e.commandDocs = append(e.commandDocs, document(c.Base, e.cfg.Command.Fuzzy, c.Summary))
	}
	for _, r := range reg.Rules {
		p := prepare(r.Base, 0)
		p.signals = normalizeSignals(e.cfg.RuleSignals[r.ID])
		e.rules = append(e.rules, p)
		e.ruleDocs = append(e.ruleDocs, document(r.Base, e.cfg.Rule.Fuzzy, strings.Join(e.cfg.RuleSignals[r.ID], " ")))
	}
	return e
}

func prepare(b registry.Base, segmentMinLen int) prepared {
	p := prepared{
		idLower:   lower(b.ID),
		nameLower: lower(b.Name),
		name:      Tokenize(b.Name),
		desc:      Tokenize(b.Description),
		summary:   Tokenize(b.Summary),
	}
	if segmentMinLen > 0 {
		p.segments = idSegments(p.idLower, segmentMinLen)
	}
	return p
}

func document(b registry.Base, w FieldWeights, extra string) Document {
	return Document{Fields: []Field{
		{Text: b.Name, Weight: w.Name},
		{Text: b.Description, Weight: w.Description},
		{Text: extra, Weight: w.Extra},
	}}
}

// Registry returns the snapshot the engine was built from.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// query is a request prepared once per call.
type query struct {
	raw    string
	lower  string
	tokens []string
}

func newQuery(s string) query {
	return query{raw: s, lower: lower(s), tokens: Tokenize(s)}
}

func resolveLimit(limit, configured int) int {
	if limit < 0 {
		return configured
	}
	return limit
}

// fallback runs the searcher over docs and converts hits to fuzzy matches.
func (e *Engine) fallback(q query, docs []Document, entry func(int) registry.Entry) []ScoredMatch {
	if len(docs) == 0 || len(q.tokens) == 0 {
		return nil
	}
	var out []ScoredMatch
	for _, h := range e.searcher.Search(docs, q.raw) {
		if h.Index < 0 || h.Index >= len(docs) {
			continue
		}
		score := 1 - h.Distance
		if score <= 0 || score > 1 {
			continue
		}
		out = append(out, ScoredMatch{Entry: entry(h.Index), Score: score, MatchType: MatchFuzzy})
	}
	return out
}

func (e *Engine) logPass(kind registry.Kind, q query, keyword, fuzzy, kept int) {
	e.logger.Debug("match pass",
		"kind", kind,
		"tokens", len(q.tokens),
		"keyword", keyword,
		"fuzzy", fuzzy,
		"kept", kept,
	)
}

// All runs every category for one query. Skills are matched before commands
// so their ids feed the command bonus; agents and rules run concurrently.
// Pass DefaultLimits() for the configured limits; a zero field disables its
// category.
func (e *Engine) All(ctx context.Context, q string, limits Limits) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &Result{Query: q}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Skills = e.Skills(q, limits.Skills)
		if err := gctx.Err(); err != nil {
			return err
		}
		res.Commands = e.Commands(q, IDs(res.Skills), limits.Commands)
		return nil
	})
	g.Go(func() error {
		res.Agents = e.Agents(q, limits.Agents)
		return nil
	})
	g.Go(func() error {
		res.Rules = e.Rules(q, limits.Rules)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
