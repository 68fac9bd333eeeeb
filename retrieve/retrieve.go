// Package retrieve resolves a form field to a value from a set of documents
// using an ordered cascade of strategies.
//
// Four strategies run in a fixed order: lexical token-set similarity, entity
// pattern extraction, domain-rule lookup against the knowledge base, and a
// keyword-overlap fallback. The cascade short-circuits at the first strategy
// whose confidence clears its acceptance threshold; otherwise the highest
// confidence attempt wins, with ties going to the earlier (more
// domain-informed) strategy. The keyword fallback always produces a result,
// so Retrieve never fails: a confidence of 0 with no value signals "no
// match", which callers treat as data quality, not an error.
package retrieve

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/knowledge"
)

// Strategy identifies which cascade step produced a match.
type Strategy string

const (
	StrategyLexical    Strategy = "lexical"
	StrategyEntity     Strategy = "entity"
	StrategyDomainRule Strategy = "domain_rule"
	StrategyKeyword    Strategy = "keyword"
)

// Match is the result of one field retrieval. Matches are created fresh per
// call and never mutated after return.
type Match struct {
	Field      string           `json:"field"`
	Value      string           `json:"value,omitempty"`
	Found      bool             `json:"found"`
	Confidence float64          `json:"confidence"`
	Strategy   Strategy         `json:"strategy"`
	Reasoning  string           `json:"reasoning"`
	Domain     knowledge.Domain `json:"domain"`
	DocumentID string           `json:"document_id,omitempty"`
}

// Config holds the cascade's tunable thresholds. Thresholds are acceptance
// gates per strategy: a strategy whose confidence reaches its threshold ends
// the cascade. Defaults follow the shipped behavior but carry no deeper
// derivation; treat them as starting points.
type Config struct {
	// AcceptThreshold gates the lexical strategy.
	AcceptThreshold float64 `yaml:"accept_threshold"`
	// EntityThreshold gates the entity strategy.
	EntityThreshold float64 `yaml:"entity_threshold"`
	// DomainRuleThreshold gates the domain-rule strategy.
	DomainRuleThreshold float64 `yaml:"domain_rule_threshold"`
	// KeywordThreshold gates the keyword fallback.
	KeywordThreshold float64 `yaml:"keyword_threshold"`
	// DomainRuleConfidence is the fixed confidence assigned when the
	// knowledge base's canonical term for a field appears in a document.
	// Related-term-only hits score 90% of it.
	DomainRuleConfidence float64 `yaml:"domain_rule_confidence"`
	// ValueFloor is the minimum keyword similarity at which the fallback
	// still extracts a value. Below it a zero-value match is returned.
	ValueFloor float64 `yaml:"value_floor"`
}

// DefaultConfig returns the default cascade thresholds.
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:      0.75,
		EntityThreshold:      0.70,
		DomainRuleThreshold:  0.65,
		KeywordThreshold:     0.55,
		DomainRuleConfidence: 0.72,
		ValueFloor:           0.20,
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if cfg.AcceptThreshold <= 0 {
		cfg.AcceptThreshold = def.AcceptThreshold
	}
	if cfg.EntityThreshold <= 0 {
		cfg.EntityThreshold = def.EntityThreshold
	}
	if cfg.DomainRuleThreshold <= 0 {
		cfg.DomainRuleThreshold = def.DomainRuleThreshold
	}
	if cfg.KeywordThreshold <= 0 {
		cfg.KeywordThreshold = def.KeywordThreshold
	}
	if cfg.DomainRuleConfidence <= 0 {
		cfg.DomainRuleConfidence = def.DomainRuleConfidence
	}
	if cfg.ValueFloor <= 0 {
		cfg.ValueFloor = def.ValueFloor
	}
	return cfg
}

// candidate is one strategy's proposal: a tagged result rather than a
// sentinel confidence, so "attempted but found nothing" stays distinct from
// "not attempted".
type candidate struct {
	value      string
	found      bool
	confidence float64
	reasoning  string
	docID      string
}

// Retriever runs the strategy cascade for one domain.
type Retriever struct {
	domain knowledge.Domain
	kb     *knowledge.KnowledgeBase
	cfg    Config
	logger *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithConfig overrides the default thresholds. Zero fields keep defaults.
func WithConfig(cfg Config) Option {
	return func(r *Retriever) { r.cfg = normalizeConfig(cfg) }
}

// WithLogger attaches a logger for per-strategy debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a Retriever for domain, failing with knowledge.ErrUnknownDomain
// when the domain is not registered.
func New(reg *knowledge.Registry, domain knowledge.Domain, opts ...Option) (*Retriever, error) {
	kb, err := reg.Get(domain)
	if err != nil {
		return nil, err
	}
	r := &Retriever{
		domain: domain,
		kb:     kb,
		cfg:    DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retrieve resolves field against documents. It always returns a Match; a
// zero confidence with Found=false means nothing usable was present.
// Documents are consulted in the order given, so callers wanting ranked
// disambiguation should order them via the field mapper first.
func (r *Retriever) Retrieve(field fieldwise.Field, docs []fieldwise.Document) Match {
	steps := []struct {
		strategy  Strategy
		threshold float64
		run       func(fieldwise.Field, []fieldwise.Document) (candidate, bool)
	}{
		{StrategyLexical, r.cfg.AcceptThreshold, r.lexicalMatch},
		{StrategyEntity, r.cfg.EntityThreshold, r.entityMatch},
		{StrategyDomainRule, r.cfg.DomainRuleThreshold, r.domainRuleMatch},
		{StrategyKeyword, r.cfg.KeywordThreshold, r.keywordMatch},
	}

	best := Match{
		Field:      field.Name,
		Strategy:   StrategyKeyword,
		Reasoning:  "no strategy produced a candidate",
		Domain:     r.domain,
		Confidence: 0,
	}
	haveBest := false

	for _, step := range steps {
		cand, attempted := step.run(field, docs)
		if !attempted {
			continue
		}
		match := r.toMatch(field, step.strategy, cand)
		r.logger.Debug("strategy attempted",
			"field", field.Name,
			"strategy", step.strategy,
			"confidence", match.Confidence,
			"found", match.Found)

		if match.Found && match.Confidence >= step.threshold {
			return match
		}
		// Strictly greater: equal confidence keeps the earlier strategy.
		if !haveBest || match.Confidence > best.Confidence {
			best = match
			haveBest = true
		}
	}
	return best
}

// toMatch assembles and clamps a strategy candidate into a Match.
func (r *Retriever) toMatch(field fieldwise.Field, strategy Strategy, cand candidate) Match {
	conf := cand.confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	reasoning := cand.reasoning
	if reasoning == "" {
		reasoning = fmt.Sprintf("%s strategy produced no usable candidate", strategy)
	}
	return Match{
		Field:      field.Name,
		Value:      cand.value,
		Found:      cand.found && cand.value != "",
		Confidence: conf,
		Strategy:   strategy,
		Reasoning:  reasoning,
		Domain:     r.domain,
		DocumentID: cand.docID,
	}
}
