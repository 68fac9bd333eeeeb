// Package engine wires the pipeline together: rank candidate documents per
// field, retrieve each field's value, then validate the resolved form,
// returning matches, validation results and a compliance report in one
// pass. It is the caller the concurrency model describes: independent field
// retrievals run in parallel, the registry is shared read-only state.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/fieldmap"
	"github.com/fieldwise/fieldwise/knowledge"
	"github.com/fieldwise/fieldwise/metrics"
	"github.com/fieldwise/fieldwise/retrieve"
	"github.com/fieldwise/fieldwise/validate"
)

// Request is one extraction job: resolve every field from the documents
// under one domain's knowledge.
type Request struct {
	Domain    knowledge.Domain     `json:"domain"`
	Fields    []fieldwise.Field    `json:"fields"`
	Documents []fieldwise.Document `json:"documents"`
}

// Result is the full pipeline output. Matches are index-aligned with the
// request's fields.
type Result struct {
	Domain      knowledge.Domain           `json:"domain"`
	Matches     []retrieve.Match           `json:"matches"`
	Validations []validate.Result          `json:"validations"`
	Compliance  *validate.ComplianceReport `json:"compliance"`
	Audit       *validate.Trail            `json:"-"`
}

// Summary renders a one-line account of the run for logs.
func (r *Result) Summary() string {
	found := 0
	for _, m := range r.Matches {
		if m.Found {
			found++
		}
	}
	critical := 0
	if r.Compliance != nil {
		critical = len(r.Compliance.CriticalViolations())
	}
	status := validate.StatusCompliant
	if r.Compliance != nil {
		status = r.Compliance.Status
	}
	return fmt.Sprintf("%d/%d fields resolved, %d critical violations, %s",
		found, len(r.Matches), critical, status)
}

// Engine runs extraction requests against a shared knowledge registry.
type Engine struct {
	registry *knowledge.Registry
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig overrides the default pipeline configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = normalizeConfig(cfg) }
}

// WithLogger attaches a logger. The same logger is handed to every pipeline
// stage.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches pipeline instrumentation. Nil metrics are a no-op.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New builds an Engine over registry.
func New(registry *knowledge.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		cfg:      DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process runs the full pipeline for one request. An unregistered domain is
// the only fatal error; everything downstream is reported as structured
// results, so a form with failing fields still yields a complete Result.
func (e *Engine) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	retriever, err := retrieve.New(e.registry, req.Domain,
		retrieve.WithConfig(e.cfg.Retrieval), retrieve.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("building retriever: %w", err)
	}
	mapper, err := fieldmap.New(e.registry, req.Domain,
		fieldmap.WithWeights(e.cfg.Weights), fieldmap.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("building mapper: %w", err)
	}
	validator, err := validate.NewEngine(e.registry, req.Domain,
		validate.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("building validator: %w", err)
	}

	matches := make([]retrieve.Match, len(req.Fields))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, field := range req.Fields {
		i, field := i, field
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			matches[i] = e.resolveField(retriever, mapper, field, req.Documents)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	form := make(map[string]string, len(matches))
	for _, match := range matches {
		if match.Found {
			form[match.Field] = match.Value
		}
	}
	report := validator.ValidateForm(form)
	for _, res := range report.Results {
		e.metrics.ObserveValidation(string(res.Stage), string(res.Severity), res.Valid)
	}

	result := &Result{
		Domain:      req.Domain,
		Matches:     matches,
		Validations: report.Results,
		Compliance:  report,
		Audit:       report.Trail,
	}
	e.metrics.ObserveProcessLatency(time.Since(start))
	e.logger.Info("request processed",
		"domain", req.Domain,
		"fields", len(req.Fields),
		"documents", len(req.Documents),
		"summary", result.Summary())
	return result, nil
}

// resolveField ranks the documents for one field and retrieves its value
// from the best candidates. When ranking drops every document the original
// order is kept, so the keyword fallback still sees the full set.
func (e *Engine) resolveField(retriever *retrieve.Retriever, mapper *fieldmap.Mapper, field fieldwise.Field, docs []fieldwise.Document) retrieve.Match {
	ranking := mapper.Rank(field, docs, e.cfg.TopK)
	if ranking.Ambiguous() {
		e.metrics.IncrementAmbiguous()
		e.logger.Debug("ambiguous ranking",
			"field", field.Name, "tied", len(ranking.Top()))
	}
	ordered := docs
	if len(ranking.Candidates) > 0 {
		ordered = make([]fieldwise.Document, len(ranking.Candidates))
		for i, cand := range ranking.Candidates {
			ordered[i] = cand.Document
		}
	}

	match := retriever.Retrieve(field, ordered)
	e.metrics.ObserveRetrieval(string(match.Strategy), match.Found, match.Confidence)
	return match
}
