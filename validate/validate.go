// Package validate applies a domain's declarative rules to resolved field
// values: field-level checks per value, cross-field relations over a form,
// and domain-wide compliance predicates, in that order.
//
// Outcomes are data, not errors. Every check yields a severity-tagged
// Result, every Result lands on an append-only audit trail, and a form run
// ends in a ComplianceReport whose status reflects the critical violations
// found. Only configuration problems (unknown domain) surface as errors.
package validate

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/knowledge"
)

// Stage names the validation layer that produced a Result.
type Stage string

const (
	StageField      Stage = "field"
	StageCrossField Stage = "cross_field"
	StageCompliance Stage = "compliance"
)

// FieldState tracks one field through the validation state machine.
type FieldState string

const (
	StateUnvalidated  FieldState = "UNVALIDATED"
	StateFieldValid   FieldState = "FIELD_VALID"
	StateFieldInvalid FieldState = "FIELD_INVALID"
	StateCrossValid   FieldState = "CROSS_VALID"
	StateCrossInvalid FieldState = "CROSS_INVALID"
)

// Status is the overall outcome of a form validation.
type Status string

const (
	StatusCompliant    Status = "COMPLIANT"
	StatusNonCompliant Status = "NON_COMPLIANT"
)

// Result is the outcome of one rule check against one field (or, for
// compliance rules, against the form as a whole).
type Result struct {
	Field     string             `json:"field,omitempty"`
	Rule      string             `json:"rule"`
	Stage     Stage              `json:"stage"`
	Valid     bool               `json:"valid"`
	Severity  fieldwise.Severity `json:"severity"`
	Message   string             `json:"message"`
	Timestamp time.Time          `json:"timestamp"`
}

// ComplianceReport aggregates a full form validation run. Trail holds the
// same results as an append-only audit record with stable entry IDs.
type ComplianceReport struct {
	Domain  knowledge.Domain      `json:"domain"`
	Results []Result              `json:"results"`
	States  map[string]FieldState `json:"states"`
	Status  Status                `json:"status"`
	Trail   *Trail                `json:"-"`
}

// CriticalViolations returns the invalid results carrying CRITICAL severity.
func (r *ComplianceReport) CriticalViolations() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Valid && res.Severity == fieldwise.SeverityCritical {
			out = append(out, res)
		}
	}
	return out
}

// Engine interprets one domain's rule set.
type Engine struct {
	domain knowledge.Domain
	kb     *knowledge.KnowledgeBase
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger for per-rule debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the timestamp source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an Engine for domain, failing with
// knowledge.ErrUnknownDomain when the domain is not registered.
func NewEngine(reg *knowledge.Registry, domain knowledge.Domain, opts ...Option) (*Engine, error) {
	kb, err := reg.Get(domain)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		domain: domain,
		kb:     kb,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ValidateField runs every field-level rule declared for field against
// value. Rule lookup goes through term normalization, so "sale price" is
// checked with the Purchase Price rules. A field with no declared rules
// yields no results. Passing checks carry INFO severity; failing checks
// carry the rule's declared severity.
func (e *Engine) ValidateField(field, value string) []Result {
	rules := e.kb.FieldRules(field)
	results := make([]Result, 0, len(rules))
	for _, rule := range rules {
		results = append(results, e.checkFieldRule(rule, field, value))
	}
	return results
}

func (e *Engine) checkFieldRule(rule knowledge.Rule, field, value string) Result {
	valid, message := evalFieldRule(rule, value)
	res := e.result(field, rule, StageField, valid, message)
	e.logger.Debug("field rule checked",
		"field", field, "rule", rule.Name, "valid", valid)
	return res
}

// result builds a Result with the severity convention applied: a passing
// check is informational regardless of what the rule declares on violation.
func (e *Engine) result(field string, rule knowledge.Rule, stage Stage, valid bool, message string) Result {
	severity := fieldwise.SeverityInfo
	if !valid {
		severity = rule.Severity
	}
	return Result{
		Field:     field,
		Rule:      rule.Name,
		Stage:     stage,
		Valid:     valid,
		Severity:  severity,
		Message:   message,
		Timestamp: e.now(),
	}
}

// evalFieldRule interprets one field-level rule against a raw value.
func evalFieldRule(rule knowledge.Rule, value string) (bool, string) {
	switch rule.Kind {
	case knowledge.RuleRegex:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return false, fmt.Sprintf("rule pattern does not compile: %v", err)
		}
		if !re.MatchString(strings.TrimSpace(value)) {
			return false, violationMessage(rule, fmt.Sprintf("value %q does not match required format", value))
		}
		return true, fmt.Sprintf("value matches pattern %s", rule.Pattern)

	case knowledge.RuleDate:
		if _, ok := parseDate(value, rule.Formats); !ok {
			return false, violationMessage(rule, fmt.Sprintf("value %q is not a date in any accepted format", value))
		}
		return true, "value parses as a date"

	case knowledge.RuleRange:
		n, err := parseAmount(value)
		if err != nil {
			return false, violationMessage(rule, fmt.Sprintf("value %q is not numeric", value))
		}
		if rule.Min != nil && n < *rule.Min {
			return false, violationMessage(rule, fmt.Sprintf("value %v is below the minimum %v", n, *rule.Min))
		}
		if rule.Max != nil && n > *rule.Max {
			return false, violationMessage(rule, fmt.Sprintf("value %v is above the maximum %v", n, *rule.Max))
		}
		return true, fmt.Sprintf("value %v is within bounds", n)
	}
	return false, fmt.Sprintf("unsupported field rule kind %q", rule.Kind)
}

func violationMessage(rule knowledge.Rule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

// parseAmount parses a currency-or-plain numeric string. Currency symbols
// and thousands separators are stripped; the sign is preserved, so "-$5"
// parses to -5 and can still fail a non-negative range rule.
func parseAmount(value string) (float64, error) {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

// parseDate tries each accepted layout in order.
func parseDate(value string, layouts []string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
