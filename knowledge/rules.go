package knowledge

import (
	"fmt"
	"regexp"

	"github.com/fieldwise/fieldwise"
)

// RuleKind enumerates the declarative rule kinds. The set is closed: the
// validation engine switches over it exhaustively.
type RuleKind string

const (
	// RuleRegex matches the field value against Pattern.
	RuleRegex RuleKind = "regex"
	// RuleDate parses the field value against the Formats list (Go layouts);
	// the value is invalid if no layout parses.
	RuleDate RuleKind = "date"
	// RuleRange checks the numeric field value against inclusive Min/Max
	// bounds. Currency symbols and thousands separators are stripped before
	// parsing; non-numeric input fails the rule.
	RuleRange RuleKind = "range"
	// RuleCrossField relates two or more fields of the same form; see
	// CrossRelation.
	RuleCrossField RuleKind = "cross_field"
	// RuleCompliance is a domain-wide predicate over the full field set; see
	// ComplianceCheck.
	RuleCompliance RuleKind = "compliance"
)

// FieldLevel reports whether the kind applies to a single field value.
func (k RuleKind) FieldLevel() bool {
	switch k {
	case RuleRegex, RuleDate, RuleRange:
		return true
	}
	return false
}

// CrossRelation enumerates the relations a cross-field rule can declare
// between Fields, in order.
type CrossRelation string

const (
	// CrossLessOrEqual: value(Fields[0]) <= value(Fields[1]).
	CrossLessOrEqual CrossRelation = "less_or_equal"
	// CrossMaxRatio: value(Fields[0]) / value(Fields[1]) <= Ratio.
	CrossMaxRatio CrossRelation = "max_ratio"
	// CrossDifferenceEquals: value(Fields[0]) - value(Fields[1]) ==
	// value(Fields[2]) within Tolerance.
	CrossDifferenceEquals CrossRelation = "difference_equals"
	// CrossDateBefore: date(Fields[0]) strictly precedes date(Fields[1]).
	CrossDateBefore CrossRelation = "date_before"
	// CrossBothPresent: every listed field has a non-empty value.
	CrossBothPresent CrossRelation = "both_present"
)

var crossFieldArity = map[CrossRelation]int{
	CrossLessOrEqual:      2,
	CrossMaxRatio:         2,
	CrossDifferenceEquals: 3,
	CrossDateBefore:       2,
	CrossBothPresent:      2,
}

// ComplianceCheck enumerates the compliance predicate kinds.
type ComplianceCheck string

const (
	// ComplianceRequiredFields: every listed field must be present.
	ComplianceRequiredFields ComplianceCheck = "required_fields"
	// ComplianceAnyPresent: at least one listed field must be present.
	ComplianceAnyPresent ComplianceCheck = "any_present"
	// ComplianceDisallowedPattern: no field value may match Pattern
	// (disallowed identifiers for the domain, e.g. raw SSNs).
	ComplianceDisallowedPattern ComplianceCheck = "disallowed_pattern"
)

// Rule is one declarative validation constraint. Rules are data, not code:
// the validation engine interprets them. Which parameters apply depends on
// Kind; validate enforces the combinations at registration time.
type Rule struct {
	Name     string             `yaml:"name"`
	Kind     RuleKind           `yaml:"kind"`
	Field    string             `yaml:"field,omitempty"`    // field-level rules
	Fields   []string           `yaml:"fields,omitempty"`   // cross-field and compliance rules
	Pattern  string             `yaml:"pattern,omitempty"`  // regex, disallowed_pattern
	Formats  []string           `yaml:"formats,omitempty"`  // date (Go reference layouts)
	Min      *float64           `yaml:"min,omitempty"`      // range, inclusive
	Max      *float64           `yaml:"max,omitempty"`      // range, inclusive
	Relation CrossRelation      `yaml:"relation,omitempty"` // cross_field
	Ratio    float64            `yaml:"ratio,omitempty"`    // max_ratio
	Tolerance float64           `yaml:"tolerance,omitempty"` // difference_equals
	Check    ComplianceCheck    `yaml:"check,omitempty"`    // compliance
	Severity fieldwise.Severity `yaml:"severity"`           // declared severity on violation
	// Mandatory marks a cross-field rule whose referenced fields are
	// required: their absence is a violation at the rule's severity instead
	// of an informational skip.
	Mandatory bool   `yaml:"mandatory,omitempty"`
	Message   string `yaml:"message,omitempty"`
}

// validate checks rule shape at registration time. Malformed rule definitions
// are fatal configuration errors, unlike data-quality failures at evaluation
// time.
func (r Rule) validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("invalid severity %q", r.Severity)
	}
	switch r.Kind {
	case RuleRegex:
		if r.Field == "" {
			return fmt.Errorf("regex rule needs a field")
		}
		if _, err := regexp.Compile(r.Pattern); r.Pattern == "" || err != nil {
			return fmt.Errorf("bad pattern %q: %v", r.Pattern, err)
		}
	case RuleDate:
		if r.Field == "" || len(r.Formats) == 0 {
			return fmt.Errorf("date rule needs a field and at least one format")
		}
	case RuleRange:
		if r.Field == "" {
			return fmt.Errorf("range rule needs a field")
		}
		if r.Min == nil && r.Max == nil {
			return fmt.Errorf("range rule needs a bound")
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return fmt.Errorf("range rule min %v exceeds max %v", *r.Min, *r.Max)
		}
	case RuleCrossField:
		arity, ok := crossFieldArity[r.Relation]
		if !ok {
			return fmt.Errorf("unknown cross-field relation %q", r.Relation)
		}
		if len(r.Fields) < arity {
			return fmt.Errorf("relation %q needs %d fields, got %d", r.Relation, arity, len(r.Fields))
		}
		if r.Relation == CrossMaxRatio && r.Ratio <= 0 {
			return fmt.Errorf("max_ratio rule needs a positive ratio")
		}
	case RuleCompliance:
		switch r.Check {
		case ComplianceRequiredFields, ComplianceAnyPresent:
			if len(r.Fields) == 0 {
				return fmt.Errorf("compliance check %q needs fields", r.Check)
			}
		case ComplianceDisallowedPattern:
			if _, err := regexp.Compile(r.Pattern); r.Pattern == "" || err != nil {
				return fmt.Errorf("bad pattern %q: %v", r.Pattern, err)
			}
		default:
			return fmt.Errorf("unknown compliance check %q", r.Check)
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	return nil
}

// floatPtr is a convenience for inline rule literals.
func floatPtr(v float64) *float64 { return &v }
