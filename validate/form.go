package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/knowledge"
)

// ValidateForm runs the full state machine over a form's resolved fields:
// field-level rules per value, then cross-field relations, then compliance
// predicates over the whole field set. Field names are normalized through
// the knowledge base before lookup, so a form keyed "Seller" satisfies
// rules written against "Grantor".
//
// Every check lands on the report's audit trail in execution order. The
// report is NON_COMPLIANT exactly when a CRITICAL check failed.
func (e *Engine) ValidateForm(form map[string]string) *ComplianceReport {
	report := &ComplianceReport{
		Domain: e.domain,
		States: make(map[string]FieldState, len(form)),
		Trail:  NewTrail(),
	}

	// Canonical view of the form. First writer wins on alias collisions.
	values := make(map[string]string, len(form))
	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		canonical := e.kb.NormalizeTerm(name)
		if _, dup := values[canonical]; !dup {
			values[canonical] = form[name]
		}
		report.States[canonical] = StateUnvalidated
	}

	record := func(res Result) {
		report.Results = append(report.Results, res)
		report.Trail.Record(res)
	}

	// Stage 1: field-level rules.
	canonicals := make([]string, 0, len(values))
	for canonical := range values {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)
	for _, canonical := range canonicals {
		state := StateFieldValid
		for _, rule := range e.kb.FieldRules(canonical) {
			res := e.checkFieldRule(rule, canonical, values[canonical])
			record(res)
			if !res.Valid {
				state = StateFieldInvalid
			}
		}
		report.States[canonical] = state
	}

	// Stage 2: cross-field relations, only across fields that survived
	// stage 1.
	for _, rule := range e.kb.CrossFieldRules() {
		res, refs := e.checkCrossRule(rule, values, report.States)
		record(res)
		for _, canonical := range refs {
			if report.States[canonical] != StateFieldValid {
				continue
			}
			if res.Valid {
				report.States[canonical] = StateCrossValid
			} else {
				report.States[canonical] = StateCrossInvalid
			}
		}
	}

	// Stage 3: compliance predicates over the whole field set.
	for _, rule := range e.kb.ComplianceRules() {
		record(e.checkComplianceRule(rule, values))
	}

	report.Status = StatusCompliant
	for _, res := range report.Results {
		if !res.Valid && res.Severity == fieldwise.SeverityCritical {
			report.Status = StatusNonCompliant
			break
		}
	}
	e.logger.Debug("form validated",
		"domain", e.domain, "fields", len(values),
		"checks", len(report.Results), "status", report.Status)
	return report
}

// checkCrossRule evaluates one cross-field rule. It also returns the
// canonical names of the referenced fields so the caller can advance their
// states. A referenced field that is absent downgrades the check to an
// informational skip unless the rule declares its fields mandatory; a field
// that failed stage 1 always downgrades, since its value is already flagged.
func (e *Engine) checkCrossRule(rule knowledge.Rule, values map[string]string, states map[string]FieldState) (Result, []string) {
	refs := make([]string, 0, len(rule.Fields))
	for _, name := range rule.Fields {
		refs = append(refs, e.kb.NormalizeTerm(name))
	}
	label := strings.Join(refs, ", ")

	for _, canonical := range refs {
		if values[canonical] == "" {
			if rule.Mandatory {
				return e.result(label, rule, StageCrossField, false,
					violationMessage(rule, fmt.Sprintf("required field %q is missing", canonical))), refs
			}
			return e.result(label, rule, StageCrossField, true,
				fmt.Sprintf("skipped: field %q absent", canonical)), nil
		}
	}
	for _, canonical := range refs {
		if states[canonical] == StateFieldInvalid {
			return e.result(label, rule, StageCrossField, true,
				fmt.Sprintf("skipped: field %q already failed field-level checks", canonical)), nil
		}
	}

	valid, message := e.evalCrossRule(rule, refs, values)
	return e.result(label, rule, StageCrossField, valid, message), refs
}

func (e *Engine) evalCrossRule(rule knowledge.Rule, refs []string, values map[string]string) (bool, string) {
	switch rule.Relation {
	case knowledge.CrossLessOrEqual:
		a, errA := parseAmount(values[refs[0]])
		b, errB := parseAmount(values[refs[1]])
		if errA != nil || errB != nil {
			return false, violationMessage(rule, "relation needs numeric values on both sides")
		}
		if a > b {
			return false, violationMessage(rule, fmt.Sprintf("%s (%v) exceeds %s (%v)", refs[0], a, refs[1], b))
		}
		return true, fmt.Sprintf("%v <= %v", a, b)

	case knowledge.CrossMaxRatio:
		a, errA := parseAmount(values[refs[0]])
		b, errB := parseAmount(values[refs[1]])
		if errA != nil || errB != nil {
			return false, violationMessage(rule, "relation needs numeric values on both sides")
		}
		if b == 0 {
			return false, violationMessage(rule, fmt.Sprintf("%s is zero, ratio undefined", refs[1]))
		}
		if ratio := a / b; ratio > rule.Ratio {
			return false, violationMessage(rule, fmt.Sprintf("ratio %.4f exceeds the allowed %.4f", ratio, rule.Ratio))
		}
		return true, fmt.Sprintf("ratio within %.4f", rule.Ratio)

	case knowledge.CrossDifferenceEquals:
		a, errA := parseAmount(values[refs[0]])
		b, errB := parseAmount(values[refs[1]])
		c, errC := parseAmount(values[refs[2]])
		if errA != nil || errB != nil || errC != nil {
			return false, violationMessage(rule, "relation needs numeric values")
		}
		diff := a - b - c
		if diff < 0 {
			diff = -diff
		}
		if diff > rule.Tolerance {
			return false, violationMessage(rule, fmt.Sprintf("%s - %s differs from %s by %v", refs[0], refs[1], refs[2], diff))
		}
		return true, "difference within tolerance"

	case knowledge.CrossDateBefore:
		a, okA := parseDate(values[refs[0]], rule.Formats)
		b, okB := parseDate(values[refs[1]], rule.Formats)
		if !okA || !okB {
			return false, violationMessage(rule, "relation needs parseable dates on both sides")
		}
		if !a.Before(b) {
			return false, violationMessage(rule, fmt.Sprintf("%s (%s) does not precede %s (%s)",
				refs[0], a.Format("2006-01-02"), refs[1], b.Format("2006-01-02")))
		}
		return true, fmt.Sprintf("%s precedes %s", refs[0], refs[1])

	case knowledge.CrossBothPresent:
		// Presence was already established above.
		return true, "all referenced fields present"
	}
	return false, fmt.Sprintf("unsupported cross-field relation %q", rule.Relation)
}

// checkComplianceRule evaluates one domain-wide predicate over the form.
func (e *Engine) checkComplianceRule(rule knowledge.Rule, values map[string]string) Result {
	switch rule.Check {
	case knowledge.ComplianceRequiredFields:
		var missing []string
		for _, name := range rule.Fields {
			if values[e.kb.NormalizeTerm(name)] == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return e.result("", rule, StageCompliance, false,
				violationMessage(rule, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))))
		}
		return e.result("", rule, StageCompliance, true, "all required fields present")

	case knowledge.ComplianceAnyPresent:
		for _, name := range rule.Fields {
			if values[e.kb.NormalizeTerm(name)] != "" {
				return e.result("", rule, StageCompliance, true,
					fmt.Sprintf("field %q present", name))
			}
		}
		return e.result("", rule, StageCompliance, false,
			violationMessage(rule, fmt.Sprintf("none of %s present", strings.Join(rule.Fields, ", "))))

	case knowledge.ComplianceDisallowedPattern:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return e.result("", rule, StageCompliance, false,
				fmt.Sprintf("rule pattern does not compile: %v", err))
		}
		canonicals := make([]string, 0, len(values))
		for canonical := range values {
			canonicals = append(canonicals, canonical)
		}
		sort.Strings(canonicals)
		for _, canonical := range canonicals {
			if re.MatchString(values[canonical]) {
				return e.result(canonical, rule, StageCompliance, false,
					violationMessage(rule, fmt.Sprintf("field %q contains a disallowed identifier", canonical)))
			}
		}
		return e.result("", rule, StageCompliance, true, "no disallowed identifiers found")
	}
	return e.result("", rule, StageCompliance, false,
		fmt.Sprintf("unsupported compliance check %q", rule.Check))
}
