// Package knowledge provides the per-domain knowledge registry: glossaries,
// alias and abbreviation tables, term relationships, keyword patterns, and
// declarative validation rules.
//
// A KnowledgeBase is plain immutable data plus pure lookup functions. Domains
// are registered explicitly before use; there is no implicit discovery. After
// registration a knowledge base is never mutated, so concurrent reads from
// retrieval and validation need no locking.
package knowledge

import (
	"fmt"
	"sort"

	"github.com/fieldwise/fieldwise/internal/text"
)

// Domain identifies one registered knowledge base (e.g. "real_estate").
type Domain string

// Built-in domains. Callers may register additional ones.
const (
	RealEstate Domain = "real_estate"
	Medical    Domain = "medical"
	Insurance  Domain = "insurance"
	Finance    Domain = "finance"
	Legal      Domain = "legal"
)

// TermEntry is one glossary entry keyed by its canonical form.
type TermEntry struct {
	Canonical     string   `yaml:"canonical"`
	Aliases       []string `yaml:"aliases,omitempty"`
	Abbreviations []string `yaml:"abbreviations,omitempty"`
	Category      string   `yaml:"category,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	Examples      []string `yaml:"examples,omitempty"`
}

// Relation links two terms. Kind describes how they relate.
type Relation struct {
	Term    string `yaml:"term"`
	Related string `yaml:"related"`
	Kind    string `yaml:"kind,omitempty"`
}

// Relation kinds. RelationAssociated is the default when unspecified.
const (
	RelationAssociated = "associated"
	RelationRecordedIn = "recorded_in"
	RelationPartyTo    = "party_to"
	RelationDerivedOf  = "derived_of"
)

// KnowledgeBase holds all domain data. Build one with the struct literal (or
// YAML via Parse), then hand it to a Registry; Register finalizes and
// validates it. Zero-value maps are treated as empty.
type KnowledgeBase struct {
	Domain Domain `yaml:"domain"`

	// Glossary maps canonical term to its entry.
	Glossary map[string]TermEntry `yaml:"glossary"`

	// Abbreviations maps domain-wide short forms to canonical terms, beyond
	// the per-entry abbreviation lists (e.g. medical "HTN" -> "Hypertension").
	Abbreviations map[string]string `yaml:"abbreviations,omitempty"`

	// FieldMappings maps common field-name variants to canonical terms
	// ("seller name" -> "Grantor").
	FieldMappings map[string]string `yaml:"field_mappings,omitempty"`

	// Relationships is the ordered set of term links.
	Relationships []Relation `yaml:"relationships,omitempty"`

	// CategoryPatterns maps a field category to the keywords that signal it
	// ("party" -> seller, buyer, grantor, ...). Used for categorization and
	// the field mapper's category and domain-keyword factors.
	CategoryPatterns map[string][]string `yaml:"category_patterns,omitempty"`

	// Rules is the domain's declarative validation rule set.
	Rules []Rule `yaml:"rules,omitempty"`

	// index maps every folded known form (canonical, alias, abbreviation,
	// field mapping) to its canonical term. Built by finalize.
	index map[string]string
}

// finalize builds the lookup index and checks structural invariants: every
// alias, abbreviation, and field-mapping target must name a glossary entry,
// and no known form may resolve to two different canonical terms.
func (kb *KnowledgeBase) finalize() error {
	if kb.Domain == "" {
		return fmt.Errorf("knowledge base has no domain")
	}
	kb.index = make(map[string]string)

	add := func(form, canonical, what string) error {
		key := text.Fold(form)
		if key == "" {
			return fmt.Errorf("%s: empty %s for %q", kb.Domain, what, canonical)
		}
		if prev, ok := kb.index[key]; ok && prev != canonical {
			return fmt.Errorf("%s: %s %q maps to both %q and %q", kb.Domain, what, form, prev, canonical)
		}
		kb.index[key] = canonical
		return nil
	}

	// Canonical forms first so a conflicting alias is the one reported.
	for canonical, entry := range kb.Glossary {
		if entry.Canonical != "" && entry.Canonical != canonical {
			return fmt.Errorf("%s: glossary key %q disagrees with canonical form %q", kb.Domain, canonical, entry.Canonical)
		}
		if err := add(canonical, canonical, "canonical term"); err != nil {
			return err
		}
	}
	for canonical, entry := range kb.Glossary {
		for _, alias := range entry.Aliases {
			if err := add(alias, canonical, "alias"); err != nil {
				return err
			}
		}
		for _, abbr := range entry.Abbreviations {
			if err := add(abbr, canonical, "abbreviation"); err != nil {
				return err
			}
		}
	}
	for abbr, canonical := range kb.Abbreviations {
		if _, ok := kb.Glossary[canonical]; !ok {
			return fmt.Errorf("%s: abbreviation %q targets unknown term %q", kb.Domain, abbr, canonical)
		}
		if err := add(abbr, canonical, "abbreviation"); err != nil {
			return err
		}
	}
	for variant, canonical := range kb.FieldMappings {
		if _, ok := kb.Glossary[canonical]; !ok {
			return fmt.Errorf("%s: field mapping %q targets unknown term %q", kb.Domain, variant, canonical)
		}
		if err := add(variant, canonical, "field mapping"); err != nil {
			return err
		}
	}

	for i, rule := range kb.Rules {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("%s: rule %d (%s): %w", kb.Domain, i, rule.Name, err)
		}
	}
	return nil
}

// NormalizeTerm resolves raw to its canonical form. Lookup order: exact
// glossary match, abbreviation table, alias table, then case/whitespace
// normalized match over all known forms. Unknown input is returned unchanged;
// no match is not an error. The function is total and idempotent.
func (kb *KnowledgeBase) NormalizeTerm(raw string) string {
	if kb == nil {
		return raw
	}
	if _, ok := kb.Glossary[raw]; ok {
		return raw
	}
	if canonical, ok := kb.Abbreviations[raw]; ok {
		return canonical
	}
	if canonical, ok := kb.index[text.Fold(raw)]; ok {
		return canonical
	}
	return raw
}

// Known reports whether raw resolves to a glossary entry.
func (kb *KnowledgeBase) Known(raw string) bool {
	if kb == nil {
		return false
	}
	_, ok := kb.Glossary[kb.NormalizeTerm(raw)]
	return ok
}

// Entry returns the glossary entry for raw (after normalization).
func (kb *KnowledgeBase) Entry(raw string) (TermEntry, bool) {
	if kb == nil {
		return TermEntry{}, false
	}
	entry, ok := kb.Glossary[kb.NormalizeTerm(raw)]
	return entry, ok
}

// RelatedTerms returns every term linked to raw: its aliases and
// abbreviations plus relationship targets in both directions. Empty when the
// term is unknown or has no links. The canonical term itself is included
// whenever the term is known.
func (kb *KnowledgeBase) RelatedTerms(raw string) []string {
	if kb == nil {
		return nil
	}
	canonical := kb.NormalizeTerm(raw)
	entry, known := kb.Glossary[canonical]
	related := make(map[string]struct{})
	if known {
		related[canonical] = struct{}{}
		for _, alias := range entry.Aliases {
			related[alias] = struct{}{}
		}
		for _, abbr := range entry.Abbreviations {
			related[abbr] = struct{}{}
		}
	}
	for _, rel := range kb.Relationships {
		switch {
		case rel.Term == canonical:
			related[rel.Related] = struct{}{}
		case rel.Related == canonical:
			related[rel.Term] = struct{}{}
		}
	}
	if len(related) == 0 {
		return nil
	}
	out := make([]string, 0, len(related))
	for term := range related {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// CategorizeField returns the domain category whose keywords match the field
// name, or "general" when none do. Categories are checked in sorted order so
// the result is deterministic.
func (kb *KnowledgeBase) CategorizeField(fieldName string) string {
	if kb == nil {
		return "general"
	}
	categories := make([]string, 0, len(kb.CategoryPatterns))
	for category := range kb.CategoryPatterns {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		for _, keyword := range kb.CategoryPatterns[category] {
			if text.ContainsFold(fieldName, keyword) {
				return category
			}
		}
	}
	return "general"
}

// FieldKeywords returns the domain keywords that appear in the field name.
func (kb *KnowledgeBase) FieldKeywords(fieldName string) []string {
	if kb == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var keywords []string
	categories := make([]string, 0, len(kb.CategoryPatterns))
	for category := range kb.CategoryPatterns {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		for _, keyword := range kb.CategoryPatterns[category] {
			if _, dup := seen[keyword]; dup {
				continue
			}
			if text.ContainsFold(fieldName, keyword) {
				seen[keyword] = struct{}{}
				keywords = append(keywords, keyword)
			}
		}
	}
	return keywords
}

// FieldRules returns the field-level rules declared for the given field name,
// matching through term normalization.
func (kb *KnowledgeBase) FieldRules(fieldName string) []Rule {
	if kb == nil {
		return nil
	}
	canonical := kb.NormalizeTerm(fieldName)
	var rules []Rule
	for _, rule := range kb.Rules {
		if !rule.Kind.FieldLevel() {
			continue
		}
		if rule.Field == fieldName || kb.NormalizeTerm(rule.Field) == canonical {
			rules = append(rules, rule)
		}
	}
	return rules
}

// CrossFieldRules returns the domain's cross-field rules.
func (kb *KnowledgeBase) CrossFieldRules() []Rule {
	return kb.rulesOfKind(RuleCrossField)
}

// ComplianceRules returns the domain's compliance rules.
func (kb *KnowledgeBase) ComplianceRules() []Rule {
	return kb.rulesOfKind(RuleCompliance)
}

func (kb *KnowledgeBase) rulesOfKind(kind RuleKind) []Rule {
	if kb == nil {
		return nil
	}
	var rules []Rule
	for _, rule := range kb.Rules {
		if rule.Kind == kind {
			rules = append(rules, rule)
		}
	}
	return rules
}
