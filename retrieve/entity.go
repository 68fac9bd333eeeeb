package retrieve

import (
	"fmt"
	"regexp"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/internal/text"
)

// entityKind is a structural value shape the entity strategy can extract.
type entityKind string

const (
	entityAddress    entityKind = "address"
	entityMoney      entityKind = "money"
	entityDate       entityKind = "date"
	entityIdentifier entityKind = "identifier"
	entityPerson     entityKind = "person"
)

// entityPattern pairs a shape with its regexp and a specificity score.
// Tighter shapes (street addresses, currency amounts) score higher than
// loose ones (capitalized name pairs), per the cascade's confidence rules.
type entityPattern struct {
	kind        entityKind
	re          *regexp.Regexp
	specificity float64
}

var entityPatterns = map[entityKind]entityPattern{
	entityAddress: {
		kind:        entityAddress,
		specificity: 0.92,
		re: regexp.MustCompile(`\d{1,6}\s+(?:[A-Z][A-Za-z]*\s+)+` +
			`(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd|Court|Ct|Way|Place|Pl)\b\.?` +
			`(?:,\s*[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*,?\s*(?:[A-Z]{2})?\s*\d{5}(?:-\d{4})?)?`),
	},
	entityMoney: {
		kind:        entityMoney,
		specificity: 0.88,
		re:          regexp.MustCompile(`-?\$\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?|\$\s?\d+(?:\.\d{2})?`),
	},
	entityDate: {
		kind:        entityDate,
		specificity: 0.85,
		re: regexp.MustCompile(`\b(?:\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}|` +
			`(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s*\d{4})\b`),
	},
	entityIdentifier: {
		kind:        entityIdentifier,
		specificity: 0.80,
		re:          regexp.MustCompile(`\b[A-Z]{2,}[A-Z0-9-]*\d{3,}\b|\b(?:[Bb]ook|[Pp]age|[Pp]olicy|[Aa]ccount)\s*#?\s*[A-Z0-9-]+\b`),
	},
	entityPerson: {
		kind:        entityPerson,
		specificity: 0.62,
		re:          regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\b`),
	},
}

// categoryEntityKinds maps field categories (declared or derived from the
// knowledge base) to the entity shape they suggest.
var categoryEntityKinds = map[string]entityKind{
	"property":    entityAddress,
	"financial":   entityMoney,
	"coverage":    entityMoney,
	"temporal":    entityDate,
	"recording":   entityIdentifier,
	"policy":      entityIdentifier,
	"accounting":  entityIdentifier,
	"party":       entityPerson,
	"demographic": entityPerson,
	"personnel":   entityPerson,
}

// nameEntityHints maps field-name tokens to entity shapes, consulted when
// the category gives no signal.
var nameEntityHints = []struct {
	token string
	kind  entityKind
}{
	{"address", entityAddress},
	{"price", entityMoney},
	{"premium", entityMoney},
	{"amount", entityMoney},
	{"deductible", entityMoney},
	{"revenue", entityMoney},
	{"expense", entityMoney},
	{"date", entityDate},
	{"dob", entityDate},
	{"birth", entityDate},
	{"number", entityIdentifier},
	{"id", entityIdentifier},
	{"book", entityIdentifier},
	{"name", entityPerson},
}

// entityMatch extracts a typed span when the field's category suggests an
// entity shape; otherwise the strategy is not attempted. Confidence is the
// pattern's specificity, discounted when the containing document never
// mentions the field.
func (r *Retriever) entityMatch(field fieldwise.Field, docs []fieldwise.Document) (candidate, bool) {
	kind, ok := r.entityKindFor(field)
	if !ok {
		return candidate{}, false
	}
	pattern := entityPatterns[kind]
	fieldTokens := text.Tokenize(field.Name)

	type hit struct {
		idx      int
		span     string
		mentions bool
	}
	var firstAny *hit
	for i, doc := range docs {
		span := pattern.re.FindString(doc.Content)
		if span == "" {
			continue
		}
		mentions := false
		for _, tok := range fieldTokens {
			if len(tok) >= 3 && text.ContainsFold(doc.Content, tok) {
				mentions = true
				break
			}
		}
		if mentions {
			return r.entityCandidate(field, kind, pattern, docs[i], i, span, true), true
		}
		if firstAny == nil {
			firstAny = &hit{idx: i, span: span}
		}
	}
	if firstAny != nil {
		return r.entityCandidate(field, kind, pattern, docs[firstAny.idx], firstAny.idx, firstAny.span, false), true
	}
	return candidate{
		reasoning: fmt.Sprintf("no %s-shaped span found in any document", kind),
	}, true
}

func (r *Retriever) entityCandidate(field fieldwise.Field, kind entityKind, pattern entityPattern, doc fieldwise.Document, idx int, span string, mentions bool) candidate {
	conf := pattern.specificity
	note := "document mentions the field"
	if !mentions {
		conf *= 0.7
		note = "document never mentions the field"
	}
	return candidate{
		value:      span,
		found:      true,
		confidence: conf,
		docID:      doc.ID,
		reasoning: fmt.Sprintf("%s pattern matched %q in document %s (%s)",
			kind, span, docLabel(doc, idx), note),
	}
}

// entityKindFor decides whether the field's category or name suggests an
// entity shape.
func (r *Retriever) entityKindFor(field fieldwise.Field) (entityKind, bool) {
	category := field.Category
	if category == "" {
		category = r.kb.CategorizeField(field.Name)
	}
	if kind, ok := categoryEntityKinds[category]; ok {
		return kind, true
	}
	for _, tok := range text.Tokenize(field.Name) {
		for _, hint := range nameEntityHints {
			if tok == hint.token {
				return hint.kind, true
			}
		}
	}
	return "", false
}
