package retrieve

import (
	"fmt"
	"strings"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/internal/text"
)

// domainRuleMatch applies the knowledge base's terminology to the documents:
// if the field resolves to a canonical term, documents carrying that term
// (or its related terms) are trusted at a fixed confidence. The confidence
// encodes domain expertise rather than lexical evidence, so it sits above
// the generic fallback but below a direct structural hit. Not attempted when
// the field means nothing to the domain.
func (r *Retriever) domainRuleMatch(field fieldwise.Field, docs []fieldwise.Document) (candidate, bool) {
	canonical := r.kb.NormalizeTerm(field.Name)
	related := r.kb.RelatedTerms(field.Name)
	if !r.kb.Known(field.Name) && len(related) == 0 {
		return candidate{}, false
	}

	for i, doc := range docs {
		if text.ContainsFold(doc.Content, canonical) {
			return candidate{
				value:      extractValue(canonical+" "+field.Name, doc.Content),
				found:      true,
				confidence: r.cfg.DomainRuleConfidence,
				docID:      doc.ID,
				reasoning: fmt.Sprintf("domain rule: canonical term %q present in document %s",
					canonical, docLabel(doc, i)),
			}, true
		}
	}

	for i, doc := range docs {
		var hits []string
		for _, term := range related {
			if text.ContainsFold(doc.Content, term) {
				hits = append(hits, term)
			}
		}
		if len(hits) == 0 {
			continue
		}
		return candidate{
			value:      extractValue(strings.Join(hits, " ")+" "+field.Name, doc.Content),
			found:      true,
			confidence: r.cfg.DomainRuleConfidence * 0.9,
			docID:      doc.ID,
			reasoning: fmt.Sprintf("domain rule: related terms [%s] for %q present in document %s",
				strings.Join(hits, ", "), canonical, docLabel(doc, i)),
		}, true
	}

	return candidate{
		reasoning: fmt.Sprintf("no document carries %q or its related terms", canonical),
	}, true
}
