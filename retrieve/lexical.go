package retrieve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/internal/text"
)

// lexicalMatch compares a normalized token-set representation of the field
// against each document's content and keeps the best similarity. The token
// set is expanded with the knowledge base's canonical and related terms for
// the field, which stands in for semantic matching: "Seller" also carries
// grantor/conveyor/donor. Jaccard keeps the score monotonic and in [0,1].
//
// A stronger embedding-based strategy can replace this one without changing
// the cascade contract.
func (r *Retriever) lexicalMatch(field fieldwise.Field, docs []fieldwise.Document) (candidate, bool) {
	query := r.expandedQuery(field)
	queryTokens := text.TokenSet(query)
	if len(queryTokens) == 0 {
		return candidate{}, false
	}

	bestScore := 0.0
	bestIdx := -1
	var bestOverlap []string
	for i, doc := range docs {
		docTokens := text.TokenSet(doc.Content)
		score := text.Jaccard(queryTokens, docTokens)
		if score > bestScore {
			bestScore = score
			bestIdx = i
			bestOverlap = text.Overlap(queryTokens, docTokens)
		}
	}
	if bestIdx < 0 {
		return candidate{
			reasoning: "no document shares tokens with the field",
		}, true
	}

	doc := docs[bestIdx]
	sort.Strings(bestOverlap)
	return candidate{
		value:      extractValue(query, doc.Content),
		found:      true,
		confidence: bestScore,
		docID:      doc.ID,
		reasoning: fmt.Sprintf("token similarity %.2f with document %s (shared: %s)",
			bestScore, docLabel(doc, bestIdx), strings.Join(bestOverlap, ", ")),
	}, true
}

// expandedQuery joins the field's query text with its canonical form and
// related terms from the knowledge base.
func (r *Retriever) expandedQuery(field fieldwise.Field) string {
	parts := []string{field.Query()}
	if canonical := r.kb.NormalizeTerm(field.Name); canonical != field.Name {
		parts = append(parts, canonical)
	}
	parts = append(parts, r.kb.RelatedTerms(field.Name)...)
	return strings.Join(parts, " ")
}

// docLabel names a document for reasoning strings.
func docLabel(doc fieldwise.Document, idx int) string {
	if doc.ID != "" {
		return doc.ID
	}
	return fmt.Sprintf("#%d", idx)
}
