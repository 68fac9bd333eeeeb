package retrieve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/internal/text"
)

// keywordMatch is the guaranteed fallback: token-overlap similarity between
// the field query and each document's searchable text (content plus
// metadata), weighted by category fit and by how early the field's tokens
// appear in the document. Always attempted, never fails; the worst case is a
// zero-confidence match with no value.
func (r *Retriever) keywordMatch(field fieldwise.Field, docs []fieldwise.Document) (candidate, bool) {
	query := field.Query()
	queryTokens := text.TokenSet(query)

	bestScore := 0.0
	bestIdx := -1
	var bestOverlap []string
	for i, doc := range docs {
		searchable := strings.Join([]string{doc.Content, doc.Category, doc.Section, doc.Source}, " ")
		docTokens := text.TokenSet(searchable)
		score := text.Jaccard(queryTokens, docTokens)
		if score == 0 {
			continue
		}

		// Metadata section named by the query is a strong hint.
		if doc.Section != "" && text.ContainsFold(query, doc.Section) {
			score *= 1.2
		}
		// Declared field category aligning with the document's category.
		if field.Category != "" && text.ContainsFold(doc.Category, field.Category) {
			score *= 1.1
		}
		score *= positionWeight(queryTokens, doc.Content)
		if score > 1 {
			score = 1
		}

		if score > bestScore {
			bestScore = score
			bestIdx = i
			bestOverlap = text.Overlap(queryTokens, docTokens)
		}
	}

	if bestIdx < 0 {
		return candidate{
			reasoning: "keyword fallback: no token overlap with any document",
		}, true
	}

	doc := docs[bestIdx]
	sort.Strings(bestOverlap)
	cand := candidate{
		confidence: bestScore,
		docID:      doc.ID,
		reasoning: fmt.Sprintf("keyword overlap %.2f with document %s (shared: %s)",
			bestScore, docLabel(doc, bestIdx), strings.Join(bestOverlap, ", ")),
	}
	// Below the value floor the overlap is too thin to trust an extraction;
	// return the score but no value.
	if bestScore >= r.cfg.ValueFloor {
		cand.value = extractValue(query, doc.Content)
		cand.found = true
	}
	return cand, true
}

// positionWeight rewards documents whose first mention of a field token
// appears early: leading sections of records tend to carry the headline
// values. The factor stays within [1.0, 1.05].
func positionWeight(queryTokens map[string]struct{}, content string) float64 {
	lower := strings.ToLower(content)
	if len(lower) == 0 {
		return 1
	}
	first := -1
	for tok := range queryTokens {
		if len(tok) < 3 {
			continue
		}
		idx := strings.Index(lower, tok)
		if idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}
	if first < 0 {
		return 1
	}
	frac := float64(first) / float64(len(lower))
	return 1 + 0.05*(1-frac)
}
