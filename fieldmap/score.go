package fieldmap

import (
	"strings"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/internal/text"
)

// subScores computes the five factor scores for one field/document pair.
// Every factor is in [0,100]; the composite stays in [0,100] because the
// normalized weights sum to 1.
func (m *Mapper) subScores(field fieldwise.Field, doc fieldwise.Document) SubScores {
	query := field.Query()
	queryTokens := text.TokenSet(query)
	contentTokens := text.TokenSet(doc.Content)

	return SubScores{
		TokenOverlap:  100 * text.Jaccard(queryTokens, contentTokens),
		CategoryMatch: m.categoryScore(field, doc),
		DomainKeyword: m.keywordScore(field, doc),
		MetadataMatch: m.metadataScore(field, doc, queryTokens),
		KnowledgeBase: m.terminologyScore(field, doc),
	}
}

// categoryScore compares the document's declared category with the field's
// expected one (declared on the field, or derived from the knowledge base).
func (m *Mapper) categoryScore(field fieldwise.Field, doc fieldwise.Document) float64 {
	if doc.Category == "" {
		return 0
	}
	want := field.Category
	if want == "" {
		want = m.kb.CategorizeField(field.Name)
	}
	switch {
	case text.Fold(doc.Category) == text.Fold(want):
		return 100
	case text.ContainsFold(doc.Category, want) || text.ContainsFold(want, doc.Category):
		return 60
	default:
		return 0
	}
}

// keywordScore measures how many of the domain keywords associated with the
// field appear in the document. A field the domain has no keywords for
// scores 0, keeping unknown fields neutral on this factor.
func (m *Mapper) keywordScore(field fieldwise.Field, doc fieldwise.Document) float64 {
	keywords := m.kb.FieldKeywords(field.Name)
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range keywords {
		if text.ContainsFold(doc.Content, kw) {
			hits++
		}
	}
	return 100 * float64(hits) / float64(len(keywords))
}

// metadataScore measures how well the document's metadata (section and
// source labels) names the field. Temporal fields additionally credit a
// document that carries a date at all.
func (m *Mapper) metadataScore(field fieldwise.Field, doc fieldwise.Document, queryTokens map[string]struct{}) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	meta := strings.Join([]string{doc.Section, doc.Source}, " ")
	metaTokens := text.TokenSet(meta)
	hits := 0
	for tok := range queryTokens {
		if _, ok := metaTokens[tok]; ok {
			hits++
		}
	}
	score := 100 * float64(hits) / float64(len(queryTokens))

	if doc.Date != nil && m.fieldIsTemporal(field) && score < 50 {
		score = 50
	}
	return score
}

func (m *Mapper) fieldIsTemporal(field fieldwise.Field) bool {
	category := field.Category
	if category == "" {
		category = m.kb.CategorizeField(field.Name)
	}
	return category == "temporal"
}

// terminologyScore rewards documents that speak the domain's language for
// this field: the canonical term scores full marks, a related term (alias,
// abbreviation, or relationship neighbor) a partial one.
func (m *Mapper) terminologyScore(field fieldwise.Field, doc fieldwise.Document) float64 {
	canonical := m.kb.NormalizeTerm(field.Name)
	if m.kb.Known(field.Name) && text.ContainsFold(doc.Content, canonical) {
		return 100
	}
	for _, term := range m.kb.RelatedTerms(field.Name) {
		if text.ContainsFold(doc.Content, term) {
			return 60
		}
	}
	return 0
}
