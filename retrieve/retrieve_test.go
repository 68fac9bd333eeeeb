package retrieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/knowledge"
)

func realEstateRetriever(t *testing.T, opts ...Option) *Retriever {
	t.Helper()
	r, err := New(knowledge.NewBuiltinRegistry(), knowledge.RealEstate, opts...)
	require.NoError(t, err)
	return r
}

// bareRetriever uses a minimal domain with no terminology, so only the
// field's own tokens drive matching.
func bareRetriever(t *testing.T) *Retriever {
	t.Helper()
	reg := knowledge.NewRegistry()
	require.NoError(t, reg.Register(&knowledge.KnowledgeBase{
		Domain:   "bare",
		Glossary: map[string]knowledge.TermEntry{},
	}))
	r, err := New(reg, "bare")
	require.NoError(t, err)
	return r
}

func TestNewUnknownDomain(t *testing.T) {
	_, err := New(knowledge.NewRegistry(), "real_estate")
	require.ErrorIs(t, err, knowledge.ErrUnknownDomain)
}

func TestLexicalShortCircuit(t *testing.T) {
	r := bareRetriever(t)
	docs := []fieldwise.Document{
		{ID: "other", Content: "entirely unrelated text about gardening"},
		{ID: "exact", Content: "outstanding amount due tomorrow"},
	}
	match := r.Retrieve(fieldwise.Field{Name: "outstanding amount due tomorrow"}, docs)

	assert.Equal(t, StrategyLexical, match.Strategy)
	assert.True(t, match.Found)
	assert.Equal(t, "exact", match.DocumentID)
	assert.GreaterOrEqual(t, match.Confidence, 0.75)
	assert.Contains(t, match.Reasoning, "token similarity")
}

func TestEntityStrategyExtractsTypedSpan(t *testing.T) {
	r := realEstateRetriever(t)
	docs := []fieldwise.Document{
		{ID: "letter", Content: "Thank you for your interest in the neighborhood"},
		{ID: "closing", Content: "The closing will occur on 01/15/2024 at the title office"},
	}
	match := r.Retrieve(fieldwise.Field{Name: "Closing Date"}, docs)

	assert.Equal(t, StrategyEntity, match.Strategy)
	assert.True(t, match.Found)
	assert.Equal(t, "01/15/2024", match.Value)
	assert.Equal(t, "closing", match.DocumentID)
	assert.GreaterOrEqual(t, match.Confidence, 0.70)
}

func TestDomainRuleStrategyUsesCanonicalTerm(t *testing.T) {
	r := realEstateRetriever(t)
	docs := []fieldwise.Document{
		{ID: "deed", Content: "GRANTOR: John Smith, who resides in Davidson County"},
	}
	match := r.Retrieve(fieldwise.Field{Name: "Seller"}, docs)

	assert.Equal(t, StrategyDomainRule, match.Strategy)
	assert.True(t, match.Found)
	assert.Equal(t, "deed", match.DocumentID)
	assert.InDelta(t, 0.72, match.Confidence, 1e-9)
	assert.Contains(t, match.Reasoning, `"Grantor"`)
}

func TestKeywordFallbackNeverFails(t *testing.T) {
	r := realEstateRetriever(t)

	// No documents at all.
	match := r.Retrieve(fieldwise.Field{Name: "Purchase Price"}, nil)
	assert.False(t, match.Found)
	assert.Zero(t, match.Confidence)
	assert.Empty(t, match.Value)
	assert.NotEmpty(t, match.Reasoning)

	// Documents with zero overlap.
	match = r.Retrieve(fieldwise.Field{Name: "Zzzyx"}, []fieldwise.Document{
		{ID: "d", Content: "nothing relevant here"},
	})
	assert.False(t, match.Found)
	assert.Zero(t, match.Confidence)
}

func TestConfidenceAlwaysWithinBounds(t *testing.T) {
	r := realEstateRetriever(t)
	fields := []fieldwise.Field{
		{Name: "Purchase Price"},
		{Name: "Seller Name", Category: "party"},
		{Name: "Closing Date"},
		{Name: "completely unknown field"},
		{Name: ""},
	}
	docs := []fieldwise.Document{
		{ID: "a", Content: "The Grantor John Smith conveys to Grantee Jane Doe the premises at 123 Main Street, Nashville, TN 37201 for $250,000.00", Category: "deed", Section: "parties"},
		{ID: "b", Content: "Closing Date: January 15, 2024. Settlement occurs at First National Title Company"},
		{ID: "c", Content: ""},
	}
	for _, field := range fields {
		match := r.Retrieve(field, docs)
		assert.GreaterOrEqual(t, match.Confidence, 0.0, "field %q", field.Name)
		assert.LessOrEqual(t, match.Confidence, 1.0, "field %q", field.Name)
		assert.Equal(t, knowledge.RealEstate, match.Domain)
	}
}

func TestEqualConfidenceKeepsEarlierStrategy(t *testing.T) {
	r := bareRetriever(t)
	// Half the tokens overlap and none are long enough for extraction or
	// position boosts, so lexical and keyword score identically.
	docs := []fieldwise.Document{{ID: "d", Content: "po id yy"}}
	match := r.Retrieve(fieldwise.Field{Name: "po id xx"}, docs)

	assert.Equal(t, StrategyLexical, match.Strategy)
	assert.InDelta(t, 0.5, match.Confidence, 1e-9)
	assert.False(t, match.Found)
}

func TestRetrieveHonorsDocumentOrder(t *testing.T) {
	r := realEstateRetriever(t)
	// Both documents carry the canonical term; the earlier one wins.
	docs := []fieldwise.Document{
		{ID: "first", Content: "Grantor: Alice Alpha conveys the property"},
		{ID: "second", Content: "Grantor: Bob Beta conveys the property"},
	}
	match := r.Retrieve(fieldwise.Field{Name: "Seller"}, docs)
	assert.Equal(t, "first", match.DocumentID)
}

func TestWithConfigOverridesThresholds(t *testing.T) {
	reg := knowledge.NewBuiltinRegistry()
	strict, err := New(reg, knowledge.RealEstate, WithConfig(Config{DomainRuleThreshold: 0.99}))
	require.NoError(t, err)

	docs := []fieldwise.Document{
		{ID: "deed", Content: "GRANTOR: John Smith, who resides in Davidson County"},
	}
	match := strict.Retrieve(fieldwise.Field{Name: "Seller"}, docs)
	// The domain rule still produces the best candidate but no longer
	// short-circuits; its fixed confidence survives as best-of.
	assert.Equal(t, StrategyDomainRule, match.Strategy)
	assert.InDelta(t, 0.72, match.Confidence, 1e-9)
}

func TestExtractValueBounds(t *testing.T) {
	// Sentence shorter than the minimum is skipped; the next qualifying
	// sentence wins.
	content := "Price: $5. The purchase price is payable in full at closing"
	got := extractValue("purchase price", content)
	assert.Equal(t, "The purchase price is payable in full at closing", got)

	assert.Empty(t, extractValue("purchase price", "no mention of money here"))
	assert.Empty(t, extractValue("purchase price", ""))
}
