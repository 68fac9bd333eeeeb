package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/knowledge"
)

func newMapper(t *testing.T, domain knowledge.Domain, opts ...Option) *Mapper {
	t.Helper()
	m, err := New(knowledge.NewBuiltinRegistry(), domain, opts...)
	require.NoError(t, err)
	return m
}

func TestNewUnknownDomain(t *testing.T) {
	_, err := New(knowledge.NewRegistry(), knowledge.Insurance)
	require.ErrorIs(t, err, knowledge.ErrUnknownDomain)
}

func TestRankOrdersByCompositeScore(t *testing.T) {
	m := newMapper(t, knowledge.RealEstate)
	field := fieldwise.Field{Name: "Purchase Price"}
	docs := []fieldwise.Document{
		{ID: "letter", Content: "price mentioned once"},
		{ID: "contract", Content: "The purchase price is $250,000", Category: "financial"},
		{ID: "memo", Content: "unrelated gardening notes"},
	}

	ranking := m.Rank(field, docs, 0)
	require.NotEmpty(t, ranking.Candidates)
	assert.Equal(t, "contract", ranking.Candidates[0].Document.ID)
	for _, cand := range ranking.Candidates {
		assert.NotEqual(t, "memo", cand.Document.ID, "zero-score documents are dropped")
		assert.Positive(t, cand.Score)
		assert.LessOrEqual(t, cand.Score, 100.0)
		assert.NotEmpty(t, cand.Reasoning)
	}
	// Descending by score.
	for i := 1; i < len(ranking.Candidates); i++ {
		assert.GreaterOrEqual(t, ranking.Candidates[i-1].Score, ranking.Candidates[i].Score)
	}
}

func TestRankPerfectTieIsAmbiguousInInputOrder(t *testing.T) {
	m := newMapper(t, knowledge.Insurance)
	field := fieldwise.Field{Name: "Policy Number"}
	// Both documents satisfy every factor completely.
	docs := []fieldwise.Document{
		{ID: "pol-a", Content: "Policy Number", Category: "policy", Section: "policy number"},
		{ID: "pol-b", Content: "Policy Number", Category: "policy", Section: "policy number"},
	}

	ranking := m.Rank(field, docs, 0)
	require.Len(t, ranking.Candidates, 2)
	assert.InDelta(t, 100, ranking.Candidates[0].Score, 1e-9)
	assert.InDelta(t, 100, ranking.Candidates[1].Score, 1e-9)

	top := ranking.Top()
	require.Len(t, top, 2)
	assert.True(t, ranking.Ambiguous())
	assert.Equal(t, "pol-a", top[0].Document.ID)
	assert.Equal(t, "pol-b", top[1].Document.ID)
	assert.Equal(t, 0, top[0].Index)
	assert.Equal(t, 1, top[1].Index)
}

func TestRankTopKExtendsThroughBoundaryTie(t *testing.T) {
	m := newMapper(t, knowledge.Insurance, WithWeights(Weights{TokenOverlap: 1}))
	field := fieldwise.Field{Name: "Policy Number"}
	docs := []fieldwise.Document{
		{ID: "exact", Content: "Policy Number"},
		{ID: "close-1", Content: "Policy Number extra"},
		{ID: "close-2", Content: "Policy Number bonus"},
	}

	ranking := m.Rank(field, docs, 2)
	// close-1 and close-2 tie at the cut, so truncation keeps both.
	require.Len(t, ranking.Candidates, 3)
	assert.Equal(t, "exact", ranking.Candidates[0].Document.ID)
	assert.Equal(t, "close-1", ranking.Candidates[1].Document.ID)
	assert.Equal(t, "close-2", ranking.Candidates[2].Document.ID)

	// The clear winner is alone at the top.
	top := ranking.Top()
	require.Len(t, top, 1)
	assert.Equal(t, "exact", top[0].Document.ID)
	assert.False(t, ranking.Ambiguous())
}

func TestWeightsChangeTheWinner(t *testing.T) {
	field := fieldwise.Field{Name: "Premium"}
	docs := []fieldwise.Document{
		{ID: "text-hit", Content: "premium"},
		{ID: "category-hit", Content: "annual payment schedule", Category: "financial"},
	}

	byDefault := newMapper(t, knowledge.Insurance).Rank(field, docs, 0)
	require.Len(t, byDefault.Candidates, 2)
	assert.Equal(t, "text-hit", byDefault.Candidates[0].Document.ID)

	categoryHeavy := newMapper(t, knowledge.Insurance, WithWeights(Weights{
		TokenOverlap:  0.05,
		CategoryMatch: 0.80,
		DomainKeyword: 0.05,
		MetadataMatch: 0.05,
		KnowledgeBase: 0.05,
	}))
	byCategory := categoryHeavy.Rank(field, docs, 0)
	require.Len(t, byCategory.Candidates, 2)
	assert.Equal(t, "category-hit", byCategory.Candidates[0].Document.ID)
}

func TestCompositeMonotonicInWeight(t *testing.T) {
	field := fieldwise.Field{Name: "Premium"}
	docs := []fieldwise.Document{
		{ID: "text-hit", Content: "premium"},
		{ID: "category-hit", Content: "annual payment schedule", Category: "financial"},
	}

	// text-hit leads category-hit on the token factor; raising that factor's
	// weight must widen the gap, never shrink it.
	prevGap := -1.0
	for _, w := range []float64{0.1, 0.3, 0.6, 0.9} {
		weights := DefaultWeights()
		weights.TokenOverlap = w
		ranking := newMapper(t, knowledge.Insurance, WithWeights(weights)).Rank(field, docs, 0)
		require.Len(t, ranking.Candidates, 2)
		require.Equal(t, "text-hit", ranking.Candidates[0].Document.ID)

		gap := ranking.Candidates[0].Score - ranking.Candidates[1].Score
		assert.Greater(t, gap, prevGap, "weight %v", w)
		prevGap = gap
	}
}

func TestWeightsAreNormalized(t *testing.T) {
	field := fieldwise.Field{Name: "Policy Number"}
	docs := []fieldwise.Document{
		{ID: "pol", Content: "Policy Number", Category: "policy", Section: "policy number"},
	}

	// Doubling every weight must not change any composite.
	doubled := DefaultWeights()
	doubled.TokenOverlap *= 2
	doubled.CategoryMatch *= 2
	doubled.DomainKeyword *= 2
	doubled.MetadataMatch *= 2
	doubled.KnowledgeBase *= 2

	base := newMapper(t, knowledge.Insurance).Rank(field, docs, 0)
	scaled := newMapper(t, knowledge.Insurance, WithWeights(doubled)).Rank(field, docs, 0)
	require.Len(t, base.Candidates, 1)
	require.Len(t, scaled.Candidates, 1)
	assert.InDelta(t, base.Candidates[0].Score, scaled.Candidates[0].Score, 1e-9)
}

func TestTopReturnsTieGroupOnly(t *testing.T) {
	m := newMapper(t, knowledge.Insurance)
	field := fieldwise.Field{Name: "Policy Number"}
	docs := []fieldwise.Document{
		{ID: "pol-a", Content: "Policy Number", Category: "policy", Section: "policy number"},
		{ID: "weaker", Content: "the policy mentions a number somewhere in the text"},
		{ID: "pol-b", Content: "Policy Number", Category: "policy", Section: "policy number"},
	}

	top := m.Rank(field, docs, 0).Top()
	require.Len(t, top, 2)
	assert.Equal(t, "pol-a", top[0].Document.ID)
	assert.Equal(t, "pol-b", top[1].Document.ID)
}

func TestDisambiguateField(t *testing.T) {
	m := newMapper(t, knowledge.RealEstate)

	got, ok := m.DisambiguateField("seller", []string{"Grantee", "Grantor", "Closing Date"})
	require.True(t, ok)
	assert.Equal(t, "Grantor", got)

	got, ok = m.DisambiguateField("price of sale", []string{"Purchase Price", "Closing Date"})
	require.True(t, ok)
	assert.Equal(t, "Purchase Price", got)

	_, ok = m.DisambiguateField("zzzyx", []string{"Grantor", "Grantee"})
	assert.False(t, ok)
}

func TestSubScoresWithinRange(t *testing.T) {
	m := newMapper(t, knowledge.Medical)
	fields := []fieldwise.Field{
		{Name: "Patient Name"},
		{Name: "Date of Birth"},
		{Name: "Diagnosis", Category: "clinical"},
	}
	docs := []fieldwise.Document{
		{ID: "chart", Content: "Patient: John Smith, DOB 01/02/1980, dx HTN", Category: "clinical", Section: "intake"},
		{ID: "empty"},
	}
	for _, field := range fields {
		for _, doc := range docs {
			sub := m.subScores(field, doc)
			for name, v := range map[string]float64{
				"token":    sub.TokenOverlap,
				"category": sub.CategoryMatch,
				"keyword":  sub.DomainKeyword,
				"metadata": sub.MetadataMatch,
				"kb":       sub.KnowledgeBase,
			} {
				assert.GreaterOrEqual(t, v, 0.0, "%s for %q/%s", name, field.Name, doc.ID)
				assert.LessOrEqual(t, v, 100.0, "%s for %q/%s", name, field.Name, doc.ID)
			}
		}
	}
}
