package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/knowledge"
	"github.com/fieldwise/fieldwise/metrics"
	"github.com/fieldwise/fieldwise/validate"
)

func TestProcessUnknownDomain(t *testing.T) {
	e := New(knowledge.NewRegistry())
	_, err := e.Process(context.Background(), Request{Domain: knowledge.RealEstate})
	require.ErrorIs(t, err, knowledge.ErrUnknownDomain)
}

func TestProcessRealEstateEndToEnd(t *testing.T) {
	e := New(knowledge.NewBuiltinRegistry())
	req := Request{
		Domain: knowledge.RealEstate,
		Fields: []fieldwise.Field{
			{Name: "Seller"},
			{Name: "Buyer"},
			{Name: "Property Address"},
			{Name: "Purchase Price"},
			{Name: "Closing Date"},
		},
		Documents: []fieldwise.Document{
			{
				ID: "deed",
				Content: "GRANTOR: John Smith. GRANTEE: Jane Doe. " +
					"The purchase price is $250,000 for the property at " +
					"123 Main Street, Nashville, TN 37201, payable at closing",
				Category: "deed",
			},
			{
				ID:       "schedule",
				Content:  "Closing Date: January 15, 2024",
				Category: "schedule",
			},
		},
	}

	result, err := e.Process(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Matches, len(req.Fields))

	// Matches stay index-aligned with the request's fields.
	for i, field := range req.Fields {
		match := result.Matches[i]
		assert.Equal(t, field.Name, match.Field)
		assert.True(t, match.Found, "field %q: %s", field.Name, match.Reasoning)
		assert.NotEmpty(t, match.Value, "field %q", field.Name)
		assert.NotEmpty(t, match.Reasoning, "field %q", field.Name)
	}

	require.NotNil(t, result.Compliance)
	assert.Equal(t, validate.StatusCompliant, result.Compliance.Status)
	assert.NotEmpty(t, result.Validations)

	require.NotNil(t, result.Audit)
	assert.Equal(t, len(result.Validations), result.Audit.Len())

	assert.Contains(t, result.Summary(), "5/5 fields resolved")
}

func TestProcessPartialResults(t *testing.T) {
	e := New(knowledge.NewBuiltinRegistry())
	req := Request{
		Domain: knowledge.RealEstate,
		Fields: []fieldwise.Field{
			{Name: "Seller"},
			{Name: "Zzzyx Unknown Field"},
		},
		Documents: []fieldwise.Document{
			{ID: "deed", Content: "GRANTOR: John Smith conveys the property"},
		},
	}

	result, err := e.Process(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	assert.True(t, result.Matches[0].Found)
	assert.False(t, result.Matches[1].Found)
	assert.Zero(t, result.Matches[1].Confidence)
	// A form with unresolved fields still yields a full report.
	require.NotNil(t, result.Compliance)
}

func TestProcessCanceledContext(t *testing.T) {
	e := New(knowledge.NewBuiltinRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Process(ctx, Request{
		Domain: knowledge.RealEstate,
		Fields: []fieldwise.Field{{Name: "Seller"}},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessCountsAmbiguousRankings(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := New(knowledge.NewBuiltinRegistry(), WithMetrics(metrics.New(reg)))

	_, err := e.Process(context.Background(), Request{
		Domain: knowledge.Insurance,
		Fields: []fieldwise.Field{{Name: "Policy Number"}},
		Documents: []fieldwise.Document{
			{ID: "a", Content: "Policy Number", Category: "policy", Section: "policy number"},
			{ID: "b", Content: "Policy Number", Category: "policy", Section: "policy number"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.AmbiguousRankings))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
retrieval:
  accept_threshold: 0.9
weights:
  token_overlap: 1
top_k: 3
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, cfg.Retrieval.AcceptThreshold, 1e-9)
	assert.InDelta(t, 1.0, cfg.Weights.TokenOverlap, 1e-9)
	assert.Equal(t, 3, cfg.TopK)
	// Omitted knobs take defaults.
	assert.Equal(t, DefaultConfig().Concurrency, cfg.Concurrency)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval: [not a map"), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
}
