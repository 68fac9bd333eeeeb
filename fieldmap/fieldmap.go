// Package fieldmap ranks candidate documents for a form field with a
// weighted multi-factor score, so callers can pick (or be told they cannot
// pick) the document a field's value should come from.
//
// Five sub-scores, each normalized to [0,100], are fused into a composite:
// token overlap, category alignment, domain-keyword presence, metadata fit,
// and knowledge-base terminology. Weights are configuration. Documents with
// a zero composite are dropped; ties are stable in input order, and top
// candidates separated by less than a configurable epsilon are reported as
// ambiguous rather than silently resolved.
package fieldmap

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/fieldwise/fieldwise"
	"github.com/fieldwise/fieldwise/internal/text"
	"github.com/fieldwise/fieldwise/knowledge"
)

// Weights holds the per-factor weights of the composite score, plus the
// epsilon within which two composites count as tied. Weights need not sum
// to 1; normalization divides by their sum.
type Weights struct {
	TokenOverlap  float64 `yaml:"token_overlap"`
	CategoryMatch float64 `yaml:"category_match"`
	DomainKeyword float64 `yaml:"domain_keyword"`
	MetadataMatch float64 `yaml:"metadata_match"`
	KnowledgeBase float64 `yaml:"knowledge_base"`
	// TieEpsilon is on the composite 0..100 scale.
	TieEpsilon float64 `yaml:"tie_epsilon"`
}

// DefaultWeights returns the default factor weights.
func DefaultWeights() Weights {
	return Weights{
		TokenOverlap:  0.25,
		CategoryMatch: 0.25,
		DomainKeyword: 0.25,
		MetadataMatch: 0.15,
		KnowledgeBase: 0.10,
		TieEpsilon:    0.5,
	}
}

func normalizeWeights(w Weights) Weights {
	def := DefaultWeights()
	sum := w.TokenOverlap + w.CategoryMatch + w.DomainKeyword + w.MetadataMatch + w.KnowledgeBase
	if sum <= 0 {
		w = def
		sum = w.TokenOverlap + w.CategoryMatch + w.DomainKeyword + w.MetadataMatch + w.KnowledgeBase
	}
	w.TokenOverlap /= sum
	w.CategoryMatch /= sum
	w.DomainKeyword /= sum
	w.MetadataMatch /= sum
	w.KnowledgeBase /= sum
	if w.TieEpsilon <= 0 {
		w.TieEpsilon = def.TieEpsilon
	}
	return w
}

// SubScores carries the per-factor scores of one candidate, each in [0,100].
type SubScores struct {
	TokenOverlap  float64 `json:"token_overlap"`
	CategoryMatch float64 `json:"category_match"`
	DomainKeyword float64 `json:"domain_keyword"`
	MetadataMatch float64 `json:"metadata_match"`
	KnowledgeBase float64 `json:"knowledge_base"`
}

// RankedCandidate is one document with its composite score and the factor
// breakdown that produced it.
type RankedCandidate struct {
	Document  fieldwise.Document `json:"document"`
	Index     int                `json:"index"`
	Score     float64            `json:"score"`
	SubScores SubScores          `json:"sub_scores"`
	Reasoning string             `json:"reasoning"`
}

// Ranking is the ordered result of one Rank call.
type Ranking struct {
	Field      string            `json:"field"`
	Candidates []RankedCandidate `json:"candidates"`
	epsilon    float64
}

// Top returns every candidate whose score is within the tie epsilon of the
// best one. An empty ranking yields nil.
func (rk Ranking) Top() []RankedCandidate {
	if len(rk.Candidates) == 0 {
		return nil
	}
	best := rk.Candidates[0].Score
	cut := 1
	for cut < len(rk.Candidates) && best-rk.Candidates[cut].Score < rk.epsilon {
		cut++
	}
	return rk.Candidates[:cut]
}

// Ambiguous reports whether more than one candidate ties for the top spot.
// Callers decide resolution; the ranker never silently picks among ties.
func (rk Ranking) Ambiguous() bool {
	return len(rk.Top()) > 1
}

// Mapper scores documents against fields for one domain.
type Mapper struct {
	kb      *knowledge.KnowledgeBase
	weights Weights
	logger  *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithWeights overrides the default factor weights.
func WithWeights(w Weights) Option {
	return func(m *Mapper) { m.weights = normalizeWeights(w) }
}

// WithLogger attaches a logger for per-candidate debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New builds a Mapper for domain, failing with knowledge.ErrUnknownDomain
// when the domain is not registered.
func New(reg *knowledge.Registry, domain knowledge.Domain, opts ...Option) (*Mapper, error) {
	kb, err := reg.Get(domain)
	if err != nil {
		return nil, err
	}
	m := &Mapper{
		kb:      kb,
		weights: normalizeWeights(DefaultWeights()),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Rank scores every document for field and returns at most topK candidates,
// descending by composite score. Zero-scoring documents are dropped. Exact
// ties keep input order, and when the topK boundary would split a group of
// candidates tied within the epsilon, the whole group is kept so Top never
// loses a tied candidate to truncation. topK <= 0 means no limit.
func (m *Mapper) Rank(field fieldwise.Field, docs []fieldwise.Document, topK int) Ranking {
	ranking := Ranking{Field: field.Name, epsilon: m.weights.TieEpsilon}

	for i, doc := range docs {
		sub := m.subScores(field, doc)
		score := m.weights.TokenOverlap*sub.TokenOverlap +
			m.weights.CategoryMatch*sub.CategoryMatch +
			m.weights.DomainKeyword*sub.DomainKeyword +
			m.weights.MetadataMatch*sub.MetadataMatch +
			m.weights.KnowledgeBase*sub.KnowledgeBase
		if score <= 0 {
			continue
		}
		m.logger.Debug("candidate scored",
			"field", field.Name, "document", doc.ID, "score", score)
		ranking.Candidates = append(ranking.Candidates, RankedCandidate{
			Document:  doc,
			Index:     i,
			Score:     score,
			SubScores: sub,
			Reasoning: reasoning(sub),
		})
	}

	sort.SliceStable(ranking.Candidates, func(i, j int) bool {
		return ranking.Candidates[i].Score > ranking.Candidates[j].Score
	})

	if topK > 0 && len(ranking.Candidates) > topK {
		cut := topK
		boundary := ranking.Candidates[topK-1].Score
		for cut < len(ranking.Candidates) && boundary-ranking.Candidates[cut].Score < m.weights.TieEpsilon {
			cut++
		}
		ranking.Candidates = ranking.Candidates[:cut]
	}
	return ranking
}

// DisambiguateField picks from candidates the field name closest to name by
// token overlap, after normalizing both through the knowledge base. Exact
// ties keep the earlier candidate. Returns false when no candidate shares a
// token with name.
func (m *Mapper) DisambiguateField(name string, candidates []string) (string, bool) {
	nameTokens := text.TokenSet(m.kb.NormalizeTerm(name) + " " + name)
	best := ""
	bestScore := 0.0
	for _, cand := range candidates {
		canonical := m.kb.NormalizeTerm(cand)
		score := text.Jaccard(nameTokens, text.TokenSet(canonical+" "+cand))
		if score > bestScore {
			bestScore = score
			best = canonical
		}
	}
	return best, bestScore > 0
}

func reasoning(sub SubScores) string {
	parts := make([]string, 0, 5)
	add := func(name string, v float64) {
		if v > 0 {
			parts = append(parts, fmt.Sprintf("%s=%.0f", name, v))
		}
	}
	add("tokens", sub.TokenOverlap)
	add("category", sub.CategoryMatch)
	add("keywords", sub.DomainKeyword)
	add("metadata", sub.MetadataMatch)
	add("terminology", sub.KnowledgeBase)
	if len(parts) == 0 {
		return "no factor matched"
	}
	return strings.Join(parts, ", ")
}
