package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldwise/fieldwise"
)

func TestRegistryUnknownDomain(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("real_estate")
	require.ErrorIs(t, err, ErrUnknownDomain)
}

func TestRegistryDuplicateDomain(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(RealEstateBase()))
	err := reg.Register(RealEstateBase())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestBuiltinRegistryDomains(t *testing.T) {
	reg := NewBuiltinRegistry()
	assert.Equal(t, []Domain{Finance, Insurance, Legal, Medical, RealEstate}, reg.Domains())

	for _, domain := range reg.Domains() {
		kb, err := reg.Get(domain)
		require.NoError(t, err)
		assert.NotEmpty(t, kb.Glossary, "domain %s has an empty glossary", domain)
	}
}

func TestNormalizeTermAliasesAndAbbreviations(t *testing.T) {
	reg := NewBuiltinRegistry()
	kb, err := reg.Get(RealEstate)
	require.NoError(t, err)

	cases := []struct {
		raw  string
		want string
	}{
		{"Grantor", "Grantor"},           // canonical maps to itself
		{"Seller", "Grantor"},            // alias, case-insensitive
		{"seller name", "Grantor"},       // field mapping
		{"  Buyer  ", "Grantee"},         // whitespace normalized
		{"addr", "Property Address"},     // abbreviation
		{"book number", "Deed Book"},     // alias
		{"Escrow Holdback", "Escrow Holdback"}, // unknown returns input unchanged
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, kb.NormalizeTerm(tc.raw), "normalize %q", tc.raw)
	}

	// Scenario: alias and canonical resolve identically.
	assert.Equal(t, kb.NormalizeTerm("Grantor"), kb.NormalizeTerm("Seller"))
}

func TestNormalizeTermIdempotent(t *testing.T) {
	reg := NewBuiltinRegistry()
	for _, domain := range reg.Domains() {
		kb, err := reg.Get(domain)
		require.NoError(t, err)

		var forms []string
		for canonical, entry := range kb.Glossary {
			forms = append(forms, canonical)
			forms = append(forms, entry.Aliases...)
			forms = append(forms, entry.Abbreviations...)
		}
		for abbr := range kb.Abbreviations {
			forms = append(forms, abbr)
		}
		for variant := range kb.FieldMappings {
			forms = append(forms, variant)
		}
		forms = append(forms, "something entirely unknown")

		for _, form := range forms {
			once := kb.NormalizeTerm(form)
			assert.Equal(t, once, kb.NormalizeTerm(once), "%s: normalize not idempotent for %q", domain, form)
		}
	}
}

func TestMedicalDomainAbbreviations(t *testing.T) {
	kb := MedicalBase()
	require.NoError(t, NewRegistry().Register(kb))

	assert.Equal(t, "Hypertension", kb.NormalizeTerm("HTN"))
	assert.Equal(t, "Congestive Heart Failure", kb.NormalizeTerm("chf"))
	assert.Equal(t, "Date of Birth", kb.NormalizeTerm("DOB"))
}

func TestRelatedTerms(t *testing.T) {
	kb := RealEstateBase()
	require.NoError(t, NewRegistry().Register(kb))

	related := kb.RelatedTerms("Seller")
	assert.Contains(t, related, "Grantor")
	assert.Contains(t, related, "Grantee")         // relationship target
	assert.Contains(t, related, "Property Address") // relationship target
	assert.Contains(t, related, "seller")          // own alias

	// Reverse direction: Page Number links back to Deed Book.
	assert.Contains(t, kb.RelatedTerms("Page Number"), "Deed Book")

	assert.Empty(t, kb.RelatedTerms("no such term anywhere"))
}

func TestCategorizeField(t *testing.T) {
	kb := RealEstateBase()
	require.NoError(t, NewRegistry().Register(kb))

	assert.Equal(t, "party", kb.CategorizeField("Seller Name"))
	assert.Equal(t, "financial", kb.CategorizeField("Purchase Price"))
	assert.Equal(t, "temporal", kb.CategorizeField("Closing Date"))
	assert.Equal(t, "general", kb.CategorizeField("Miscellaneous"))
}

func TestFieldKeywords(t *testing.T) {
	kb := RealEstateBase()
	require.NoError(t, NewRegistry().Register(kb))

	keywords := kb.FieldKeywords("Seller Name and Purchase Price")
	assert.Contains(t, keywords, "seller")
	assert.Contains(t, keywords, "price")
}

func TestRegisterRejectsBrokenBases(t *testing.T) {
	cases := []struct {
		name string
		kb   *KnowledgeBase
		want string
	}{
		{
			name: "abbreviation targets unknown term",
			kb: &KnowledgeBase{
				Domain:        "broken",
				Glossary:      map[string]TermEntry{"Premium": {Category: "financial"}},
				Abbreviations: map[string]string{"ded": "Deductible"},
			},
			want: "targets unknown term",
		},
		{
			name: "field mapping targets unknown term",
			kb: &KnowledgeBase{
				Domain:        "broken",
				Glossary:      map[string]TermEntry{"Premium": {}},
				FieldMappings: map[string]string{"payment": "Deductible"},
			},
			want: "targets unknown term",
		},
		{
			name: "alias resolves to two canonical terms",
			kb: &KnowledgeBase{
				Domain: "broken",
				Glossary: map[string]TermEntry{
					"Premium":    {Aliases: []string{"payment"}},
					"Deductible": {Aliases: []string{"payment"}},
				},
			},
			want: "maps to both",
		},
		{
			name: "no domain",
			kb:   &KnowledgeBase{},
			want: "no domain",
		},
		{
			name: "malformed rule",
			kb: &KnowledgeBase{
				Domain:   "broken",
				Glossary: map[string]TermEntry{"Premium": {}},
				Rules: []Rule{{
					Name:     "bad_regex",
					Kind:     RuleRegex,
					Field:    "Premium",
					Pattern:  `([`,
					Severity: fieldwise.SeverityCritical,
				}},
			},
			want: "bad pattern",
		},
		{
			name: "rule with bogus severity",
			kb: &KnowledgeBase{
				Domain:   "broken",
				Glossary: map[string]TermEntry{"Premium": {}},
				Rules: []Rule{{
					Name:     "range",
					Kind:     RuleRange,
					Field:    "Premium",
					Min:      floatPtr(0),
					Severity: "SEVERE",
				}},
			},
			want: "invalid severity",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewRegistry().Register(tc.kb)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestFieldRulesMatchThroughNormalization(t *testing.T) {
	kb := RealEstateBase()
	require.NoError(t, NewRegistry().Register(kb))

	rules := kb.FieldRules("sale price")
	require.NotEmpty(t, rules)
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "purchase_price_range")
	assert.Contains(t, names, "purchase_price_format")

	assert.Empty(t, kb.FieldRules("Title Company"))
}

func TestRuleValidation(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		want string
	}{
		{"missing name", Rule{Kind: RuleRange, Field: "x", Min: floatPtr(0), Severity: fieldwise.SeverityInfo}, "no name"},
		{"range without bounds", Rule{Name: "r", Kind: RuleRange, Field: "x", Severity: fieldwise.SeverityInfo}, "needs a bound"},
		{"inverted range", Rule{Name: "r", Kind: RuleRange, Field: "x", Min: floatPtr(10), Max: floatPtr(1), Severity: fieldwise.SeverityInfo}, "exceeds max"},
		{"date without formats", Rule{Name: "r", Kind: RuleDate, Field: "x", Severity: fieldwise.SeverityInfo}, "at least one format"},
		{"unknown relation", Rule{Name: "r", Kind: RuleCrossField, Relation: "near", Fields: []string{"a", "b"}, Severity: fieldwise.SeverityInfo}, "unknown cross-field relation"},
		{"arity too low", Rule{Name: "r", Kind: RuleCrossField, Relation: CrossDifferenceEquals, Fields: []string{"a", "b"}, Severity: fieldwise.SeverityInfo}, "needs 3 fields"},
		{"ratio missing", Rule{Name: "r", Kind: RuleCrossField, Relation: CrossMaxRatio, Fields: []string{"a", "b"}, Severity: fieldwise.SeverityInfo}, "positive ratio"},
		{"unknown compliance check", Rule{Name: "r", Kind: RuleCompliance, Check: "audit", Severity: fieldwise.SeverityInfo}, "unknown compliance check"},
		{"unknown kind", Rule{Name: "r", Kind: "fuzzy", Severity: fieldwise.SeverityInfo}, "unknown rule kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
