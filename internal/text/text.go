// Package text holds the tokenization and lexical similarity helpers shared
// by the retrieval and ranking packages.
package text

import (
	"strings"
	"unicode"
)

// Tokenize lowercases s and splits it into word tokens (runs of letters and
// digits). Punctuation and currency symbols separate tokens.
func Tokenize(s string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// TokenSet returns the set of word tokens in s.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

// Jaccard computes |a∩b| / |a∪b| over two token sets. Empty inputs score 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Overlap returns the tokens present in both sets, for reasoning strings.
func Overlap(a, b map[string]struct{}) []string {
	var shared []string
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared = append(shared, tok)
		}
	}
	return shared
}

// ContainsFold reports whether haystack contains needle, case-insensitively.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Sentences splits s on sentence terminators and newlines, trimming each
// piece. Empty pieces are dropped.
func Sentences(s string) []string {
	isTerm := func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}
	var out []string
	for _, piece := range strings.FieldsFunc(s, isTerm) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// Fold normalizes a term for case/whitespace-insensitive comparison.
func Fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
