package retrieve

import (
	"strings"

	"github.com/fieldwise/fieldwise/internal/text"
)

// Extracted values must be substantial enough to be a field value but short
// enough to fit a form slot.
const (
	minValueLen = 10
	maxValueLen = 500
)

// extractValue pulls the first sentence of content that mentions one of the
// query's tokens and fits the length bounds. Returns "" when no sentence
// qualifies; callers surface that as a match without a value.
func extractValue(query, content string) string {
	keywords := text.Tokenize(query)
	for _, sentence := range text.Sentences(content) {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if len(kw) < 3 {
				continue
			}
			if strings.Contains(lower, kw) {
				if len(sentence) >= minValueLen && len(sentence) <= maxValueLen {
					return sentence
				}
				break
			}
		}
	}
	return ""
}
