// Package match implements the RuleBot matching engine: text
// normalization, the keyword-spec mini-language, multi-signal scoring,
// and best-candidate selection.
package match

import "strings"

// Normalize canonicalizes text for comparison: lowercase, replace every
// character outside [a-z0-9] and whitespace with a space, collapse runs of
// whitespace, and trim. It is pure, total, and idempotent.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lowered))
	space := true // swallow leading whitespace
	for _, r := range lowered {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokenize splits normalized text into its non-empty tokens.
func Tokenize(text string) []string {
	return strings.Fields(text)
}
