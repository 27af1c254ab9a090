package invoice

import (
	"strings"
	"unicode"
)

// Normalize folds half-width parentheses to their full-width form and drops
// every whitespace rune except the line break, so label matching does not
// depend on how the PDF producer spaced or punctuated the text.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '(':
			b.WriteRune('（')
		case r == ')':
			b.WriteRune('）')
		case r == '\n':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
