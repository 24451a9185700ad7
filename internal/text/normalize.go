package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares a raw field for segmentation.
// It applies NFKC (full-width ASCII and compatibility forms fold to their
// canonical shape), maps every Unicode whitespace rune, line breaks
// included, to a plain space, and drops control characters. Empty input
// stays empty.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)

	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}
