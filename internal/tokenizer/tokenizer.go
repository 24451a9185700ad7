// Package tokenizer provides word segmentation for ticket text.
// The primary implementation is dictionary-driven (DAG + max probability
// route) so Chinese text without spaces splits into words.
package tokenizer

import "strings"

// Tokenizer splits a run of text into word tokens.
type Tokenizer interface {
	// Cut segments text and returns its tokens in order. Whitespace may be
	// returned as tokens of its own; callers filter them.
	Cut(text string) []string
}

// Whitespace is a Tokenizer that splits on Unicode whitespace only. It is
// used for pre-segmented corpora and in tests.
type Whitespace struct{}

// Cut implements Tokenizer.
func (Whitespace) Cut(text string) []string {
	return strings.Fields(text)
}
