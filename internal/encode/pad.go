// Package encode turns cleaned token strings into fixed-length integer
// sequences: <START> content <STOP> <PAD>...
package encode

import (
	"strings"

	"github.com/example/go-dialogprep/internal/text"
	"github.com/example/go-dialogprep/internal/vocab"
)

// splitTokens splits on single spaces and drops the empty tokens that
// leading, trailing or doubled spaces produce.
func splitTokens(s string) []string {
	parts := strings.Split(strings.TrimSpace(s), " ")

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Pad truncates tokens to at most maxLen, replaces tokens unknown to
// members with <UNK>, wraps the result in <START>/<STOP> and right-pads
// with <PAD>. The output always holds exactly maxLen+2 space-joined tokens.
func Pad(tokens string, maxLen int, members vocab.Membership) string {
	if maxLen < 0 {
		maxLen = 0
	}

	words := splitTokens(tokens)
	if len(words) > maxLen {
		words = words[:maxLen]
	}

	out := make([]string, 0, maxLen+2)
	out = append(out, vocab.StartToken)

	for _, w := range words {
		if !members.Contains(w) {
			w = vocab.UnknownToken
		}
		out = append(out, w)
	}

	out = append(out, vocab.StopToken)
	for len(out) < maxLen+2 {
		out = append(out, vocab.PadToken)
	}

	return strings.Join(out, " ")
}

// Encode maps each space-separated token of padded to its index in v,
// falling back to the <UNK> index. The output has one entry per token.
func Encode(padded string, v *vocab.Vocabulary) []int64 {
	words := splitTokens(padded)

	ids := make([]int64, len(words))
	for i, w := range words {
		ids[i] = v.Index(w)
	}

	return ids
}

// PadColumn applies Pad to every row.
func PadColumn(column []string, maxLen int, members vocab.Membership) []string {
	out := make([]string, len(column))
	for i, s := range column {
		out[i] = Pad(s, maxLen, members)
	}

	return out
}

// EncodeColumn applies Encode to every row and returns a row-major
// matrix of len(column) x width. Every row must encode to width ids.
func EncodeColumn(column []string, width int, v *vocab.Vocabulary) ([]int64, error) {
	out := make([]int64, 0, len(column)*width)

	for i, s := range column {
		ids := Encode(s, v)
		if len(ids) != width {
			return nil, &WidthError{Row: i, Got: len(ids), Want: width}
		}
		out = append(out, ids...)
	}

	return out, nil
}

// PreprocessSentence cleans a raw sentence, pads it to maxLen-2 content tokens against
// the final vocabulary and encodes it, yielding exactly maxLen ids. It is
// the inference-time counterpart of a build.
func PreprocessSentence(p *text.Processor, v *vocab.Vocabulary, sentence string, maxLen int) []int64 {
	return Encode(Pad(p.Process(sentence), maxLen-2, v), v)
}
