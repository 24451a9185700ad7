package text

import "strings"

// noiseTokens are dropped regardless of the stopword list: the turn
// separator, bracket characters, and the placeholders the ticketing system
// inserts for voice messages and images.
var noiseTokens = map[string]struct{}{
	"|":  {},
	"[":  {},
	"]":  {},
	"语音": {},
	"图片": {},
}

// IsNoise reports whether tok belongs to the fixed noise set.
func IsNoise(tok string) bool {
	_, ok := noiseTokens[tok]
	return ok
}

// Filter splits a space-joined token string on single spaces and drops
// empty tokens, noise tokens and stopwords. Survivors are returned in order.
func Filter(tokens string, stop StopwordSet) []string {
	parts := strings.Split(tokens, " ")

	out := parts[:0]
	for _, tok := range parts {
		if tok == "" || IsNoise(tok) || stop.Contains(tok) {
			continue
		}
		out = append(out, tok)
	}

	return out
}
