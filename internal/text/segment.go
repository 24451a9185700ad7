package text

import (
	"strings"

	"github.com/example/go-dialogprep/internal/tokenizer"
)

// TurnSeparator joins the segmented turns of a multi-turn field.
const TurnSeparator = " | "

// Segment word-segments each '|'-separated turn of a raw field on its own
// and rejoins the turns with TurnSeparator. Tokens within a turn are joined
// by a single space. A field without '|' is one turn.
func Segment(tok tokenizer.Tokenizer, field string) string {
	turns := strings.Split(field, "|")

	out := make([]string, len(turns))
	for i, turn := range turns {
		out[i] = strings.Join(tok.Cut(turn), " ")
	}

	return strings.Join(out, TurnSeparator)
}
