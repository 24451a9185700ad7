package tokenizer

import (
	"errors"
	"fmt"
	"os"

	"github.com/teatak/seg/pkg/dict"
	"github.com/teatak/seg/pkg/seg"
)

// ErrEmptyPath is returned when NewSegTokenizer is called without a dictionary path.
var ErrEmptyPath = errors.New("dictionary path must not be empty")

// SegTokenizer implements Tokenizer on top of a teatak/seg segmenter
// (bidirectional maximum matching over the loaded dictionaries).
// The dictionary is loaded once; Cut only reads it.
type SegTokenizer struct {
	seg *seg.Segmenter
}

// NewSegTokenizer loads the base dictionary and an optional user dictionary
// (domain vocabulary such as part names and car models). Both files use the
// "word [freq]" line format. A named file that does not exist is an error.
func NewSegTokenizer(base, user string) (*SegTokenizer, error) {
	if base == "" {
		return nil, ErrEmptyPath
	}

	// dict.Load skips missing files silently.
	for _, path := range []string{base, user} {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("dictionary %q: %w", path, err)
		}
	}

	d := dict.NewDictionary(base, user, "")
	if err := d.Load(); err != nil {
		return nil, fmt.Errorf("load dictionary %q: %w", base, err)
	}

	return &SegTokenizer{seg: seg.NewSegmenter(d, nil, false)}, nil
}

// Cut implements Tokenizer.
func (t *SegTokenizer) Cut(text string) []string {
	if text == "" {
		return nil
	}

	return t.seg.SegmentToStrings(text)
}
