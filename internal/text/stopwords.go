package text

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrResourceLoad is returned when a stopword list or segmentation
// dictionary cannot be loaded. It is fatal: no processing may start.
var ErrResourceLoad = errors.New("resource load failed")

// StopwordSet is an immutable set of noise words. The zero value is an
// empty set.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from the given words. Surrounding whitespace
// is trimmed and empty entries are ignored.
func NewStopwordSet(words ...string) StopwordSet {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}

	return StopwordSet{words: set}
}

// LoadStopwords reads a line-oriented stopword file, one word per line.
func LoadStopwords(path string) (StopwordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return StopwordSet{}, fmt.Errorf("%w: stopwords: %w", ErrResourceLoad, err)
	}
	defer f.Close()

	var words []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return StopwordSet{}, fmt.Errorf("%w: stopwords: read %s: %w", ErrResourceLoad, path, err)
	}

	return NewStopwordSet(words...), nil
}

// Contains reports whether w is a stopword.
func (s StopwordSet) Contains(w string) bool {
	_, ok := s.words[w]
	return ok
}

// Len returns the number of stopwords.
func (s StopwordSet) Len() int {
	return len(s.words)
}
