// Package vocab holds the dense word/index table shared by the encoder,
// the persisted artifacts and downstream training.
//
// Four reserved tokens occupy fixed indices regardless of corpus
// frequency; every other word follows the embedding trainer's
// descending-frequency rank.
package vocab

import (
	"errors"
	"fmt"
)

// Reserved tokens.
const (
	PadToken     = "<PAD>"
	UnknownToken = "<UNK>"
	StartToken   = "<START>"
	StopToken    = "<STOP>"
)

// Indices of the reserved tokens.
const (
	PadIndex int64 = iota
	UnknownIndex
	StartIndex
	StopIndex
)

// ReservedCount is the number of reserved entries at the head of every vocabulary.
const ReservedCount = 4

var reserved = [ReservedCount]string{PadToken, UnknownToken, StartToken, StopToken}

// ErrInconsistent is returned when persisted tables do not describe a
// dense, bijective mapping.
var ErrInconsistent = errors.New("vocab: inconsistent table")

// Membership is satisfied by anything that can answer "is this word known".
type Membership interface {
	Contains(word string) bool
}

// WordSet is the raw membership set produced by the embedding trainer,
// without reserved tokens.
type WordSet map[string]struct{}

// NewWordSet builds a WordSet from a word list.
func NewWordSet(words []string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}

	return s
}

// Contains implements Membership.
func (s WordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Vocabulary is an immutable bidirectional word/index table.
type Vocabulary struct {
	wordToID map[string]int64
	idToWord []string
}

// Reserved returns the reserved tokens in index order.
func Reserved() []string {
	return append([]string(nil), reserved[:]...)
}

// FromRanked builds a Vocabulary from a frequency-ranked word list. Reserved
// tokens take indices 0..3 and ranked words follow from index 4. Words that
// repeat, or that equal a reserved token, keep their first index. When
// maxSize > 0 the table stops growing at maxSize entries.
func FromRanked(words []string, maxSize int) *Vocabulary {
	capacity := ReservedCount + len(words)
	if maxSize > 0 && maxSize < capacity {
		capacity = max(maxSize, ReservedCount)
	}

	v := &Vocabulary{
		wordToID: make(map[string]int64, capacity),
		idToWord: make([]string, 0, capacity),
	}

	for _, tok := range reserved {
		v.add(tok)
	}

	for _, w := range words {
		if maxSize > 0 && len(v.idToWord) >= maxSize {
			break
		}

		if _, ok := v.wordToID[w]; ok {
			continue
		}

		v.add(w)
	}

	return v
}

func (v *Vocabulary) add(w string) {
	v.wordToID[w] = int64(len(v.idToWord))
	v.idToWord = append(v.idToWord, w)
}

// Contains implements Membership.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.wordToID[word]
	return ok
}

// Lookup returns the index of word and whether it is present.
func (v *Vocabulary) Lookup(word string) (int64, bool) {
	id, ok := v.wordToID[word]
	return id, ok
}

// Index returns the index of word, or UnknownIndex when it is absent.
func (v *Vocabulary) Index(word string) int64 {
	if id, ok := v.wordToID[word]; ok {
		return id
	}

	return UnknownIndex
}

// Word returns the word at index id.
func (v *Vocabulary) Word(id int64) (string, bool) {
	if id < 0 || id >= int64(len(v.idToWord)) {
		return "", false
	}

	return v.idToWord[id], true
}

// Size returns the number of entries, reserved tokens included.
func (v *Vocabulary) Size() int {
	return len(v.idToWord)
}

// Words returns a copy of the index-ordered word list.
func (v *Vocabulary) Words() []string {
	return append([]string(nil), v.idToWord...)
}

// fromEntries validates and assembles a table from index-ordered words.
func fromEntries(words []string) (*Vocabulary, error) {
	if len(words) < ReservedCount {
		return nil, fmt.Errorf("%w: %d entries, need at least %d reserved", ErrInconsistent, len(words), ReservedCount)
	}

	for i, tok := range reserved {
		if words[i] != tok {
			return nil, fmt.Errorf("%w: index %d is %q, want %q", ErrInconsistent, i, words[i], tok)
		}
	}

	v := &Vocabulary{
		wordToID: make(map[string]int64, len(words)),
		idToWord: make([]string, 0, len(words)),
	}

	for i, w := range words {
		if _, dup := v.wordToID[w]; dup {
			return nil, fmt.Errorf("%w: word %q appears more than once (index %d)", ErrInconsistent, w, i)
		}

		v.add(w)
	}

	return v, nil
}
