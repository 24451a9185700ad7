// Package word2vec trains skip-gram word embeddings with negative sampling
// over a space-tokenized corpus.
package word2vec

import (
	"context"
	"errors"
)

var (
	ErrInvalidOptions  = errors.New("word2vec: invalid options")
	ErrEmptyVocabulary = errors.New("word2vec: no word reaches min_count")
)

// Trainer produces a Model from corpus lines. Each line is a space-joined
// token string.
type Trainer interface {
	Train(ctx context.Context, lines []string) (*Model, error)
}

// Model holds the trained vocabulary ranked by descending frequency and the
// matching input vectors, row-major with Dim columns.
type Model struct {
	Words   []string
	Counts  []int
	Vectors []float32
	Dim     int
}

// Len returns the number of words in the model.
func (m *Model) Len() int { return len(m.Words) }

// Vector returns the embedding row of word i. The slice aliases Vectors.
func (m *Model) Vector(i int) []float32 {
	return m.Vectors[i*m.Dim : (i+1)*m.Dim]
}

// Index maps each model word to its row.
func (m *Model) Index() map[string]int {
	idx := make(map[string]int, len(m.Words))
	for i, w := range m.Words {
		idx[w] = i
	}

	return idx
}
