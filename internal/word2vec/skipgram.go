package word2vec

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/blas/blas32"
)

// unigramPower flattens the negative sampling distribution.
const unigramPower = 0.75

// minAlphaRatio bounds the linearly decayed learning rate from below.
const minAlphaRatio = 1e-4

// Options configures SkipGram.
type Options struct {
	Dim          int
	Epochs       int
	Window       int
	MinCount     int
	Negative     int
	LearningRate float64
	Seed         int64
}

// DefaultOptions mirrors the classic skip-gram settings.
func DefaultOptions() Options {
	return Options{
		Dim:          300,
		Epochs:       5,
		Window:       5,
		MinCount:     5,
		Negative:     5,
		LearningRate: 0.025,
		Seed:         1,
	}
}

func (o Options) validate() error {
	switch {
	case o.Dim <= 0:
		return fmt.Errorf("%w: dim must be positive, got %d", ErrInvalidOptions, o.Dim)
	case o.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidOptions, o.Epochs)
	case o.Window <= 0:
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidOptions, o.Window)
	case o.Negative < 0:
		return fmt.Errorf("%w: negative must be >= 0, got %d", ErrInvalidOptions, o.Negative)
	case o.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrInvalidOptions, o.LearningRate)
	}

	return nil
}

// SkipGram is a single-threaded skip-gram trainer. Training is fully
// deterministic for a given corpus and Seed.
type SkipGram struct {
	opts Options
}

// NewSkipGram validates opts. MinCount below 1 is treated as 1.
func NewSkipGram(opts Options) (*SkipGram, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if opts.MinCount < 1 {
		opts.MinCount = 1
	}

	return &SkipGram{opts: opts}, nil
}

// Options returns the effective options.
func (s *SkipGram) Options() Options { return s.opts }

// Train counts words, drops those below MinCount, ranks the rest by
// descending count (ties broken lexically) and fits the vectors.
func (s *SkipGram) Train(ctx context.Context, lines []string) (*Model, error) {
	words, counts := rankWords(lines, s.opts.MinCount)
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}

	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w] = i
	}

	sentences := make([][]int, 0, len(lines))
	total := 0

	for _, line := range lines {
		var ids []int
		for _, w := range strings.Fields(line) {
			if i, ok := index[w]; ok {
				ids = append(ids, i)
			}
		}

		if len(ids) > 0 {
			sentences = append(sentences, ids)
			total += len(ids)
		}
	}

	dim := s.opts.Dim
	rng := rand.New(rand.NewSource(s.opts.Seed))

	syn0 := make([]float32, len(words)*dim)
	for i := range syn0 {
		syn0[i] = (rng.Float32() - 0.5) / float32(dim)
	}

	syn1 := make([]float32, len(words)*dim)
	neu1e := make([]float32, dim)
	cdf := unigramCDF(counts)

	budget := float64(s.opts.Epochs*total + 1)
	processed := 0

	for epoch := 0; epoch < s.opts.Epochs; epoch++ {
		for _, sent := range sentences {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			alpha := float32(s.opts.LearningRate * math.Max(1-float64(processed)/budget, minAlphaRatio))

			for pos, center := range sent {
				shrink := rng.Intn(s.opts.Window)
				span := s.opts.Window - shrink

				for c := pos - span; c <= pos+span; c++ {
					if c < 0 || c >= len(sent) || c == pos {
						continue
					}

					in := row(syn0, sent[c], dim)
					clear(neu1e)

					s.update(in, neu1e, syn1, center, 1, alpha)

					for k := 0; k < s.opts.Negative; k++ {
						neg := sampleIndex(cdf, rng)
						if neg == center {
							continue
						}
						s.update(in, neu1e, syn1, neg, 0, alpha)
					}

					blas32.Axpy(1, vec(neu1e), vec(in))
				}
			}

			processed += len(sent)
		}
	}

	return &Model{Words: words, Counts: counts, Vectors: syn0, Dim: dim}, nil
}

// update applies one logistic step of the pair (in, target) with the given
// label, accumulating the input gradient in neu1e.
func (s *SkipGram) update(in, neu1e, syn1 []float32, target int, label, alpha float32) {
	out := row(syn1, target, s.opts.Dim)

	f := sigmoid(blas32.Dot(vec(in), vec(out)))
	g := (label - f) * alpha

	blas32.Axpy(g, vec(out), vec(neu1e))
	blas32.Axpy(g, vec(in), vec(out))
}

func row(m []float32, i, dim int) []float32 {
	return m[i*dim : (i+1)*dim]
}

func vec(x []float32) blas32.Vector {
	return blas32.Vector{N: len(x), Inc: 1, Data: x}
}

func sigmoid(x float32) float32 {
	switch {
	case x > 6:
		return 1
	case x < -6:
		return 0
	}

	return 1 / (1 + math32.Exp(-x))
}

// rankWords counts whitespace-separated tokens and returns the words seen at
// least minCount times, most frequent first.
func rankWords(lines []string, minCount int) ([]string, []int) {
	freq := make(map[string]int)
	for _, line := range lines {
		for _, w := range strings.Fields(line) {
			freq[w]++
		}
	}

	words := make([]string, 0, len(freq))
	for w, n := range freq {
		if n >= minCount {
			words = append(words, w)
		}
	}

	sort.Slice(words, func(i, j int) bool {
		a, b := freq[words[i]], freq[words[j]]
		if a != b {
			return a > b
		}
		return words[i] < words[j]
	})

	counts := make([]int, len(words))
	for i, w := range words {
		counts[i] = freq[w]
	}

	return words, counts
}

func unigramCDF(counts []int) []float64 {
	cdf := make([]float64, len(counts))

	var acc float64
	for i, c := range counts {
		acc += math.Pow(float64(c), unigramPower)
		cdf[i] = acc
	}

	for i := range cdf {
		cdf[i] /= acc
	}

	return cdf
}

func sampleIndex(cdf []float64, rng *rand.Rand) int {
	i := sort.SearchFloat64s(cdf, rng.Float64())
	if i >= len(cdf) {
		i = len(cdf) - 1
	}

	return i
}
