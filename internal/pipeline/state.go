// Package pipeline drives a full build: clean both tables in parallel,
// merge the corpus, train embeddings, estimate lengths, pad and encode,
// then persist every artifact at once.
package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrWorkerFailure     = errors.New("pipeline: worker failure")
	ErrInvalidTransition = errors.New("pipeline: invalid state transition")
	ErrEmptyCorpus       = errors.New("pipeline: empty corpus")
	ErrArtifactConflict  = errors.New("pipeline: artifact path is not a regular file")
)

// State is a build stage. Stages only move forward, one at a time.
type State int

const (
	StateRaw State = iota
	StateCleaned
	StateCorpusMerged
	StateVocabTrained
	StateLengthsEstimated
	StateEncoded
	StatePersisted
)

var stateNames = [...]string{
	StateRaw:              "raw",
	StateCleaned:          "cleaned",
	StateCorpusMerged:     "corpus_merged",
	StateVocabTrained:     "vocab_trained",
	StateLengthsEstimated: "lengths_estimated",
	StateEncoded:          "encoded",
	StatePersisted:        "persisted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}

	return stateNames[s]
}

// expect fails unless the builder sits exactly at want.
func (b *Builder) expect(want State) error {
	if b.state != want {
		return fmt.Errorf("%w: at %s, need %s to enter %s", ErrInvalidTransition, b.state, want, want+1)
	}

	return nil
}

// enter records a completed stage.
func (b *Builder) enter(s State) {
	b.state = s
	b.log.Debug("build state", "state", s.String())
}
