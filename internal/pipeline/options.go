package pipeline

import (
	"log/slog"
	"runtime"
	"time"
)

type options struct {
	workers      int
	vocabMaxSize int
	logger       *slog.Logger
	now          func() time.Time
}

func defaultOptions() options {
	return options{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// Option configures a Builder.
type Option func(*options)

// WithWorkers sets the number of cleaning partitions. n < 1 means one.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithVocabMaxSize caps the final vocabulary, reserved tokens included.
// 0 disables the cap.
func WithVocabMaxSize(n int) Option {
	return func(o *options) { o.vocabMaxSize = n }
}

// WithLogger sets the slog.Logger used for progress logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the manifest timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
