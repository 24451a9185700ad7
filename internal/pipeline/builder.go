package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/encode"
	"github.com/example/go-dialogprep/internal/text"
	"github.com/example/go-dialogprep/internal/vocab"
	"github.com/example/go-dialogprep/internal/word2vec"
	"gorgonia.org/tensor"
)

// Builder turns a raw train/test table pair into encoded datasets. A
// Builder runs once; every stage needs the previous one to have finished.
type Builder struct {
	proc      *text.Processor
	trainer   word2vec.Trainer
	outputDir string
	opts      options
	log       *slog.Logger

	state   State
	dropped int
	train   *dataset.Table
	test    *dataset.Table
	corpus  []string
	model   *word2vec.Model
	members vocab.WordSet
	vocab   *vocab.Vocabulary

	maxLenX     int
	maxLenY     int
	maxLenTestY int

	padded   paddedColumns
	trainSet *dataset.Dataset
	testSet  *dataset.Dataset
}

type paddedColumns struct {
	trainX, trainY, testX, testY []string
}

// Result is what a finished build hands back to the caller.
type Result struct {
	Manifest *dataset.Manifest
	Vocab    *vocab.Vocabulary
	Train    *dataset.Dataset
	Test     *dataset.Dataset
}

// NewBuilder returns a builder that cleans with res, trains with trainer
// and writes artifacts under outputDir.
func NewBuilder(res *text.Resources, trainer word2vec.Trainer, outputDir string, optFns ...Option) *Builder {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.workers < 1 {
		opts.workers = 1
	}

	return &Builder{
		proc:      text.NewProcessor(res),
		trainer:   trainer,
		outputDir: outputDir,
		opts:      opts,
		log:       opts.logger,
	}
}

// State reports the last completed stage.
func (b *Builder) State() State { return b.state }

// Build runs every stage in order. Nothing is written unless all stages
// before persistence succeed.
func (b *Builder) Build(ctx context.Context, train, test *dataset.Table) (*Result, error) {
	if err := b.Clean(ctx, train, test); err != nil {
		return nil, err
	}

	if err := b.MergeCorpus(ctx); err != nil {
		return nil, err
	}

	if err := b.TrainVocab(ctx); err != nil {
		return nil, err
	}

	if err := b.EstimateLengths(ctx); err != nil {
		return nil, err
	}

	if err := b.Encode(ctx); err != nil {
		return nil, err
	}

	manifest, err := b.Persist(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		Manifest: manifest,
		Vocab:    b.vocab,
		Train:    b.trainSet,
		Test:     b.testSet,
	}, nil
}

// Clean drops train rows without a report and cleans every row of both
// tables. The input tables are not modified.
func (b *Builder) Clean(ctx context.Context, train, test *dataset.Table) error {
	if err := b.expect(StateRaw); err != nil {
		return err
	}

	if !train.HasReport {
		return fmt.Errorf("train table: %w: %q", dataset.ErrMissingColumn, dataset.ColReport)
	}

	kept := &dataset.Table{
		Rows:      append([]dataset.Record(nil), train.Rows...),
		HasReport: true,
		HasQID:    train.HasQID,
	}
	b.dropped = kept.DropEmptyReports()

	if kept.Len() == 0 {
		return fmt.Errorf("%w: train table has no rows with a report", ErrEmptyCorpus)
	}

	if test.Len() == 0 {
		return fmt.Errorf("%w: test table has no rows", ErrEmptyCorpus)
	}

	var err error

	b.train, err = CleanTable(ctx, b.proc, kept, b.opts.workers)
	if err != nil {
		return fmt.Errorf("clean train: %w", err)
	}

	b.test, err = CleanTable(ctx, b.proc, test, b.opts.workers)
	if err != nil {
		return fmt.Errorf("clean test: %w", err)
	}

	b.log.Info("cleaned tables",
		"train_rows", b.train.Len(),
		"test_rows", b.test.Len(),
		"dropped_train_rows", b.dropped,
		"workers", b.opts.workers,
	)

	b.enter(StateCleaned)

	return nil
}

// MergeCorpus concatenates question, dialogue and report per row, train
// rows first.
func (b *Builder) MergeCorpus(ctx context.Context) error {
	if err := b.expect(StateCleaned); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	b.corpus = append(b.train.CorpusLines(), b.test.CorpusLines()...)

	empty := true
	for _, line := range b.corpus {
		if strings.TrimSpace(line) != "" {
			empty = false
			break
		}
	}

	if empty {
		return fmt.Errorf("%w: every row is empty after cleaning", ErrEmptyCorpus)
	}

	b.log.Info("merged corpus", "lines", len(b.corpus))
	b.enter(StateCorpusMerged)

	return nil
}

// TrainVocab fits embeddings on the corpus and derives the final
// vocabulary from the trainer's ranked word list.
func (b *Builder) TrainVocab(ctx context.Context) error {
	if err := b.expect(StateCorpusMerged); err != nil {
		return err
	}

	model, err := b.trainer.Train(ctx, b.corpus)
	if err != nil {
		if errors.Is(err, word2vec.ErrEmptyVocabulary) {
			return fmt.Errorf("%w: %w", ErrEmptyCorpus, err)
		}

		return fmt.Errorf("train embeddings: %w", err)
	}

	if len(model.Vectors) != len(model.Words)*model.Dim {
		return fmt.Errorf("train embeddings: %d vectors for %d words of dim %d", len(model.Vectors), len(model.Words), model.Dim)
	}

	b.model = model
	b.members = vocab.NewWordSet(model.Words)
	b.vocab = vocab.FromRanked(model.Words, b.opts.vocabMaxSize)

	b.log.Info("trained vocabulary",
		"trainer_words", len(model.Words),
		"vocab_size", b.vocab.Size(),
		"embedding_dim", model.Dim,
	)

	b.enter(StateVocabTrained)

	return nil
}

// EstimateLengths picks the input length from both splits and the target
// length from the train reports. A test report column gets its own length.
func (b *Builder) EstimateLengths(ctx context.Context) error {
	if err := b.expect(StateVocabTrained); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	b.maxLenX = max(encode.MaxLen(b.train.Inputs()), encode.MaxLen(b.test.Inputs()))
	b.maxLenY = encode.MaxLen(b.train.Reports())

	if b.test.HasReport {
		b.maxLenTestY = encode.MaxLen(b.test.Reports())
	}

	b.log.Info("estimated lengths",
		"max_len_x", b.maxLenX,
		"max_len_y", b.maxLenY,
		"max_len_test_y", b.maxLenTestY,
	)

	b.enter(StateLengthsEstimated)

	return nil
}

// Encode pads against the trainer's word set and encodes against the
// final vocabulary.
func (b *Builder) Encode(ctx context.Context) error {
	if err := b.expect(StateLengthsEstimated); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	b.padded.trainX = encode.PadColumn(b.train.Inputs(), b.maxLenX, b.members)
	b.padded.trainY = encode.PadColumn(b.train.Reports(), b.maxLenY, b.members)
	b.padded.testX = encode.PadColumn(b.test.Inputs(), b.maxLenX, b.members)

	var err error

	b.trainSet, err = b.encodeSplit(b.padded.trainX, b.maxLenX, b.padded.trainY, b.maxLenY)
	if err != nil {
		return fmt.Errorf("encode train: %w", err)
	}

	var testY []string
	if b.test.HasReport {
		b.padded.testY = encode.PadColumn(b.test.Reports(), b.maxLenTestY, b.members)
		testY = b.padded.testY
	}

	b.testSet, err = b.encodeSplit(b.padded.testX, b.maxLenX, testY, b.maxLenTestY)
	if err != nil {
		return fmt.Errorf("encode test: %w", err)
	}

	b.log.Info("encoded datasets",
		"train_rows", b.trainSet.Rows(),
		"test_rows", b.testSet.Rows(),
	)

	b.enter(StateEncoded)

	return nil
}

func (b *Builder) encodeSplit(x []string, maxLenX int, y []string, maxLenY int) (*dataset.Dataset, error) {
	xm, err := encodeMatrix(x, maxLenX+2, b.vocab)
	if err != nil {
		return nil, err
	}

	d := &dataset.Dataset{X: xm}

	if y != nil {
		d.Y, err = encodeMatrix(y, maxLenY+2, b.vocab)
		if err != nil {
			return nil, err
		}
	}

	return d, nil
}

func encodeMatrix(column []string, width int, v *vocab.Vocabulary) (*tensor.Dense, error) {
	ids, err := encode.EncodeColumn(column, width, v)
	if err != nil {
		return nil, err
	}

	return dataset.NewMatrix(len(column), width, ids)
}

// embeddingMatrix lays the trained vectors out in final vocabulary order.
// Reserved rows stay zero.
func (b *Builder) embeddingMatrix() []float32 {
	dim := b.model.Dim
	out := make([]float32, b.vocab.Size()*dim)
	index := b.model.Index()

	for id, w := range b.vocab.Words() {
		row, ok := index[w]
		if !ok || id < vocab.ReservedCount {
			continue
		}

		copy(out[id*dim:(id+1)*dim], b.model.Vector(row))
	}

	return out
}
