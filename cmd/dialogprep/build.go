package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/go-dialogprep/internal/config"
	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/pipeline"
	"github.com/example/go-dialogprep/internal/text"
	"github.com/example/go-dialogprep/internal/word2vec"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Clean both tables, train embeddings and write encoded datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runBuild(ctx, cfg, os.Stdout)
		},
	}
}

func trainerOptions(cfg config.Config) word2vec.Options {
	return word2vec.Options{
		Dim:          cfg.Embedding.Dim,
		Epochs:       cfg.Embedding.Epochs,
		Window:       cfg.Embedding.Window,
		MinCount:     cfg.Embedding.MinCount,
		Negative:     cfg.Embedding.Negative,
		LearningRate: cfg.Embedding.LearningRate,
		Seed:         cfg.Embedding.Seed,
	}
}

func runBuild(ctx context.Context, cfg config.Config, w io.Writer) error {
	res, err := text.LoadResources(cfg.Paths.Stopwords, cfg.Paths.Dictionary, cfg.Paths.UserDictionary)
	if err != nil {
		return err
	}

	train, err := dataset.ReadTable(cfg.Paths.TrainData)
	if err != nil {
		return err
	}

	test, err := dataset.ReadTable(cfg.Paths.TestData)
	if err != nil {
		return err
	}

	trainer, err := word2vec.NewSkipGram(trainerOptions(cfg))
	if err != nil {
		return err
	}

	b := pipeline.NewBuilder(res, trainer, cfg.Paths.OutputDir,
		pipeline.WithWorkers(cfg.Build.Workers),
		pipeline.WithVocabMaxSize(cfg.Vocab.MaxSize),
		pipeline.WithLogger(slog.Default()),
	)

	result, err := b.Build(ctx, train, test)
	if err != nil {
		return fmt.Errorf("build stopped at %s: %w", b.State(), err)
	}

	printManifest(w, result.Manifest)

	return nil
}

func printManifest(w io.Writer, m *dataset.Manifest) {
	_, _ = fmt.Fprintf(w, "run:        %s\n", m.RunID)
	_, _ = fmt.Fprintf(w, "rows:       train %d, test %d (dropped %d)\n", m.TrainRows, m.TestRows, m.DroppedRows)
	_, _ = fmt.Fprintf(w, "max_len:    x %d, y %d", m.MaxLenX, m.MaxLenY)

	if m.MaxLenTestY > 0 {
		_, _ = fmt.Fprintf(w, ", test y %d", m.MaxLenTestY)
	}

	_, _ = fmt.Fprintf(w, "\nvocab:      %d words, embedding dim %d\n", m.VocabSize, m.EmbeddingDim)
	_, _ = fmt.Fprintf(w, "artifacts:  %d\n", len(m.Artifacts))
}
