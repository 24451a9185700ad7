package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/example/go-dialogprep/internal/bench"
	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/pipeline"
	"github.com/example/go-dialogprep/internal/text"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		runs          int
		workers       int
		format        string
		minRowsPerSec float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark parallel cleaning throughput on the training table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}
			if workers < 1 {
				workers = cfg.Build.Workers
			}

			res, err := text.LoadResources(cfg.Paths.Stopwords, cfg.Paths.Dictionary, cfg.Paths.UserDictionary)
			if err != nil {
				return err
			}

			table, err := dataset.ReadTable(cfg.Paths.TrainData)
			if err != nil {
				return err
			}

			results, err := runBench(cmd.Context(), text.NewProcessor(res), table, runs, workers)
			if err != nil {
				return err
			}

			durations := make([]time.Duration, len(results))
			for i, r := range results {
				durations[i] = r.Duration
			}
			stats := bench.ComputeStats(durations)

			switch format {
			case "json":
				bench.FormatJSON(results, stats, os.Stdout)
			default:
				bench.FormatTable(results, stats, os.Stdout)
			}

			return bench.CheckThroughputFloor(bench.MeanThroughput(results), minRowsPerSec)
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 5, "Number of cleaning passes")
	cmd.Flags().IntVar(&workers, "bench-workers", 0, "Workers per pass (0 = use --workers)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minRowsPerSec, "min-rows-per-sec", 0, "Exit non-zero if mean warm throughput is below this value (0 = disabled)")

	return cmd
}

func runBench(ctx context.Context, proc *text.Processor, table *dataset.Table, runs, workers int) ([]bench.RunResult, error) {
	results := make([]bench.RunResult, 0, runs)

	for i := range runs {
		start := time.Now()
		if _, err := pipeline.CleanTable(ctx, proc, table, workers); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		elapsed := time.Since(start)

		r := bench.RunResult{
			Index:      i,
			Cold:       i == 0,
			Workers:    workers,
			Rows:       len(table.Rows),
			Duration:   elapsed,
			RowsPerSec: bench.CalcThroughput(len(table.Rows), elapsed),
		}
		results = append(results, r)

		slog.Debug("bench run", "run", i+1, "duration_ms", elapsed.Milliseconds(), "rows_per_sec", r.RowsPerSec)
	}

	return results, nil
}
