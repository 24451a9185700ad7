package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/go-dialogprep/internal/config"
	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/pipeline"
	"github.com/spf13/cobra"
	"gorgonia.org/tensor"
)

func newInspectCmd() *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the artifacts of a previous build",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			return runInspect(cfg, rows, os.Stdout)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "Print the first N encoded rows of each split")

	return cmd
}

func runInspect(cfg config.Config, rows int, w io.Writer) error {
	dir := cfg.Paths.OutputDir

	m, err := dataset.ReadManifest(filepath.Join(dir, pipeline.ManifestFile))
	if err != nil {
		return err
	}

	printManifest(w, m)

	for _, split := range []struct {
		name string
		file string
	}{
		{"train", pipeline.TrainTensorFile},
		{"test", pipeline.TestTensorFile},
	} {
		d, err := dataset.Load(filepath.Join(dir, split.file), cfg.Encode.MaxEncLen, cfg.Encode.MaxDecLen)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "%s:\n  x %v\n", split.name, d.X.Shape())
		printRows(w, d.X, rows)

		if d.Y != nil {
			_, _ = fmt.Fprintf(w, "  y %v\n", d.Y.Shape())
			printRows(w, d.Y, rows)
		}
	}

	return nil
}

func printRows(w io.Writer, m *tensor.Dense, n int) {
	n = min(n, m.Shape()[0])
	for i := 0; i < n; i++ {
		_, _ = fmt.Fprintf(w, "    %s\n", formatIDs(dataset.Row(m, i)))
	}
}
