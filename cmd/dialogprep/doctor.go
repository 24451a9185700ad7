package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/doctor"
	"github.com/example/go-dialogprep/internal/text"
	"github.com/example/go-dialogprep/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that every build input exists and parses",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			dcfg := doctor.Config{
				StopwordsPath:      cfg.Paths.Stopwords,
				LoadStopwords:      countStopwords,
				DictionaryPath:     cfg.Paths.Dictionary,
				UserDictionaryPath: cfg.Paths.UserDictionary,
				LoadDictionary: func(base, user string) error {
					_, err := tokenizer.NewSegTokenizer(base, user)
					return err
				},
				Tables: []doctor.Table{
					{Label: "train", Path: cfg.Paths.TrainData},
					{Label: "test", Path: cfg.Paths.TestData},
				},
				ReadTable: countRows,
				OutputDir: cfg.Paths.OutputDir,
			}

			result := doctor.Run(dcfg, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}
}

func countStopwords(path string) (int, error) {
	s, err := text.LoadStopwords(path)
	if err != nil {
		return 0, err
	}

	return s.Len(), nil
}

func countRows(path string) (int, error) {
	t, err := dataset.ReadTable(path)
	if err != nil {
		return 0, err
	}

	return t.Len(), nil
}
