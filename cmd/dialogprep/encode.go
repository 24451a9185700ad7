package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/go-dialogprep/internal/config"
	"github.com/example/go-dialogprep/internal/encode"
	"github.com/example/go-dialogprep/internal/pipeline"
	"github.com/example/go-dialogprep/internal/text"
	"github.com/example/go-dialogprep/internal/vocab"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var sentence string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode sentences with the vocabulary of a previous build",
		Long: "Encode cleans each sentence like a build does, pads it to --max-enc-len ids and\n" +
			"prints one space-separated id row per sentence. Sentences come from --text or,\n" +
			"one per line, from stdin.",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			sentences, err := readSentences(sentence, os.Stdin)
			if err != nil {
				return err
			}

			res, err := text.LoadResources(cfg.Paths.Stopwords, cfg.Paths.Dictionary, cfg.Paths.UserDictionary)
			if err != nil {
				return err
			}

			return runEncode(cfg, text.NewProcessor(res), sentences, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&sentence, "text", "", "Sentence to encode (reads stdin lines if empty)")

	return cmd
}

func runEncode(cfg config.Config, proc *text.Processor, sentences []string, w io.Writer) error {
	if cfg.Encode.MaxEncLen < 2 {
		return fmt.Errorf("max-enc-len must be at least 2, got %d", cfg.Encode.MaxEncLen)
	}

	v, err := vocab.LoadTables(
		filepath.Join(cfg.Paths.OutputDir, pipeline.VocabFile),
		filepath.Join(cfg.Paths.OutputDir, pipeline.ReverseVocabFile),
	)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	for _, s := range sentences {
		ids := encode.PreprocessSentence(proc, v, s, cfg.Encode.MaxEncLen)
		_, _ = bw.WriteString(formatIDs(ids))
		_ = bw.WriteByte('\n')
	}

	return bw.Flush()
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	return strings.Join(parts, " ")
}

func readSentences(sentence string, stdin io.Reader) ([]string, error) {
	if strings.TrimSpace(sentence) != "" {
		return []string{sentence}, nil
	}

	var out []string

	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	if len(out) == 0 {
		return nil, errors.New("either provide --text or pipe sentences on stdin")
	}

	return out, nil
}
