package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/safetensors"
)

// Artifact file names under the output directory.
const (
	TrainSegFile     = "train_seg.csv"
	TestSegFile      = "test_seg.csv"
	MergedSegFile    = "merged_seg.txt"
	TrainXPadFile    = "train_x_pad.txt"
	TrainYPadFile    = "train_y_pad.txt"
	TestXPadFile     = "test_x_pad.txt"
	TestYPadFile     = "test_y_pad.txt"
	VocabFile        = "vocab.txt"
	ReverseVocabFile = "reverse_vocab.txt"
	EmbeddingFile    = "embedding.safetensors"
	TrainTensorFile  = "train.safetensors"
	TestTensorFile   = "test.safetensors"
	ManifestFile     = "manifest.yaml"

	EmbeddingTensor = "embedding"
)

// Persist writes every artifact and finally the manifest into a staging
// directory next to the output directory, then moves them into place. A
// failure at any point leaves the output directory as it was.
func (b *Builder) Persist(ctx context.Context) (*dataset.Manifest, error) {
	if err := b.expect(StateEncoded); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parent := filepath.Dir(b.outputDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create output parent: %w", err)
	}

	stage, err := os.MkdirTemp(parent, "."+filepath.Base(b.outputDir)+"-staging-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	runID := dataset.NewRunID()
	meta := map[string]string{"run_id": runID}
	path := func(name string) string { return filepath.Join(stage, name) }

	var written []string

	steps := []struct {
		name  string
		write func(string) error
	}{
		{TrainSegFile, b.train.WriteCSV},
		{TestSegFile, b.test.WriteCSV},
		{MergedSegFile, func(p string) error { return dataset.WriteLines(p, b.corpus) }},
		{TrainXPadFile, func(p string) error { return dataset.WriteLines(p, b.padded.trainX) }},
		{TrainYPadFile, func(p string) error { return dataset.WriteLines(p, b.padded.trainY) }},
		{TestXPadFile, func(p string) error { return dataset.WriteLines(p, b.padded.testX) }},
		{TestYPadFile, func(p string) error {
			if b.padded.testY == nil {
				return errSkip
			}
			return dataset.WriteLines(p, b.padded.testY)
		}},
		{VocabFile, func(p string) error { return b.vocab.Save(p, path(ReverseVocabFile)) }},
		{EmbeddingFile, func(p string) error {
			shape := []int64{int64(b.vocab.Size()), int64(b.model.Dim)}
			return safetensors.WriteFile(p, []safetensors.Tensor{
				safetensors.Float32(EmbeddingTensor, shape, b.embeddingMatrix()),
			}, meta)
		}},
		{TrainTensorFile, func(p string) error { return b.trainSet.Save(p, withSplit(meta, "train")) }},
		{TestTensorFile, func(p string) error { return b.testSet.Save(p, withSplit(meta, "test")) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := step.write(path(step.name))
		if errors.Is(err, errSkip) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("persist %s: %w", step.name, err)
		}

		written = append(written, step.name)
		if step.name == VocabFile {
			written = append(written, ReverseVocabFile)
		}
	}

	manifest := &dataset.Manifest{
		RunID:        runID,
		CreatedAt:    b.opts.now().UTC(),
		TrainRows:    b.train.Len(),
		TestRows:     b.test.Len(),
		DroppedRows:  b.dropped,
		MaxLenX:      b.maxLenX,
		MaxLenY:      b.maxLenY,
		MaxLenTestY:  b.maxLenTestY,
		VocabSize:    b.vocab.Size(),
		EmbeddingDim: b.model.Dim,
		Workers:      b.opts.workers,
		Artifacts:    written,
	}

	if err := manifest.Write(path(ManifestFile)); err != nil {
		return nil, fmt.Errorf("persist %s: %w", ManifestFile, err)
	}

	if err := commitArtifacts(stage, b.outputDir, append(written, ManifestFile)); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	b.log.Info("persisted artifacts", "dir", b.outputDir, "run_id", runID, "files", len(written)+1)
	b.enter(StatePersisted)

	return manifest, nil
}

// artifactNames lists every file a build may own in the output directory.
var artifactNames = []string{
	TrainSegFile, TestSegFile, MergedSegFile,
	TrainXPadFile, TrainYPadFile, TestXPadFile, TestYPadFile,
	VocabFile, ReverseVocabFile, EmbeddingFile,
	TrainTensorFile, TestTensorFile, ManifestFile,
}

// commitArtifacts moves names from stage into dst, manifest last. Artifacts
// of an earlier build that this one does not produce are removed, so dst
// never mixes two runs. Existing files are first moved aside into stage and
// restored if any move fails.
func commitArtifacts(stage, dst string, names []string) error {
	for _, name := range artifactNames {
		info, err := os.Lstat(filepath.Join(dst, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s: %w", filepath.Join(dst, name), ErrArtifactConflict)
		}
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	prev := filepath.Join(stage, ".prev")
	if err := os.Mkdir(prev, 0o755); err != nil {
		return err
	}

	var (
		saved []string
		moved []string
	)

	rollback := func() {
		for _, name := range moved {
			_ = os.Remove(filepath.Join(dst, name))
		}

		for _, name := range saved {
			_ = os.Rename(filepath.Join(prev, name), filepath.Join(dst, name))
		}
	}

	for _, name := range artifactNames {
		err := os.Rename(filepath.Join(dst, name), filepath.Join(prev, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			rollback()
			return err
		}

		saved = append(saved, name)
	}

	for _, name := range names {
		if err := os.Rename(filepath.Join(stage, name), filepath.Join(dst, name)); err != nil {
			rollback()
			return err
		}

		moved = append(moved, name)
	}

	return nil
}

var errSkip = errors.New("skip")

func withSplit(meta map[string]string, split string) map[string]string {
	out := maps.Clone(meta)
	out["split"] = split

	return out
}
