package dataset

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest records what a build produced and with which lengths, so later
// consumers can reload tensors and vocabulary consistently.
type Manifest struct {
	RunID        string    `yaml:"run_id"`
	CreatedAt    time.Time `yaml:"created_at"`
	TrainRows    int       `yaml:"train_rows"`
	TestRows     int       `yaml:"test_rows"`
	DroppedRows  int       `yaml:"dropped_train_rows"`
	MaxLenX      int       `yaml:"max_len_x"`
	MaxLenY      int       `yaml:"max_len_y"`
	MaxLenTestY  int       `yaml:"max_len_test_y,omitempty"`
	VocabSize    int       `yaml:"vocab_size"`
	EmbeddingDim int       `yaml:"embedding_dim"`
	Workers      int       `yaml:"workers"`
	Artifacts    []string  `yaml:"artifacts"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("dataset: encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}

	return nil
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", path, err)
	}

	return &m, nil
}
