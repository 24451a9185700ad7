package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.TrainData != "data/train.csv" {
		t.Errorf("TrainData = %q; want %q", cfg.Paths.TrainData, "data/train.csv")
	}

	if cfg.Paths.Stopwords != "data/stopwords.txt" {
		t.Errorf("Stopwords = %q; want %q", cfg.Paths.Stopwords, "data/stopwords.txt")
	}

	if cfg.Paths.UserDictionary != "data/user_dict.txt" {
		t.Errorf("UserDictionary = %q; want %q", cfg.Paths.UserDictionary, "data/user_dict.txt")
	}

	if cfg.Embedding.Dim != 300 {
		t.Errorf("Embedding.Dim = %d; want 300", cfg.Embedding.Dim)
	}

	if cfg.Embedding.Window != 5 || cfg.Embedding.MinCount != 5 {
		t.Errorf("Embedding window/min_count = %d/%d; want 5/5", cfg.Embedding.Window, cfg.Embedding.MinCount)
	}

	if cfg.Vocab.MaxSize != 0 {
		t.Errorf("Vocab.MaxSize = %d; want 0", cfg.Vocab.MaxSize)
	}

	if cfg.Build.Workers != runtime.NumCPU() {
		t.Errorf("Build.Workers = %d; want %d", cfg.Build.Workers, runtime.NumCPU())
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	checks := []struct {
		flag string
		want string
	}{
		{"paths-train-data", "data/train.csv"},
		{"paths-user-dictionary", "data/user_dict.txt"},
		{"paths-output-dir", "out"},
		{"embedding-dim", "300"},
		{"vocab-max-size", "0"},
		{"max-enc-len", "200"},
		{"log-level", "info"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.TrainData != defaults.Paths.TrainData {
		t.Errorf("TrainData = %q; want %q", cfg.Paths.TrainData, defaults.Paths.TrainData)
	}

	if cfg.Embedding.Epochs != defaults.Embedding.Epochs {
		t.Errorf("Embedding.Epochs = %d; want %d", cfg.Embedding.Epochs, defaults.Embedding.Epochs)
	}

	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, defaults.LogLevel)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--workers=3",
		"--vocab-max-size=5000",
		"--embedding-dim=64",
		"--log-level=debug",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Build.Workers != 3 {
		t.Errorf("Build.Workers = %d; want 3", cfg.Build.Workers)
	}

	if cfg.Vocab.MaxSize != 5000 {
		t.Errorf("Vocab.MaxSize = %d; want 5000", cfg.Vocab.MaxSize)
	}

	if cfg.Embedding.Dim != 64 {
		t.Errorf("Embedding.Dim = %d; want 64", cfg.Embedding.Dim)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_ZeroWorkersFallsBackToNumCPU(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	if err := fs.Parse([]string{"--workers=0"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(LoadOptions{Cmd: &fakeBinder{fs: fs}, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Build.Workers != runtime.NumCPU() {
		t.Errorf("Build.Workers = %d; want %d", cfg.Build.Workers, runtime.NumCPU())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DIALOGPREP_LOG_LEVEL", "warn")
	t.Setenv("DIALOGPREP_PATHS_STOPWORDS", "/env/stopwords.txt")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Paths.Stopwords != "/env/stopwords.txt" {
		t.Errorf("Paths.Stopwords = %q; want %q", cfg.Paths.Stopwords, "/env/stopwords.txt")
	}
}

func TestLoad_ConfigFileExists_NoError(t *testing.T) {
	dir := t.TempDir()

	cfgFile := filepath.Join(dir, "dialogprep.yaml")

	err := os.WriteFile(cfgFile, []byte("log_level: warn\n"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "bad.yaml")

	err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid config file")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/dialogprep.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}

func TestLoad_NilCmd(t *testing.T) {
	// Passing nil Cmd must not panic; Load must return without error.
	cfg, err := Load(LoadOptions{
		Cmd:      nil,
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Build.Workers < 1 {
		t.Errorf("Build.Workers = %d; want >= 1", cfg.Build.Workers)
	}
}

// --- ParseLogLevel ---

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q) error: %v", tt.in, err)
		}

		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLogLevel_Unknown(t *testing.T) {
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("want error for unknown log level")
	}
}
