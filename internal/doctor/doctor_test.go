package doctor_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-dialogprep/internal/doctor"
)

var errNotFound = errors.New("no such file")

func passingConfig(t *testing.T) doctor.Config {
	t.Helper()

	return doctor.Config{
		StopwordsPath:      "stopwords.txt",
		LoadStopwords:      func(string) (int, error) { return 12, nil },
		DictionaryPath:     "dict.txt",
		UserDictionaryPath: "user.txt",
		LoadDictionary:     func(string, string) error { return nil },
		Tables: []doctor.Table{
			{Label: "train", Path: "train.csv"},
			{Label: "test", Path: "test.csv"},
		},
		ReadTable: func(string) (int, error) { return 3, nil },
		OutputDir: t.TempDir(),
	}
}

func hasFailureContaining(failures []string, sub string) bool {
	for _, f := range failures {
		if strings.Contains(f, sub) {
			return true
		}
	}

	return false
}

// ---------------------------------------------------------------------------
// all-pass scenario
// ---------------------------------------------------------------------------

func TestRun_AllChecksPass(t *testing.T) {
	var out strings.Builder
	result := doctor.Run(passingConfig(t), &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v", result.Failures())
	}

	for _, want := range []string{"stopwords.txt (12 words)", "train table", "test table", "dictionary"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	if strings.Contains(out.String(), doctor.FailMark) {
		t.Errorf("unexpected fail mark:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// individual failures
// ---------------------------------------------------------------------------

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*doctor.Config)
		want   string
	}{
		{
			name:   "stopwords missing",
			mutate: func(c *doctor.Config) { c.LoadStopwords = func(string) (int, error) { return 0, errNotFound } },
			want:   "stopwords",
		},
		{
			name:   "stopwords empty",
			mutate: func(c *doctor.Config) { c.LoadStopwords = func(string) (int, error) { return 0, nil } },
			want:   "no entries",
		},
		{
			name:   "dictionary broken",
			mutate: func(c *doctor.Config) { c.LoadDictionary = func(string, string) error { return errNotFound } },
			want:   "dictionary",
		},
		{
			name: "test table bad schema",
			mutate: func(c *doctor.Config) {
				c.ReadTable = func(p string) (int, error) {
					if p == "test.csv" {
						return 0, errors.New("unknown column \"Extra\"")
					}
					return 3, nil
				}
			},
			want: "test table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := passingConfig(t)
			tt.mutate(&cfg)

			var out strings.Builder
			result := doctor.Run(cfg, &out)

			if !result.Failed() {
				t.Fatal("expected failure")
			}

			if len(result.Failures()) != 1 {
				t.Errorf("failures = %v; want exactly one", result.Failures())
			}

			if !hasFailureContaining(result.Failures(), tt.want) {
				t.Errorf("expected failure mentioning %q, got: %v", tt.want, result.Failures())
			}

			if !strings.Contains(out.String(), doctor.FailMark) {
				t.Errorf("output should contain fail mark:\n%s", out.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// output directory
// ---------------------------------------------------------------------------

func TestRun_OutputDirMissingButCreatable(t *testing.T) {
	cfg := passingConfig(t)
	cfg.OutputDir = filepath.Join(t.TempDir(), "a", "b")

	result := doctor.Run(cfg, &strings.Builder{})
	if result.Failed() {
		t.Errorf("failures: %v", result.Failures())
	}

	if _, err := os.Stat(cfg.OutputDir); !errors.Is(err, os.ErrNotExist) {
		t.Error("doctor must not create the output dir")
	}
}

func TestRun_OutputDirIsFile(t *testing.T) {
	cfg := passingConfig(t)
	cfg.OutputDir = filepath.Join(t.TempDir(), "file")

	if err := os.WriteFile(cfg.OutputDir, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result := doctor.Run(cfg, &strings.Builder{})
	if !hasFailureContaining(result.Failures(), "not a directory") {
		t.Errorf("failures = %v", result.Failures())
	}
}

func TestRun_NilLoadersSkipped(t *testing.T) {
	var out strings.Builder
	result := doctor.Run(doctor.Config{}, &out)

	if result.Failed() || out.Len() != 0 {
		t.Errorf("empty config should run nothing; out=%q failures=%v", out.String(), result.Failures())
	}
}

func TestResult_AddFailure(t *testing.T) {
	var r doctor.Result
	r.AddFailure("external")

	if !r.Failed() || r.Failures()[0] != "external" {
		t.Errorf("Failures = %v", r.Failures())
	}
}
