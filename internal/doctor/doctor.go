// Package doctor provides preflight checks for a build: every input a build
// needs is opened and parsed once so problems surface before hours of
// cleaning and training.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// CountFunc loads a resource and returns how many entries it holds.
type CountFunc func(path string) (int, error)

// DictionaryFunc builds the segmenter from a base and a user dictionary.
type DictionaryFunc func(base, user string) error

// Config holds the paths to check and injectable loaders for each.
type Config struct {
	StopwordsPath string
	LoadStopwords CountFunc

	DictionaryPath     string
	UserDictionaryPath string
	LoadDictionary     DictionaryFunc

	Tables    []Table
	ReadTable CountFunc

	OutputDir string
}

// Table names an input table to check.
type Table struct {
	Label string
	Path  string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark. Checks with a nil
// loader are skipped.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- stopwords --------------------------------------------------------
	if cfg.LoadStopwords != nil {
		n, err := cfg.LoadStopwords(cfg.StopwordsPath)
		switch {
		case err != nil:
			res.fail(fmt.Sprintf("stopwords %q: %v", cfg.StopwordsPath, err))
			fmt.Fprintf(w, "%s stopwords %s: %v\n", FailMark, cfg.StopwordsPath, err)
		case n == 0:
			res.fail(fmt.Sprintf("stopwords %q: no entries", cfg.StopwordsPath))
			fmt.Fprintf(w, "%s stopwords %s: no entries\n", FailMark, cfg.StopwordsPath)
		default:
			fmt.Fprintf(w, "%s stopwords: %s (%d words)\n", PassMark, cfg.StopwordsPath, n)
		}
	}

	// ---- segmentation dictionaries ----------------------------------------
	if cfg.LoadDictionary != nil {
		err := cfg.LoadDictionary(cfg.DictionaryPath, cfg.UserDictionaryPath)
		if err != nil {
			res.fail(fmt.Sprintf("dictionary: %v", err))
			fmt.Fprintf(w, "%s dictionary: %v\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s dictionary: %s + %s\n", PassMark, cfg.DictionaryPath, cfg.UserDictionaryPath)
		}
	}

	// ---- input tables -----------------------------------------------------
	if cfg.ReadTable != nil {
		for _, t := range cfg.Tables {
			n, err := cfg.ReadTable(t.Path)
			if err != nil {
				res.fail(fmt.Sprintf("%s table %q: %v", t.Label, t.Path, err))
				fmt.Fprintf(w, "%s %s table %s: %v\n", FailMark, t.Label, t.Path, err)
				continue
			}

			fmt.Fprintf(w, "%s %s table: %s (%d rows)\n", PassMark, t.Label, t.Path, n)
		}
	}

	// ---- output directory -------------------------------------------------
	if cfg.OutputDir != "" {
		if err := checkWritableDir(cfg.OutputDir); err != nil {
			res.fail(fmt.Sprintf("output dir %q: %v", cfg.OutputDir, err))
			fmt.Fprintf(w, "%s output dir %s: %v\n", FailMark, cfg.OutputDir, err)
		} else {
			fmt.Fprintf(w, "%s output dir: %s\n", PassMark, cfg.OutputDir)
		}
	}

	return res
}

// checkWritableDir accepts an existing writable directory, or a missing one
// whose nearest existing ancestor is a writable directory.
func checkWritableDir(dir string) error {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return errors.New("not a directory")
			}

			f, err := os.CreateTemp(dir, ".doctor-*")
			if err != nil {
				return fmt.Errorf("not writable: %w", err)
			}

			name := f.Name()
			f.Close()

			return os.Remove(name)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return err
		}

		dir = parent
	}
}
