// Package testutil provides shared skip helpers and fixture writers for tests.
//
// Skip helpers call t.Skipf with a clear human-readable reason when the named
// prerequisite is absent, so tests that need real segmentation resources
// remain runnable in partial environments without failing noisily.
//
// Typical usage:
//
//	func TestSegmentsRealText(t *testing.T) {
//	    dict := testutil.RequireDictionary(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DictionaryEnv names the environment variable that overrides the dictionary lookup.
const DictionaryEnv = "DIALOGPREP_PATHS_DICTIONARY"

// RequireDictionary returns the path of a segmentation dictionary, or skips
// the test when none is available. It checks DIALOGPREP_PATHS_DICTIONARY
// first, then walks up from the working directory looking for
// data/dictionary.txt.
func RequireDictionary(tb testing.TB) string {
	tb.Helper()

	if p := os.Getenv(DictionaryEnv); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}

		tb.Skipf("segmentation dictionary not found at %s=%q", DictionaryEnv, p)

		return ""
	}

	dir, err := filepath.Abs(".")
	if err != nil {
		tb.Skipf("abs path: %v", err)
		return ""
	}

	for {
		candidate := filepath.Join(dir, "data", "dictionary.txt")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	tb.Skipf("data/dictionary.txt not found; set %s to run segmentation tests", DictionaryEnv)

	return ""
}

// WriteLines writes lines, newline-terminated, to dir/name and returns the path.
func WriteLines(tb testing.TB, dir, name string, lines ...string) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}

	return path
}
