package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Save writes the forward table (word<TAB>index) and the reverse table
// (index<TAB>word), one entry per line in index order.
func (v *Vocabulary) Save(forwardPath, reversePath string) error {
	if err := writeTable(forwardPath, v.idToWord, func(i int, w string) string {
		return w + "\t" + strconv.Itoa(i)
	}); err != nil {
		return err
	}

	return writeTable(reversePath, v.idToWord, func(i int, w string) string {
		return strconv.Itoa(i) + "\t" + w
	})
}

func writeTable(path string, words []string, line func(int, string) string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vocab: create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for i, word := range words {
		if _, err := w.WriteString(line(i, word) + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("vocab: write %s: %w", path, err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("vocab: flush %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("vocab: close %s: %w", path, err)
	}

	return nil
}

// Load reads a forward table written by Save. When maxSize > 0 entries at
// or beyond that index are ignored.
func Load(forwardPath string, maxSize int) (*Vocabulary, error) {
	words, err := readTable(forwardPath, false, maxSize)
	if err != nil {
		return nil, err
	}

	return fromEntries(words)
}

// LoadTables reads both tables and checks that they describe the same mapping.
func LoadTables(forwardPath, reversePath string) (*Vocabulary, error) {
	fwd, err := readTable(forwardPath, false, 0)
	if err != nil {
		return nil, err
	}

	rev, err := readTable(reversePath, true, 0)
	if err != nil {
		return nil, err
	}

	if len(fwd) != len(rev) {
		return nil, fmt.Errorf("%w: forward has %d entries, reverse has %d", ErrInconsistent, len(fwd), len(rev))
	}

	for i := range fwd {
		if fwd[i] != rev[i] {
			return nil, fmt.Errorf("%w: index %d is %q forward but %q reverse", ErrInconsistent, i, fwd[i], rev[i])
		}
	}

	return fromEntries(fwd)
}

// readTable parses a two-column table into index-ordered words. Indices
// must be dense from 0.
func readTable(path string, indexFirst bool, maxSize int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	return parseTable(f, path, indexFirst, maxSize)
}

func parseTable(r io.Reader, name string, indexFirst bool, maxSize int) ([]string, error) {
	var words []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if line == "" {
			continue
		}

		left, right, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("vocab: %s:%d: missing tab separator", name, lineNo)
		}

		word, rawIdx := left, right
		if indexFirst {
			word, rawIdx = right, left
		}

		idx, err := strconv.Atoi(strings.TrimSpace(rawIdx))
		if err != nil {
			return nil, fmt.Errorf("vocab: %s:%d: bad index %q: %w", name, lineNo, rawIdx, err)
		}

		if maxSize > 0 && idx >= maxSize {
			break
		}

		if idx != len(words) {
			return nil, fmt.Errorf("%w: %s:%d: index %d out of order (want %d)", ErrInconsistent, name, lineNo, idx, len(words))
		}

		words = append(words, word)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read %s: %w", name, err)
	}

	return words, nil
}
