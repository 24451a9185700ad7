// Package dataset holds the tabular inputs of a build, the encoded
// integer matrices it produces, and the manifest describing a run.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrUnknownColumn = errors.New("dataset: unknown column")
	ErrMissingColumn = errors.New("dataset: missing column")
)

// Column names accepted in an input table header.
const (
	ColQID      = "QID"
	ColBrand    = "Brand"
	ColModel    = "Model"
	ColQuestion = "Question"
	ColDialogue = "Dialogue"
	ColReport   = "Report"
)

var requiredColumns = []string{ColBrand, ColModel, ColQuestion, ColDialogue}

// Record is one consultation row. Missing values are empty strings.
type Record struct {
	QID      string
	Brand    string
	Model    string
	Question string
	Dialogue string
	Report   string
}

// Table is an ordered set of records plus which optional columns the
// source carried.
type Table struct {
	Rows      []Record
	HasReport bool
	HasQID    bool
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ReadTable loads a CSV table with a header row.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// ParseTable reads CSV from r. Brand, Model, Question and Dialogue are
// required; Report and QID are optional; any other column is rejected.
func ParseTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}

	cols := make(map[string]int, len(header))

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))

		switch name {
		case ColQID, ColBrand, ColModel, ColQuestion, ColDialogue, ColReport:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}

		if _, dup := cols[name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", name)
		}

		cols[name] = i
	}

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	_, hasReport := cols[ColReport]
	_, hasQID := cols[ColQID]
	t := &Table{HasReport: hasReport, HasQID: hasQID}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}

		return row[i]
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("dataset: read row %d: %w", len(t.Rows)+1, err)
		}

		t.Rows = append(t.Rows, Record{
			QID:      field(row, ColQID),
			Brand:    field(row, ColBrand),
			Model:    field(row, ColModel),
			Question: field(row, ColQuestion),
			Dialogue: field(row, ColDialogue),
			Report:   field(row, ColReport),
		})
	}

	return t, nil
}

// DropEmptyReports removes rows whose Report is missing (empty) and returns
// how many were dropped. A whitespace-only Report is a value and is kept. Tables without a Report column are left untouched.
func (t *Table) DropEmptyReports() int {
	if !t.HasReport {
		return 0
	}

	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if r.Report != "" {
			kept = append(kept, r)
		}
	}

	dropped := len(t.Rows) - len(kept)
	t.Rows = kept

	return dropped
}

// Inputs returns question + " " + dialogue per row.
func (t *Table) Inputs() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Question + " " + r.Dialogue
	}

	return out
}

// Reports returns the Report column, or nil when the table has none.
func (t *Table) Reports() []string {
	if !t.HasReport {
		return nil
	}

	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Report
	}

	return out
}

// CorpusLines joins the non-empty question, dialogue and report of each row
// with a space.
func (t *Table) CorpusLines() []string {
	out := make([]string, len(t.Rows))

	for i, r := range t.Rows {
		parts := make([]string, 0, 3)
		for _, s := range []string{r.Question, r.Dialogue, r.Report} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		out[i] = strings.Join(parts, " ")
	}

	return out
}

// WriteCSV writes the table without a header. Columns follow the input
// order; QID and Report appear only when the source had them.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)

	for _, r := range t.Rows {
		row := make([]string, 0, 6)
		if t.HasQID {
			row = append(row, r.QID)
		}

		row = append(row, r.Brand, r.Model, r.Question, r.Dialogue)
		if t.HasReport {
			row = append(row, r.Report)
		}

		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("dataset: write %s: %w", path, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("dataset: close %s: %w", path, err)
	}

	return nil
}

// WriteLines writes one string per line.
func WriteLines(path string, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}

	return nil
}
