// Package csvfile reads and writes the pipeline's CSV tables. Columns are
// addressed by header name so extra or reordered columns are tolerated.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/basketcost/backend/internal/domain"
)

// Table is a CSV file loaded into memory with a header index
type Table struct {
	Path    string
	Headers []string
	index   map[string]int
	rows    [][]string
}

// ReadFile loads a CSV file
func ReadFile(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Read(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Read loads CSV data from r. A UTF-8 byte order mark is skipped.
func Read(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrEmptyInput
		}
		return nil, err
	}

	t := &Table{Headers: headers, index: make(map[string]int, len(headers))}
	for i, h := range headers {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// Require reports ErrMissingColumn for the first absent column
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("%w: %s", domain.ErrMissingColumn, c)
		}
	}
	return nil
}

// Has reports whether the header contains col
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Len returns the number of data rows
func (t *Table) Len() int { return len(t.rows) }

// Get returns the cell at row/col, or "" when the column or cell is missing
func (t *Table) Get(row int, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][i]
}

// OptString returns nil for an empty cell
func (t *Table) OptString(row int, col string) *string {
	v := t.Get(row, col)
	if v == "" {
		return nil
	}
	return &v
}

// FloatOrNaN parses a numeric cell whose missing value is NaN rather than
// nil. Empty cells and pandas-style "nan" read as NaN.
func (t *Table) FloatOrNaN(row int, col string) (float64, error) {
	v := t.Get(row, col)
	switch v {
	case "", "nan", "NaN":
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %s: %q", domain.ErrInvalidRecord, row+2, col, v)
	}
	return f, nil
}

// OptFloat parses an optional numeric cell. Empty cells and pandas-style
// "nan" are nil.
func (t *Table) OptFloat(row int, col string) (*float64, error) {
	v := t.Get(row, col)
	switch v {
	case "", "nan", "NaN":
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: row %d column %s: %q", domain.ErrInvalidRecord, row+2, col, v)
	}
	return &f, nil
}

// Column describes one output column of a table of T
type Column[T any] struct {
	Name  string
	Value func(T) string
}

// Header returns the column names in order
func Header[T any](cols []Column[T]) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Write encodes rows to w with a header line
func Write[T any](w io.Writer, cols []Column[T], rows []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(cols)); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			rec[i] = c.Value(row)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path, creating parent directories. The file is
// written to a temporary name first and renamed into place.
func WriteFile[T any](path string, cols []Column[T], rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, cols, rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// FormatFloat renders a float in its shortest exact form. NaN and
// infinities are empty cells.
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptFloat renders nil as an empty cell
func FormatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}

// FormatOptString renders nil as an empty cell
func FormatOptString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
