// Package table defines the tabular result type shared by the relational and
// SPARQL runners.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Table is an ordered set of named columns and rows. A nil cell is a NULL
// (an unbound SPARQL variable or a SQL NULL).
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AppendRow adds a row. The row must have one cell per column.
func (t *Table) AppendRow(cells ...any) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Cell returns the value at the given row for the named column.
// The second return is false if the column does not exist.
func (t *Table) Cell(row int, column string) (any, bool) {
	for i, c := range t.Columns {
		if c == column {
			return t.Rows[row][i], true
		}
	}
	return nil, false
}

// Strings renders every row with NULL cells as empty strings, for output
// formatting and CSV encoding.
func (t *Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		out = append(out, cells)
	}
	return out
}

// WriteCSV encodes the table, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range t.Strings() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to a CSV file.
func (t *Table) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := t.WriteCSV(f); err != nil {
		return err
	}
	return f.Close()
}

// ReadCSV decodes a table from CSV, treating the first record as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := New(header...)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = v
		}
		if err := t.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Equal reports whether two tables have the same columns and row values.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, c := range t.Columns {
		if other.Columns[i] != c {
			return false
		}
	}
	a, b := t.Strings(), other.Strings()
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
