package dataset

import (
	"fmt"

	"gosynth/domain/core"
)

// Table is raw tabular input the way readers deliver it: named, with an
// ordered header row and row-major string cells. It carries no statistics;
// building a Dataset from it is where modeling happens.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// NewTable creates an empty table with the given header row.
func NewTable(name string, headers []string) *Table {
	return &Table{
		Name:    name,
		Headers: append([]string(nil), headers...),
	}
}

// AddRow appends one data row. Width must match the header row.
func (t *Table) AddRow(row []string) error {
	if len(row) != len(t.Headers) {
		return core.NewValidationError("row",
			fmt.Sprintf("width %d does not match %d headers", len(row), len(t.Headers)))
	}
	t.Rows = append(t.Rows, append([]string(nil), row...))
	return nil
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

// ColumnIndex returns the position of a named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Headers {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Column extracts one named column as a cell slice.
func (t *Table) Column(name string) ([]string, bool) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Validate ensures the table is internally consistent: at least one
// column, unique headers, rectangular rows.
func (t *Table) Validate() error {
	if len(t.Headers) == 0 {
		return core.NewValidationError("headers", "table has no columns")
	}
	seen := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		if h == "" {
			return core.NewValidationError("headers", "empty column name")
		}
		if seen[h] {
			return core.NewValidationError("headers", fmt.Sprintf("duplicate column %q", h))
		}
		seen[h] = true
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return core.NewValidationError("rows",
				fmt.Sprintf("row %d has %d cells, expected %d", i, len(row), len(t.Headers)))
		}
	}
	return nil
}
