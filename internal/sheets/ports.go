// Package sheets defines the tabular import sources transactions are read from.
package sheets

import (
	"context"
	"errors"
	"strings"
)

var ErrNoHeader = errors.New("table has no header row")

// Table is a spreadsheet as read from a source: a header row of column names
// followed by data rows. Rows may be shorter than the header.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Ports for import sources.
type (
	// TableReader reads one table from a CSV upload, a spreadsheet range or a fixture.
	TableReader interface {
		ReadTable(ctx context.Context) (Table, error)
	}
)

// NewTable splits raw rows into header and data. Fully blank rows are dropped
// and cells are trimmed.
func NewTable(raw [][]string) (Table, error) {
	var rows [][]string
	for _, r := range raw {
		cells := make([]string, len(r))
		blank := true
		for i, c := range r {
			cells[i] = strings.TrimSpace(c)
			if cells[i] != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return Table{}, ErrNoHeader
	}
	return Table{Columns: rows[0], Rows: rows[1:]}, nil
}

// Head returns a table with at most n data rows.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// ColumnIndex finds a column by name, ignoring case and surrounding space.
// It returns -1 when absent.
func (t Table) ColumnIndex(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1
	}
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Cell returns row[i] or "" when the row is short or i is negative.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
