package sheets

import (
	"errors"
	"testing"
)

func TestNewTable(t *testing.T) {
	tbl, err := NewTable([][]string{
		{" Data ", "Descrição", "Valor"},
		{"", "  ", ""},
		{"2024-12-01", "Supermercado", "-320.50"},
		{"2024-12-02", "Salário"},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if len(tbl.Columns) != 3 || tbl.Columns[0] != "Data" {
		t.Errorf("Columns = %q", tbl.Columns)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2 (blank row dropped)", len(tbl.Rows))
	}
	if got := Cell(tbl.Rows[1], tbl.ColumnIndex("valor")); got != "" {
		t.Errorf("short row cell = %q, want empty", got)
	}
	if got := tbl.ColumnIndex("DESCRIÇÃO"); got != 1 {
		t.Errorf("ColumnIndex() = %d, want 1", got)
	}
	if got := tbl.ColumnIndex(""); got != -1 {
		t.Errorf("ColumnIndex(\"\") = %d, want -1", got)
	}
	if got := tbl.Head(1); len(got.Rows) != 1 {
		t.Errorf("Head(1) rows = %d", len(got.Rows))
	}
	if got := tbl.Head(10); len(got.Rows) != 2 {
		t.Errorf("Head(10) rows = %d", len(got.Rows))
	}
}

func TestNewTableEmpty(t *testing.T) {
	for _, raw := range [][][]string{nil, {{"", ""}}} {
		if _, err := NewTable(raw); !errors.Is(err, ErrNoHeader) {
			t.Errorf("NewTable(%q) error = %v, want %v", raw, err, ErrNoHeader)
		}
	}
}
