package memory

import (
	"context"
	"testing"
)

func TestSample(t *testing.T) {
	tbl, err := Sample().ReadTable(context.Background())
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(tbl.Columns) != 7 || len(tbl.Rows) != 3 {
		t.Fatalf("sample = %d columns, %d rows", len(tbl.Columns), len(tbl.Rows))
	}
	if got := tbl.Rows[1][tbl.ColumnIndex("Valor")]; got != "5400.00" {
		t.Errorf("Salário amount = %q", got)
	}
}

func TestReadTableReturnsCopy(t *testing.T) {
	s := Sample()
	first, _ := s.ReadTable(context.Background())
	first.Rows[0][1] = "changed"
	first.Columns[0] = "changed"

	second, _ := s.ReadTable(context.Background())
	if second.Rows[0][1] != "Supermercado" || second.Columns[0] != "Data" {
		t.Errorf("source mutated through returned table")
	}
}

func TestReadTableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Sample().ReadTable(ctx); err == nil {
		t.Error("ReadTable() expected context error")
	}
}
