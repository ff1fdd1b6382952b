package google

import (
	"testing"
)

func TestValuesToTable(t *testing.T) {
	values := [][]interface{}{
		{"Data", "Descrição", "Valor"},
		{"2024-12-01", "Supermercado", "-320,50"},
		{},
		{"2024-12-02", "Salário", 5400},
		{"2024-12-03", nil, "-185.30"},
	}

	tbl, err := valuesToTable(values)
	if err != nil {
		t.Fatalf("valuesToTable() error = %v", err)
	}
	if len(tbl.Columns) != 3 || tbl.Columns[1] != "Descrição" {
		t.Errorf("Columns = %q", tbl.Columns)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("Rows = %d, want 3", len(tbl.Rows))
	}
	if tbl.Rows[1][2] != "5400" {
		t.Errorf("numeric cell = %q, want 5400", tbl.Rows[1][2])
	}
	if tbl.Rows[2][1] != "" {
		t.Errorf("nil cell = %q, want empty", tbl.Rows[2][1])
	}
}

func TestValuesToTableEmpty(t *testing.T) {
	if _, err := valuesToTable(nil); err == nil {
		t.Error("valuesToTable(nil) expected error")
	}
}

func TestParseSpreadsheetID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1AbC-xyz_09", "1AbC-xyz_09", false},
		{" 1AbC ", "1AbC", false},
		{"https://docs.google.com/spreadsheets/d/1AbC-xyz/edit#gid=0", "1AbC-xyz", false},
		{"https://docs.google.com/spreadsheets/u/0/d/1AbC/view", "1AbC", false},
		{"https://example.com/nothing/here", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpreadsheetID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpreadsheetID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSpreadsheetID() = %q, want %q", got, tt.want)
			}
		})
	}
}
