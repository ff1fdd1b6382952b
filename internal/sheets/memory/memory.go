// Package memory provides an in-process import source holding a fixed table.
package memory

import (
	"context"
	"slices"

	"finsimples/internal/sheets"
)

// Source serves a copy of the table it was built with.
type Source struct {
	table sheets.Table
}

var _ sheets.TableReader = (*Source)(nil)

func New(table sheets.Table) *Source {
	return &Source{table: table}
}

// Sample is the demonstration spreadsheet offered before a file is uploaded.
func Sample() *Source {
	return New(sheets.Table{
		Columns: []string{"Data", "Descrição", "Valor", "Categoria", "Tipo", "Conta", "Observações"},
		Rows: [][]string{
			{"2024-12-01", "Supermercado", "-320.50", "Alimentação"},
			{"2024-12-02", "Salário", "5400.00", "Trabalho"},
			{"2024-12-03", "Conta de Luz", "-185.30", "Casa"},
		},
	})
}

func (s *Source) ReadTable(ctx context.Context) (sheets.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheets.Table{}, err
	}
	out := sheets.Table{Columns: slices.Clone(s.table.Columns)}
	for _, r := range s.table.Rows {
		out.Rows = append(out.Rows, slices.Clone(r))
	}
	return out, nil
}
