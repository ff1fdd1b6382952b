package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finsimples/internal/backend"
	"finsimples/internal/cache"
	"finsimples/internal/core"
	applog "finsimples/internal/log"
	"finsimples/internal/sheets"
	sheetcsv "finsimples/internal/sheets/csv"
)

// PreviewRows is the default number of rows shown before an import.
const PreviewRows = 5

// Mapping names the source columns feeding each transaction field. Category
// and Type are optional.
type Mapping struct {
	Date        string
	Description string
	Amount      string
	Category    string
	Type        string
}

// SkippedRow is a source row that could not be imported. Row is 1-based and
// counts data rows only.
type SkippedRow struct {
	Row    int
	Reason string
}

type ImportResult struct {
	Imported []core.Transaction
	Skipped  []SkippedRow
}

// ImportService turns spreadsheet rows into transactions.
type ImportService struct {
	store       backend.TransactionStore
	invalidator cache.Invalidator
}

func NewImportService(store backend.TransactionStore, invalidator cache.Invalidator) *ImportService {
	return &ImportService{store: store, invalidator: invalidator}
}

// Preview returns the columns and at most limit rows of source. A limit of
// zero or less means PreviewRows.
func (s *ImportService) Preview(ctx context.Context, source sheets.TableReader, limit int) (sheets.Table, error) {
	if limit <= 0 {
		limit = PreviewRows
	}
	t, err := source.ReadTable(ctx)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("read source: %w", err)
	}
	return t.Head(limit), nil
}

// Import maps every row of source and stores the valid ones in one batch.
// Nothing is written when no row is valid.
func (s *ImportService) Import(ctx context.Context, owner string, source sheets.TableReader, m Mapping) (ImportResult, error) {
	if owner == "" {
		return ImportResult{}, ErrUnauthenticated
	}

	t, err := source.ReadTable(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read source: %w", err)
	}
	cols, err := resolveMapping(t, m)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	var records []core.Transaction
	for i, row := range t.Rows {
		tx, err := cols.transaction(row)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Row: i + 1, Reason: err.Error()})
			continue
		}
		records = append(records, tx)
	}

	logger := applog.FromContext(ctx)
	if len(records) > 0 {
		saved, err := s.store.InsertTransactions(ctx, owner, records)
		if err != nil {
			applog.NewStructuredLogger(logger).LogError(ctx, "Failed to import transactions", err,
				applog.ComponentImport, applog.OpImport, applog.NewFields().WithOwner(owner))
			return ImportResult{}, fmt.Errorf("import transactions: %w", err)
		}
		result.Imported = saved
		invalidate(ctx, s.invalidator, owner, cache.Transactions)
	}

	logger.InfoContext(ctx, "Import finished",
		applog.FieldOwnerID, owner,
		applog.FieldRecords, len(result.Imported),
		"skipped", len(result.Skipped))
	return result, nil
}

// Template is an example file for the CSV import.
func (s *ImportService) Template() ([]byte, error) {
	var buf bytes.Buffer
	err := sheetcsv.Write(&buf, [][]string{
		{"Data", "Descrição", "Valor", "Categoria", "Tipo"},
		{"2024-12-01", "Supermercado", "-320.50", "Alimentação", "despesa"},
		{"2024-12-05", "Salário", "5400.00", "Salário", "receita"},
	})
	if err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

type columns struct {
	date, description, amount, category, typ int
}

func resolveMapping(t sheets.Table, m Mapping) (columns, error) {
	required := func(field, name string) (int, error) {
		if strings.TrimSpace(name) == "" {
			return -1, invalid(field, errors.New("column mapping is required"))
		}
		i := t.ColumnIndex(name)
		if i < 0 {
			return -1, invalid(field, fmt.Errorf("column %q not found", name))
		}
		return i, nil
	}

	var c columns
	var err error
	if c.date, err = required("date", m.Date); err != nil {
		return c, err
	}
	if c.description, err = required("description", m.Description); err != nil {
		return c, err
	}
	if c.amount, err = required("amount", m.Amount); err != nil {
		return c, err
	}
	c.category = t.ColumnIndex(m.Category)
	c.typ = t.ColumnIndex(m.Type)
	return c, nil
}

func (c columns) transaction(row []string) (core.Transaction, error) {
	date, err := parseImportDate(sheets.Cell(row, c.date))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, negative, err := parseImportAmount(sheets.Cell(row, c.amount))
	if err != nil {
		return core.Transaction{}, err
	}

	typ := core.Income
	if negative {
		typ = core.Expense
	}
	if raw := sheets.Cell(row, c.typ); raw != "" {
		if typ, err = parseImportType(raw); err != nil {
			return core.Transaction{}, err
		}
	}

	category := sanitizeText(sheets.Cell(row, c.category))
	if category == "" {
		category = FallbackCategory
	}

	tx := core.Transaction{
		Description: sanitizeText(sheets.Cell(row, c.description)),
		Amount:      amount,
		Type:        typ,
		Category:    category,
		Date:        date,
		Plan:        core.SinglePlan(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

var importDateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

func parseImportDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("invalid date %q", s)
}

// parseImportAmount reads 1234.56, 1.234,56 and 1234,56 style numbers with an
// optional R$ prefix and sign, returning the magnitude and whether it was negative.
func parseImportAmount(s string) (core.Money, bool, error) {
	s = strings.NewReplacer("R$", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, false, fmt.Errorf("%w: %q", err, s)
	}
	return core.Money{Cents: cents}, negative, nil
}

func parseImportType(s string) (core.TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "receita", "entrada":
		return core.Income, nil
	case "expense", "despesa", "saída", "saida":
		return core.Expense, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidType, s)
}
