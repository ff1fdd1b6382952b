package core

import "testing"

func TestTotals(t *testing.T) {
	txs := []Transaction{
		tx(Income, 10000, "Salário", NewDate(2024, 1, 1)),
		tx(Expense, 4000, "Lazer", NewDate(2024, 1, 2)),
		tx(Income, 2500, "Freelance", NewDate(2024, 1, 3)),
	}
	got := Totals(txs)
	if got.TotalIncome.Cents != 12500 || got.TotalExpense.Cents != 4000 || got.Balance.Cents != 8500 {
		t.Errorf("Totals() = %+v, want 125/40/85", got)
	}
	if neg := Totals(txs[1:2]); neg.Balance.Cents != -4000 {
		t.Errorf("Totals(expense only).Balance = %d, want -4000", neg.Balance.Cents)
	}
}
