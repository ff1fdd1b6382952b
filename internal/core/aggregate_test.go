package core

import (
	"reflect"
	"testing"
	"time"
)

func TestByCategoryOrderAndSums(t *testing.T) {
	txs := []Transaction{
		tx(Expense, 1000, "Lazer", NewDate(2024, 1, 1)),
		tx(Income, 5000, "Salário", NewDate(2024, 1, 2)),
		tx(Expense, 250, "Lazer", NewDate(2024, 1, 3)),
		tx(Income, 300, "Lazer", NewDate(2024, 1, 4)),
	}
	got := ByCategory(txs)
	want := []Bucket{
		{Key: "Lazer", Income: Money{Cents: 300}, Expense: Money{Cents: 1250}},
		{Key: "Salário", Income: Money{Cents: 5000}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ByCategory() = %+v, want %+v", got, want)
	}
	if got := ByCategory(nil); len(got) != 0 {
		t.Errorf("ByCategory(nil) = %+v, want empty", got)
	}
}

func TestExpensesByCategory(t *testing.T) {
	txs := []Transaction{
		tx(Income, 5000, "Salário", NewDate(2024, 1, 2)),
		tx(Expense, 700, "Casa", NewDate(2024, 1, 3)),
	}
	got := ExpensesByCategory(txs)
	if len(got) != 1 || got[0].Key != "Casa" || got[0].Expense.Cents != 700 {
		t.Errorf("ExpensesByCategory() = %+v", got)
	}
}

func TestByMonthPreSeedsEmptyWindow(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	got := ByMonth(nil, TrailingMonths(now, 6))
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
	wantKeys := []string{"out/23", "nov/23", "dez/23", "jan/24", "fev/24", "mar/24"}
	for i, b := range got {
		if b.Key != wantKeys[i] {
			t.Errorf("bucket %d key = %q, want %q", i, b.Key, wantKeys[i])
		}
		if b.Income.Cents != 0 || b.Expense.Cents != 0 {
			t.Errorf("bucket %d = %+v, want zero totals", i, b)
		}
	}
}

func TestByMonthIgnoresOutsideWindow(t *testing.T) {
	txs := []Transaction{
		tx(Income, 100, "a", NewDate(2024, 2, 1)),
		tx(Expense, 40, "b", NewDate(2024, 2, 28)),
		tx(Income, 999, "c", NewDate(2023, 2, 1)),
	}
	got := ByMonth(txs, YearMonths(2024))
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	if got[1].Income.Cents != 100 || got[1].Expense.Cents != 40 {
		t.Errorf("fev bucket = %+v", got[1])
	}
	var total int64
	for _, b := range got {
		total += b.Income.Cents + b.Expense.Cents
	}
	if total != 140 {
		t.Errorf("total = %d, want 140", total)
	}
}

func TestByWeekOfMonthDropsDaysAfter28(t *testing.T) {
	txs := []Transaction{
		tx(Expense, 100, "a", NewDate(2024, 1, 1)),
		tx(Expense, 200, "a", NewDate(2024, 1, 7)),
		tx(Expense, 300, "a", NewDate(2024, 1, 8)),
		tx(Expense, 400, "a", NewDate(2024, 1, 28)),
		tx(Expense, 500, "a", NewDate(2024, 1, 30)), // week 5, no bucket
	}
	got := ByWeekOfMonth(txs)
	want := []Bucket{
		{Key: "Sem 1", Expense: Money{Cents: 300}},
		{Key: "Sem 2", Expense: Money{Cents: 300}},
		{Key: "Sem 3"},
		{Key: "Sem 4", Expense: Money{Cents: 400}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ByWeekOfMonth() = %+v, want %+v", got, want)
	}
	if w := WeekOfMonth(NewDate(2024, 1, 30)); w != 5 {
		t.Errorf("WeekOfMonth(30) = %d, want 5", w)
	}
}

func TestSpanMonths(t *testing.T) {
	now := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(Income, 1, "a", NewDate(2023, 12, 5)),
		tx(Income, 1, "a", NewDate(2023, 11, 30)),
	}
	got := SpanMonths(now, txs)
	if len(got) != 4 || got[0].Label() != "nov/23" || got[3].Label() != "fev/24" {
		t.Errorf("SpanMonths() = %+v", got)
	}
	if got := SpanMonths(now, nil); len(got) != 6 {
		t.Errorf("SpanMonths(nil) len = %d, want 6", len(got))
	}
}

func TestChartFor(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(Income, 1000, "a", NewDate(2024, 5, 3)),
		tx(Expense, 500, "b", NewDate(2024, 1, 3)),
	}
	cases := []struct {
		period Period
		gran   Granularity
		n      int
	}{
		{CurrentMonth, GranularityWeek, 4},
		{LastSixMonth, GranularityMonth, 6},
		{CurrentYear, GranularityMonth, 12},
		{AllTime, GranularityMonth, 5},
	}
	for _, tc := range cases {
		c := ChartFor(tc.period, now, txs)
		if c.Granularity != tc.gran || len(c.Buckets) != tc.n {
			t.Errorf("ChartFor(%s) = %s with %d buckets, want %s with %d", tc.period, c.Granularity, len(c.Buckets), tc.gran, tc.n)
		}
	}
	if c := ChartFor(CurrentMonth, now, txs); c.Buckets[0].Income.Cents != 1000 || c.Buckets[0].Expense.Cents != 0 {
		t.Errorf("current-month week 1 = %+v", c.Buckets[0])
	}
}

func TestYears(t *testing.T) {
	txs := []Transaction{
		tx(Income, 1, "a", NewDate(2022, 1, 1)),
		tx(Income, 1, "a", NewDate(2024, 1, 1)),
		tx(Income, 1, "a", NewDate(2022, 6, 1)),
		tx(Income, 1, "a", NewDate(2023, 1, 1)),
	}
	if got, want := Years(txs), []int{2024, 2023, 2022}; !reflect.DeepEqual(got, want) {
		t.Errorf("Years() = %v, want %v", got, want)
	}
}
