package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.String(); got != "2024-02-29" {
		t.Errorf("String() = %q, want %q", got, "2024-02-29")
	}
	if _, err := ParseDate("29/02/2024"); err == nil {
		t.Errorf("expected error for non ISO date")
	}
}

func TestDateAddMonthsOverflow(t *testing.T) {
	got := NewDate(2024, 1, 31).AddMonths(1)
	if want := NewDate(2024, 3, 2); !got.Equal(want.Time) {
		t.Errorf("AddMonths(1) = %s, want %s", got, want)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestPlanVariant(t *testing.T) {
	var zero Plan
	if zero.Kind() != PlanSingle {
		t.Errorf("zero plan kind = %q, want %q", zero.Kind(), PlanSingle)
	}

	rec := RecurringPlan(Monthly, Date{})
	if _, ok := rec.Installment(); ok {
		t.Errorf("recurring plan reports an installment")
	}
	if r, ok := rec.Recurrence(); !ok || r.Every != Monthly {
		t.Errorf("Recurrence() = %+v, %v", r, ok)
	}

	inst := InstallmentPlan(2, 3)
	if inst.IsRecurring() {
		t.Errorf("installment plan reports recurring")
	}
	if in, ok := inst.Installment(); !ok || in.Current != 2 || in.Total != 3 {
		t.Errorf("Installment() = %+v, %v", in, ok)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		Description: "Mercado",
		Amount:      Money{Cents: 100},
		Type:        Expense,
		Category:    "Alimentação",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrZeroDate},
		{"blank description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, ErrDescriptionTooLong},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"no category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"bad frequency", func(tx *Transaction) { tx.Plan = RecurringPlan("daily", Date{}) }, ErrInvalidFrequency},
		{"end before start", func(tx *Transaction) { tx.Plan = RecurringPlan(Monthly, NewDate(2024, 12, 1)) }, ErrEndBeforeStart},
		{"one installment", func(tx *Transaction) { tx.Plan = InstallmentPlan(1, 1) }, ErrInvalidInstallment},
		{"installment past total", func(tx *Transaction) { tx.Plan = InstallmentPlan(4, 3) }, ErrInvalidInstallment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{Name: "Reserva", Target: Money{Cents: 100000}, Category: "Poupança", Deadline: NewDate(2025, 6, 1)}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	g.Current = Money{Cents: -1}
	if err := g.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Validate() = %v, want %v", err, ErrInvalidAmount)
	}
}

func TestCategoryOwns(t *testing.T) {
	lazer := Category{Name: "Lazer", Type: Expense}
	tests := []struct {
		category string
		typ      TransactionType
		want     bool
	}{
		{"Lazer", Expense, true},
		{" lazer ", Expense, true},
		{"LAZER", Expense, true},
		{"Lazer", Income, false},
		{"Lazeres", Expense, false},
	}
	for _, tt := range tests {
		tx := Transaction{Category: tt.category, Type: tt.typ}
		if got := lazer.Owns(tx); got != tt.want {
			t.Errorf("Owns(%q, %s) = %v, want %v", tt.category, tt.typ, got, tt.want)
		}
	}
}
