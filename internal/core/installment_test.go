package core

import (
	"errors"
	"testing"
)

func TestExpandSingle(t *testing.T) {
	d := Draft{
		Description: "Academia",
		Amount:      Money{Cents: 9990},
		Type:        Expense,
		Category:    "Saúde",
		Date:        NewDate(2024, 5, 10),
		Plan:        RecurringPlan(Monthly, Date{}),
	}
	for _, n := range []int{0, 1} {
		d.Installments = n
		got := Expand(d)
		if len(got) != 1 {
			t.Fatalf("Expand(n=%d) len = %d, want 1", n, len(got))
		}
		if got[0].Description != "Academia" || got[0].Amount.Cents != 9990 {
			t.Errorf("Expand(n=%d) = %+v", n, got[0])
		}
		if !got[0].Plan.IsRecurring() {
			t.Errorf("Expand(n=%d) dropped the recurring plan", n)
		}
	}
}

func TestExpandInstallments(t *testing.T) {
	d := Draft{
		Description:  "Notebook",
		Amount:       Money{Cents: 10000},
		Type:         Expense,
		Category:     "Educação",
		Date:         NewDate(2024, 1, 31),
		Plan:         RecurringPlan(Monthly, Date{}),
		Installments: 3,
	}
	got := Expand(d)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	wantDates := []Date{NewDate(2024, 1, 31), NewDate(2024, 3, 2), NewDate(2024, 3, 31)}
	var sum int64
	for i, rec := range got {
		if rec.Amount.Cents != 3333 {
			t.Errorf("record %d amount = %d, want 3333", i, rec.Amount.Cents)
		}
		sum += rec.Amount.Cents
		if !rec.Date.Equal(wantDates[i].Time) {
			t.Errorf("record %d date = %s, want %s", i, rec.Date, wantDates[i])
		}
		wantDesc := InstallmentDescription("Notebook", i+1, 3)
		if rec.Description != wantDesc {
			t.Errorf("record %d description = %q, want %q", i, rec.Description, wantDesc)
		}
		if rec.Plan.IsRecurring() {
			t.Errorf("record %d is recurring", i)
		}
		in, ok := rec.Plan.Installment()
		if !ok || in.Current != i+1 || in.Total != 3 {
			t.Errorf("record %d installment = %+v, %v", i, in, ok)
		}
		if err := rec.Validate(); err != nil {
			t.Errorf("record %d invalid: %v", i, err)
		}
	}
	// the one cent remainder is not redistributed
	if sum != 9999 {
		t.Errorf("sum = %d, want 9999", sum)
	}
}

func TestInstallmentDescription(t *testing.T) {
	if got, want := InstallmentDescription("TV", 2, 10), "TV - Parcela 2 de 10"; got != want {
		t.Errorf("InstallmentDescription() = %q, want %q", got, want)
	}
}

func TestDraftValidate(t *testing.T) {
	d := Draft{Description: "x", Amount: Money{Cents: 1}, Type: Income, Category: "Outros", Date: NewDate(2024, 1, 1)}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	d.Installments = -1
	if err := d.Validate(); err == nil {
		t.Errorf("expected error for negative installments")
	}
	d.Installments = 0
	d.Plan = InstallmentPlan(1, 2)
	if err := d.Validate(); err == nil {
		t.Errorf("expected error for installment plan on a draft")
	}
}

func TestDraftValidateInstallments(t *testing.T) {
	base := Draft{Description: "Geladeira", Amount: Money{Cents: 360000}, Type: Expense, Category: "Moradia", Date: NewDate(2024, 1, 15)}
	long := func(n int) string {
		b := make([]rune, n)
		for i := range b {
			b[i] = 'a'
		}
		return string(b)
	}

	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
	}{
		{"max count", func(d *Draft) { d.Installments = MaxInstallments }, nil},
		{"above max count", func(d *Draft) { d.Installments = MaxInstallments + 1 }, ErrInvalidInstallment},
		{"split to zero cents", func(d *Draft) { d.Amount = Money{Cents: 1}; d.Installments = 3 }, ErrInvalidAmount},
		{"one cent single", func(d *Draft) { d.Amount = Money{Cents: 1} }, nil},
		{"suffix overflows description", func(d *Draft) { d.Description = long(195); d.Installments = 3 }, ErrDescriptionTooLong},
		{"long description single", func(d *Draft) { d.Description = long(195) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			if err := d.Validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
