package services

import (
	"testing"
	"time"

	"finsimples/internal/core"
)

func TestOccurrenceStrategies(t *testing.T) {
	tests := []struct {
		name     string
		strategy OccurrenceStrategy
		start    core.Date
		from     core.Date
		want     string
	}{
		{"weekly not started", WeeklyStrategy{}, core.NewDate(2024, 3, 10), core.NewDate(2024, 3, 1), "2024-03-10"},
		{"weekly same day", WeeklyStrategy{}, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 15), "2024-01-15"},
		{"weekly mid week", WeeklyStrategy{}, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 16), "2024-01-22"},
		{"monthly later this month", MonthlyStrategy{}, core.NewDate(2024, 1, 20), core.NewDate(2024, 3, 5), "2024-03-20"},
		{"monthly passed this month", MonthlyStrategy{}, core.NewDate(2024, 1, 5), core.NewDate(2024, 3, 20), "2024-04-05"},
		{"monthly clamps to february", MonthlyStrategy{}, core.NewDate(2024, 1, 31), core.NewDate(2024, 2, 10), "2024-02-29"},
		{"monthly clamps in common year", MonthlyStrategy{}, core.NewDate(2023, 1, 31), core.NewDate(2023, 2, 10), "2023-02-28"},
		{"monthly across year", MonthlyStrategy{}, core.NewDate(2023, 11, 15), core.NewDate(2024, 12, 16), "2025-01-15"},
		{"yearly this year", YearlyStrategy{}, core.NewDate(2020, 6, 1), core.NewDate(2024, 3, 1), "2024-06-01"},
		{"yearly next year", YearlyStrategy{}, core.NewDate(2020, 6, 1), core.NewDate(2024, 7, 1), "2025-06-01"},
		{"yearly leap day", YearlyStrategy{}, core.NewDate(2024, 2, 29), core.NewDate(2025, 1, 1), "2025-02-28"},
		{"yearly leap day again", YearlyStrategy{}, core.NewDate(2024, 2, 29), core.NewDate(2027, 3, 1), "2028-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.strategy.Next(tt.start, tt.from)
			if got.String() != tt.want {
				t.Errorf("Next(%s, %s) = %s, want %s", tt.start, tt.from, got, tt.want)
			}
		})
	}
}

func TestGetOccurrenceStrategy(t *testing.T) {
	for _, f := range []core.Frequency{core.Weekly, core.Monthly, core.Yearly} {
		if _, err := GetOccurrenceStrategy(f); err != nil {
			t.Errorf("GetOccurrenceStrategy(%s) error = %v", f, err)
		}
	}
	if _, err := GetOccurrenceStrategy("daily"); err == nil {
		t.Error("GetOccurrenceStrategy(daily) expected error")
	}
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	base := core.Transaction{Amount: core.Money{Cents: 100}, Type: core.Expense, Category: "Moradia"}

	rent := base
	rent.Description = "Aluguel"
	rent.Date = core.NewDate(2024, 1, 10)
	rent.Plan = core.RecurringPlan(core.Monthly, core.Date{})

	gym := base
	gym.Description = "Academia"
	gym.Date = core.NewDate(2024, 3, 1)
	gym.Plan = core.RecurringPlan(core.Weekly, core.Date{})

	ended := base
	ended.Description = "Curso"
	ended.Date = core.NewDate(2023, 1, 1)
	ended.Plan = core.RecurringPlan(core.Monthly, core.NewDate(2024, 3, 1))

	single := base
	single.Description = "Mercado"
	single.Date = core.NewDate(2024, 3, 20)

	got := Upcoming(now, []core.Transaction{rent, gym, ended, single})
	if len(got) != 2 {
		t.Fatalf("Upcoming() = %d items, want 2", len(got))
	}
	if got[0].Transaction.Description != "Academia" || got[0].Date.String() != "2024-03-15" {
		t.Errorf("first = %s on %s", got[0].Transaction.Description, got[0].Date)
	}
	if got[1].Transaction.Description != "Aluguel" || got[1].Date.String() != "2024-04-10" {
		t.Errorf("second = %s on %s", got[1].Transaction.Description, got[1].Date)
	}
}

func TestUpcomingUsesLocalCalendarDay(t *testing.T) {
	// 23:30 in São Paulo is already July 1st in UTC.
	now := time.Date(2024, 6, 30, 23, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	rent := core.Transaction{
		Description: "Aluguel",
		Amount:      core.Money{Cents: 150000},
		Type:        core.Expense,
		Category:    "Moradia",
		Date:        core.NewDate(2024, 1, 30),
		Plan:        core.RecurringPlan(core.Monthly, core.Date{}),
	}

	got := Upcoming(now, []core.Transaction{rent})
	if len(got) != 1 || got[0].Date.String() != "2024-06-30" {
		t.Errorf("Upcoming() = %+v, want rent due 2024-06-30", got)
	}
}
