// Package services orchestrates the core engine with the store, the query
// cache and the import sources.
//
// This file implements the Strategy Pattern for projecting recurring
// transactions. Each frequency has its own strategy that computes the next
// occurrence of a series; nothing is ever generated or stored.
package services

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"finsimples/internal/core"
)

// OccurrenceStrategy computes occurrences of a recurring transaction.
type OccurrenceStrategy interface {
	// Next returns the first occurrence of the series anchored at start that
	// falls on or after from.
	Next(start, from core.Date) core.Date
}

// WeeklyStrategy repeats every 7 days.
type WeeklyStrategy struct{}

func (WeeklyStrategy) Next(start, from core.Date) core.Date {
	if !start.Before(from.Time) {
		return start
	}
	days := int(from.Sub(start.Time).Hours() / 24)
	weeks := (days + 6) / 7
	return core.Date{Time: start.AddDate(0, 0, 7*weeks)}
}

// MonthlyStrategy repeats on the anchor day, clamped to the month length.
type MonthlyStrategy struct{}

func (MonthlyStrategy) Next(start, from core.Date) core.Date {
	if !start.Before(from.Time) {
		return start
	}
	n := (from.Year()-start.Year())*12 + int(from.Month()) - int(start.Month())
	next := monthOccurrence(start, n)
	if next.Before(from.Time) {
		next = monthOccurrence(start, n+1)
	}
	return next
}

// YearlyStrategy repeats on the anchor month and day; Feb 29 falls on Feb 28
// in common years.
type YearlyStrategy struct{}

func (YearlyStrategy) Next(start, from core.Date) core.Date {
	if !start.Before(from.Time) {
		return start
	}
	n := from.Year() - start.Year()
	next := monthOccurrence(start, 12*n)
	if next.Before(from.Time) {
		next = monthOccurrence(start, 12*(n+1))
	}
	return next
}

// monthOccurrence is start moved n months ahead with the day clamped.
func monthOccurrence(start core.Date, n int) core.Date {
	first := time.Date(start.Year(), start.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return core.NewDate(first.Year(), int(first.Month()), min(start.Day(), last))
}

// occurrenceStrategies maps frequencies to their strategies.
var occurrenceStrategies = map[core.Frequency]OccurrenceStrategy{
	core.Weekly:  WeeklyStrategy{},
	core.Monthly: MonthlyStrategy{},
	core.Yearly:  YearlyStrategy{},
}

// GetOccurrenceStrategy returns the strategy for a frequency.
func GetOccurrenceStrategy(frequency core.Frequency) (OccurrenceStrategy, error) {
	s, ok := occurrenceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return s, nil
}

// Occurrence is the next date a recurring transaction is expected.
type Occurrence struct {
	Transaction core.Transaction
	Date        core.Date
}

// Upcoming lists the next occurrence on or after today of every recurring
// transaction whose series has not ended, soonest first.
func Upcoming(now time.Time, txs []core.Transaction) []Occurrence {
	today := core.DateOf(now)
	var out []Occurrence
	for _, tx := range txs {
		rec, ok := tx.Plan.Recurrence()
		if !ok {
			continue
		}
		strategy, err := GetOccurrenceStrategy(rec.Every)
		if err != nil {
			continue
		}
		next := strategy.Next(tx.Date, today)
		if !rec.EndDate.IsZero() && next.After(rec.EndDate.Time) {
			continue
		}
		out = append(out, Occurrence{Transaction: tx, Date: next})
	}
	slices.SortStableFunc(out, func(a, b Occurrence) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Transaction.Description, b.Transaction.Description)
	})
	return out
}
