package core

import (
	"strings"
	"time"
)

// Period names a dashboard/list filter.
type Period string

const (
	CurrentMonth Period = "current-month"
	LastSixMonth Period = "last-6-months"
	CurrentYear  Period = "current-year"
	AllTime      Period = "all"
)

// Predicate selects transactions. Implementations only look at the date.
type Predicate func(Transaction) bool

// ParsePeriod maps a raw value to a Period. Unknown values fall back to AllTime.
func ParsePeriod(s string) Period {
	switch p := Period(strings.TrimSpace(strings.ToLower(s))); p {
	case CurrentMonth, LastSixMonth, CurrentYear:
		return p
	}
	return AllTime
}

// Resolve returns the predicate for period evaluated at now.
//
// last-6-months keeps everything from the first day of the month five months
// before now, with no upper bound, so future-dated rows are included.
func Resolve(now time.Time, period Period) Predicate {
	year, month, _ := now.Date()
	switch ParsePeriod(string(period)) {
	case CurrentMonth:
		return func(tx Transaction) bool {
			y, m, _ := tx.Date.Date()
			return y == year && m == month
		}
	case LastSixMonth:
		start := time.Date(year, month-5, 1, 0, 0, 0, 0, time.UTC)
		return func(tx Transaction) bool {
			return !tx.Date.Before(start)
		}
	case CurrentYear:
		return func(tx Transaction) bool {
			return tx.Date.Year() == year
		}
	}
	return func(Transaction) bool { return true }
}

// ReportFilter selects a calendar year, or a single month of it when month is 1..12.
func ReportFilter(year, month int) Predicate {
	return func(tx Transaction) bool {
		y, m, _ := tx.Date.Date()
		if y != year {
			return false
		}
		return month < 1 || month > 12 || int(m) == month
	}
}

// Filter returns the transactions matching pred, preserving order.
func Filter(txs []Transaction, pred Predicate) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if pred(tx) {
			out = append(out, tx)
		}
	}
	return out
}
