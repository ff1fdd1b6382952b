package services

import (
	"context"
	"time"

	"finsimples/internal/core"
)

// RecentLimit is how many transactions the dashboard lists.
const RecentLimit = 10

// Dashboard is the overview of one period.
type Dashboard struct {
	Period             core.Period
	Summary            core.Summary
	ExpensesByCategory []core.Bucket
	Chart              core.Chart
	Recent             []core.Transaction
}

// Report covers a year, or one month of it.
type Report struct {
	Year       int
	Month      int // 0 for the whole year
	Summary    core.Summary
	Monthly    []core.Bucket // every month of Year
	Categories []core.Bucket
	Years      []int // years with data, newest first
}

// ReportService builds read models from an owner's transactions.
type ReportService struct {
	transactions *TransactionService
}

func NewReportService(transactions *TransactionService) *ReportService {
	return &ReportService{transactions: transactions}
}

func (s *ReportService) Dashboard(ctx context.Context, owner string, period core.Period, now time.Time) (Dashboard, error) {
	all, err := s.transactions.List(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	txs := core.Filter(all, core.Resolve(now, period))

	recent := txs
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	return Dashboard{
		Period:             period,
		Summary:            core.Totals(txs),
		ExpensesByCategory: core.ExpensesByCategory(txs),
		Chart:              core.ChartFor(period, now, txs),
		Recent:             recent,
	}, nil
}

// Report summarizes year, or only month of it when month is 1..12. The
// monthly series always spans the whole year.
func (s *ReportService) Report(ctx context.Context, owner string, year, month int) (Report, error) {
	if month < 0 || month > 12 {
		return Report{}, invalid("month", core.ErrInvalidMonth)
	}
	all, err := s.transactions.List(ctx, owner)
	if err != nil {
		return Report{}, err
	}

	selected := core.Filter(all, core.ReportFilter(year, month))
	return Report{
		Year:       year,
		Month:      month,
		Summary:    core.Totals(selected),
		Monthly:    core.ByMonth(core.Filter(all, core.ReportFilter(year, 0)), core.YearMonths(year)),
		Categories: core.ByCategory(selected),
		Years:      core.Years(all),
	}, nil
}
