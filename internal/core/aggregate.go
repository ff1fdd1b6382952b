package core

import (
	"fmt"
	"sort"
	"time"
)

// Bucket accumulates income and expense totals of one group.
type Bucket struct {
	Key     string `json:"name"`
	Income  Money  `json:"receitas"`
	Expense Money  `json:"despesas"`
}

func (b *Bucket) add(tx Transaction) {
	switch tx.Type {
	case Income:
		b.Income = b.Income.Add(tx.Amount)
	case Expense:
		b.Expense = b.Expense.Add(tx.Amount)
	}
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(d Date) Month {
	y, m, _ := d.Date()
	return Month{Year: y, Month: m}
}

func (m Month) next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) before(o Month) bool {
	return m.Year < o.Year || (m.Year == o.Year && m.Month < o.Month)
}

var shortMonths = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Label renders the month as "jan/24".
func (m Month) Label() string {
	return fmt.Sprintf("%s/%02d", shortMonths[m.Month-1], m.Year%100)
}

// Window is an ordered list of months to pre-seed.
type Window []Month

// TrailingMonths returns the n months ending with now's month, oldest first.
func TrailingMonths(now time.Time, n int) Window {
	if n <= 0 {
		return nil
	}
	y, m, _ := now.Date()
	first := time.Date(y, m-time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)
	w := make(Window, 0, n)
	cur := Month{Year: first.Year(), Month: first.Month()}
	for i := 0; i < n; i++ {
		w = append(w, cur)
		cur = cur.next()
	}
	return w
}

// YearMonths returns January..December of year.
func YearMonths(year int) Window {
	w := make(Window, 0, 12)
	for m := time.January; m <= time.December; m++ {
		w = append(w, Month{Year: year, Month: m})
	}
	return w
}

// SpanMonths covers the earliest transaction month through now's month. With
// no transactions it falls back to the six trailing months.
func SpanMonths(now time.Time, txs []Transaction) Window {
	if len(txs) == 0 {
		return TrailingMonths(now, 6)
	}
	start := MonthOf(txs[0].Date)
	for _, tx := range txs[1:] {
		if m := MonthOf(tx.Date); m.before(start) {
			start = m
		}
	}
	end := MonthOf(DateOf(now))
	if end.before(start) {
		end = start
	}
	var w Window
	for cur := start; !end.before(cur); cur = cur.next() {
		w = append(w, cur)
	}
	return w
}

// ByCategory groups by category in order of first appearance.
func ByCategory(txs []Transaction) []Bucket {
	index := make(map[string]int)
	var out []Bucket
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, Bucket{Key: tx.Category})
		}
		out[i].add(tx)
	}
	return out
}

// ExpensesByCategory groups only expenses by category, for pie charts.
func ExpensesByCategory(txs []Transaction) []Bucket {
	var expenses []Transaction
	for _, tx := range txs {
		if tx.Type == Expense {
			expenses = append(expenses, tx)
		}
	}
	return ByCategory(expenses)
}

// ByMonth returns one bucket per window month, in window order. Transactions
// outside the window are ignored.
func ByMonth(txs []Transaction, w Window) []Bucket {
	out := make([]Bucket, len(w))
	index := make(map[Month]int, len(w))
	for i, m := range w {
		out[i] = Bucket{Key: m.Label()}
		index[m] = i
	}
	for _, tx := range txs {
		if i, ok := index[MonthOf(tx.Date)]; ok {
			out[i].add(tx)
		}
	}
	return out
}

const weeksPerMonth = 4

// WeekOfMonth maps a day to ceil(day/7).
func WeekOfMonth(d Date) int {
	return (d.Day() + 6) / 7
}

// ByWeekOfMonth returns the "Sem 1".."Sem 4" buckets. Days 29-31 fall into
// week 5, which has no bucket, and are dropped.
func ByWeekOfMonth(txs []Transaction) []Bucket {
	out := make([]Bucket, weeksPerMonth)
	for i := range out {
		out[i] = Bucket{Key: fmt.Sprintf("Sem %d", i+1)}
	}
	for _, tx := range txs {
		if w := WeekOfMonth(tx.Date); w <= weeksPerMonth {
			out[w-1].add(tx)
		}
	}
	return out
}

// Granularity of a chart series.
type Granularity string

const (
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Chart is a time series ready for rendering.
type Chart struct {
	Granularity Granularity `json:"granularity"`
	Buckets     []Bucket    `json:"data"`
}

// ChartFor builds the time series shown for period: weeks of the current
// month, six trailing months, the months of the current year, or the full span.
func ChartFor(period Period, now time.Time, txs []Transaction) Chart {
	txs = Filter(txs, Resolve(now, period))
	switch ParsePeriod(string(period)) {
	case CurrentMonth:
		return Chart{Granularity: GranularityWeek, Buckets: ByWeekOfMonth(txs)}
	case LastSixMonth:
		return Chart{Granularity: GranularityMonth, Buckets: ByMonth(txs, TrailingMonths(now, 6))}
	case CurrentYear:
		return Chart{Granularity: GranularityMonth, Buckets: ByMonth(txs, YearMonths(now.Year()))}
	}
	return Chart{Granularity: GranularityMonth, Buckets: ByMonth(txs, SpanMonths(now, txs))}
}

// Years lists the distinct transaction years, newest first.
func Years(txs []Transaction) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, tx := range txs {
		y := tx.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
