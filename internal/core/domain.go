package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	PlanSingle      PlanKind = "single"
	PlanRecurring   PlanKind = "recurring"
	PlanInstallment PlanKind = "installment"
)

const dateLayout = "2006-01-02"

type (
	TransactionType string

	Frequency string

	PlanKind string

	Date struct {
		time.Time
	}

	// Recurrence describes a transaction that conceptually repeats.
	// Only one record is stored; nothing generates future rows.
	Recurrence struct {
		Every   Frequency
		EndDate Date // zero when open-ended
	}

	// Installment positions a record inside a split purchase.
	Installment struct {
		Total   int
		Current int
	}

	// Plan is the tagged variant attached to every transaction. The zero
	// value is a single (one-off) plan. Exactly one of recurrence and
	// installment can be set, and only through the constructors below.
	Plan struct {
		kind        PlanKind
		recurrence  Recurrence
		installment Installment
	}

	Transaction struct {
		ID          string
		OwnerID     string
		Description string
		Amount      Money
		Type        TransactionType
		Category    string
		Date        Date
		Plan        Plan
	}

	Category struct {
		ID        string
		OwnerID   string
		Name      string
		Type      TransactionType
		IsDefault bool
	}

	Goal struct {
		ID       string
		OwnerID  string
		Name     string
		Target   Money
		Current  Money
		Category string
		Deadline Date
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidInstallment = errors.New("invalid installment")
	ErrEndBeforeStart     = errors.New("end date must not be before the transaction date")
	ErrEmptyName          = errors.New("empty name")
	ErrZeroDate           = errors.New("date cannot be zero")

	// ErrNotFound is returned by stores when an owner-scoped record does not exist.
	ErrNotFound = errors.New("not found")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// AddMonths advances the date by n months. Overflowing days roll into the
// following month (2024-01-31 + 1 month = 2024-03-02).
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.AddDate(0, n, 0)}
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// SinglePlan is the plan of a one-off transaction.
func SinglePlan() Plan {
	return Plan{kind: PlanSingle}
}

// RecurringPlan builds a recurring plan. endDate may be zero.
func RecurringPlan(every Frequency, endDate Date) Plan {
	return Plan{kind: PlanRecurring, recurrence: Recurrence{Every: every, EndDate: endDate}}
}

// InstallmentPlan builds the plan of installment current out of total.
func InstallmentPlan(current, total int) Plan {
	return Plan{kind: PlanInstallment, installment: Installment{Total: total, Current: current}}
}

func (p Plan) Kind() PlanKind {
	if p.kind == "" {
		return PlanSingle
	}
	return p.kind
}

func (p Plan) IsRecurring() bool {
	return p.kind == PlanRecurring
}

func (p Plan) Recurrence() (Recurrence, bool) {
	return p.recurrence, p.kind == PlanRecurring
}

func (p Plan) Installment() (Installment, bool) {
	return p.installment, p.kind == PlanInstallment
}

func (p Plan) validate(date Date) error {
	switch p.Kind() {
	case PlanSingle:
		return nil
	case PlanRecurring:
		if !p.recurrence.Every.Valid() {
			return ErrInvalidFrequency
		}
		if !p.recurrence.EndDate.IsZero() && p.recurrence.EndDate.Before(date.Time) {
			return ErrEndBeforeStart
		}
		return nil
	case PlanInstallment:
		in := p.installment
		if in.Total < 2 || in.Current < 1 || in.Current > in.Total {
			return ErrInvalidInstallment
		}
		return nil
	}
	return fmt.Errorf("unknown plan kind %q", p.kind)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return t.Plan.validate(t.Date)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// SameName reports whether two category names refer to the same category:
// equal after trimming, ignoring case.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Owns reports whether tx is filed under c: same type and same name.
func (c Category) Owns(tx Transaction) bool {
	return tx.Type == c.Type && SameName(tx.Category, c.Name)
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(g.Category) == "" {
		return ErrEmptyCategory
	}
	return g.Deadline.Validate()
}
