package core

import "fmt"

// MaxInstallments is the largest installment count a draft may request.
const MaxInstallments = 120

// Draft is a transaction as submitted by the user, before installment expansion.
type Draft struct {
	Description  string
	Amount       Money
	Type         TransactionType
	Category     string
	Date         Date
	Plan         Plan // single or recurring
	Installments int
}

// Validate checks the draft and, for installment drafts, every record Expand
// would produce from it: the split amount must stay positive and the suffixed
// description must still fit.
func (d Draft) Validate() error {
	if d.Installments < 0 || d.Installments > MaxInstallments {
		return ErrInvalidInstallment
	}
	if _, ok := d.Plan.Installment(); ok {
		return ErrInvalidInstallment
	}
	if err := d.transaction(d.Amount, d.Description, d.Date, d.Plan).Validate(); err != nil {
		return err
	}
	if d.Installments < 2 {
		return nil
	}
	for _, rec := range Expand(d) {
		if err := rec.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (d Draft) transaction(amount Money, desc string, date Date, plan Plan) Transaction {
	return Transaction{
		Description: desc,
		Amount:      amount,
		Type:        d.Type,
		Category:    d.Category,
		Date:        date,
		Plan:        plan,
	}
}

// InstallmentDescription is the description of installment i of n.
func InstallmentDescription(desc string, i, n int) string {
	return fmt.Sprintf("%s - Parcela %d de %d", desc, i, n)
}

// Expand turns a draft into the records to persist. With fewer than two
// installments the draft maps to one record carrying its own plan. Otherwise it
// yields n records, each amount/n rounded to cents, dated i-1 months after the
// draft date with calendar overflow, and never recurring.
func Expand(d Draft) []Transaction {
	n := d.Installments
	if n <= 1 {
		return []Transaction{d.transaction(d.Amount, d.Description, d.Date, d.Plan)}
	}

	each := d.Amount.Split(n)
	out := make([]Transaction, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, d.transaction(
			each,
			InstallmentDescription(d.Description, i, n),
			d.Date.AddMonths(i-1),
			InstallmentPlan(i, n),
		))
	}
	return out
}
