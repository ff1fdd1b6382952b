package http

import (
	"finsimples/internal/auth"
	"finsimples/internal/core"
	"finsimples/internal/services"
	"finsimples/internal/sheets"
)

// Wire shapes. Core types carry no JSON tags; the API names below are the
// ones clients depend on.

type installmentInfoDTO struct {
	TotalInstallments  int `json:"totalInstallments"`
	CurrentInstallment int `json:"currentInstallment"`
}

type transactionDTO struct {
	ID              string               `json:"id"`
	Description     string               `json:"description"`
	Amount          core.Money           `json:"amount"`
	Type            core.TransactionType `json:"type"`
	Category        string               `json:"category"`
	Date            core.Date            `json:"date"`
	IsRecurring     bool                 `json:"isRecurring"`
	Frequency       core.Frequency       `json:"frequency,omitempty"`
	EndDate         *core.Date           `json:"endDate,omitempty"`
	InstallmentInfo *installmentInfoDTO  `json:"installmentInfo,omitempty"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		Date:        tx.Date,
		IsRecurring: tx.Plan.IsRecurring(),
	}
	if rec, ok := tx.Plan.Recurrence(); ok {
		dto.Frequency = rec.Every
		if !rec.EndDate.IsZero() {
			end := rec.EndDate
			dto.EndDate = &end
		}
	}
	if inst, ok := tx.Plan.Installment(); ok {
		dto.InstallmentInfo = &installmentInfoDTO{TotalInstallments: inst.Total, CurrentInstallment: inst.Current}
	}
	return dto
}

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionDTO(tx)
	}
	return out
}

// transactionRequest is the body of POST /api/transactions.
type transactionRequest struct {
	Description  string               `json:"description"`
	Amount       core.Money           `json:"amount"`
	Type         core.TransactionType `json:"type"`
	Category     string               `json:"category"`
	Date         core.Date            `json:"date"`
	IsRecurring  bool                 `json:"isRecurring"`
	Frequency    core.Frequency       `json:"frequency"`
	EndDate      core.Date            `json:"endDate"`
	Installments int                  `json:"installments"`
}

func (req transactionRequest) draft() core.Draft {
	plan := core.SinglePlan()
	if req.IsRecurring {
		plan = core.RecurringPlan(req.Frequency, req.EndDate)
	}
	return core.Draft{
		Description:  req.Description,
		Amount:       req.Amount,
		Type:         req.Type,
		Category:     req.Category,
		Date:         req.Date,
		Plan:         plan,
		Installments: req.Installments,
	}
}

type occurrenceDTO struct {
	Transaction transactionDTO `json:"transaction"`
	Date        core.Date      `json:"date"`
}

type categoryDTO struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Type      core.TransactionType `json:"type"`
	IsDefault bool                 `json:"isDefault"`
}

func toCategoryDTOs(cats []core.Category) []categoryDTO {
	out := make([]categoryDTO, len(cats))
	for i, c := range cats {
		out[i] = categoryDTO{ID: c.ID, Name: c.Name, Type: c.Type, IsDefault: c.IsDefault}
	}
	return out
}

type categoryRequest struct {
	Name string               `json:"name"`
	Type core.TransactionType `json:"type"`
}

type goalDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Target      core.Money      `json:"target"`
	Current     core.Money      `json:"current"`
	Category    string          `json:"category"`
	Deadline    core.Date       `json:"deadline"`
	Progress    float64         `json:"progress"`
	DaysLeft    int             `json:"daysLeft"`
	Status      core.GoalStatus `json:"status"`
	StatusLabel string          `json:"statusLabel"`
}

func toGoalDTOs(goals []services.EvaluatedGoal) []goalDTO {
	out := make([]goalDTO, len(goals))
	for i, g := range goals {
		out[i] = goalDTO{
			ID:          g.ID,
			Name:        g.Name,
			Target:      g.Target,
			Current:     g.Current,
			Category:    g.Category,
			Deadline:    g.Deadline,
			Progress:    g.Progress,
			DaysLeft:    g.DaysLeft,
			Status:      g.Status,
			StatusLabel: g.Status.Label(),
		}
	}
	return out
}

type goalRequest struct {
	Name     string     `json:"name"`
	Target   core.Money `json:"target"`
	Current  core.Money `json:"current"`
	Category string     `json:"category"`
	Deadline core.Date  `json:"deadline"`
}

func (req goalRequest) goal(id string) core.Goal {
	return core.Goal{
		ID:       id,
		Name:     req.Name,
		Target:   req.Target,
		Current:  req.Current,
		Category: req.Category,
		Deadline: req.Deadline,
	}
}

type dashboardDTO struct {
	Period             core.Period      `json:"period"`
	Summary            core.Summary     `json:"summary"`
	ExpensesByCategory []core.Bucket    `json:"expensesByCategory"`
	Chart              core.Chart       `json:"chart"`
	Recent             []transactionDTO `json:"recentTransactions"`
}

type reportDTO struct {
	Year       int           `json:"year"`
	Month      int           `json:"month"`
	Summary    core.Summary  `json:"summary"`
	Monthly    []core.Bucket `json:"monthlyData"`
	Categories []core.Bucket `json:"categoryData"`
	Years      []int         `json:"availableYears"`
}

type tableDTO struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func toTableDTO(t sheets.Table) tableDTO {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return tableDTO{Columns: t.Columns, Rows: rows}
}

type mappingDTO struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

func (m mappingDTO) mapping() services.Mapping {
	return services.Mapping(m)
}

// importSourceDTO selects the rows to import. Source is "csv" (with Content,
// the file text), "google" (with SpreadsheetID and Range) or "sample".
type importSourceDTO struct {
	Source        string `json:"source"`
	Content       string `json:"content,omitempty"`
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
	Range         string `json:"range,omitempty"`
}

type importRequest struct {
	importSourceDTO
	Mapping mappingDTO `json:"mapping"`
}

type skippedRowDTO struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type importResultDTO struct {
	Imported     int              `json:"imported"`
	Transactions []transactionDTO `json:"transactions"`
	Skipped      []skippedRowDTO  `json:"skipped"`
}

type meDTO struct {
	Authenticated bool           `json:"authenticated"`
	User          *auth.Identity `json:"user,omitempty"`
}
