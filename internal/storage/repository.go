package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"finsimples/internal/core"

	_ "modernc.org/sqlite"
)

const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)"

type SQLiteRepository struct {
	db *sql.DB
}

// installmentInfo is the JSON stored in transactions.installment_info.
type installmentInfo struct {
	TotalInstallments  int `json:"totalInstallments"`
	CurrentInstallment int `json:"currentInstallment"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := dbPath + pragmas

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite schema ready", "component", "storage", "db_path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions implements backend.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, description, amount_cents, type, category, date,
		       is_recurring, frequency, end_date, installment_info
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, rowid DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		tx                         core.Transaction
		typ, date                  string
		isRecurring                bool
		frequency, endDate, instal sql.NullString
	)
	if err := rows.Scan(&tx.ID, &tx.OwnerID, &tx.Description, &tx.Amount.Cents, &typ, &tx.Category,
		&date, &isRecurring, &frequency, &endDate, &instal); err != nil {
		return tx, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Type = core.TransactionType(typ)

	d, err := core.ParseDate(date)
	if err != nil {
		return tx, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	tx.Date = d

	switch {
	case isRecurring:
		var end core.Date
		if endDate.Valid && endDate.String != "" {
			if end, err = core.ParseDate(endDate.String); err != nil {
				return tx, fmt.Errorf("transaction %s end date: %w", tx.ID, err)
			}
		}
		tx.Plan = core.RecurringPlan(core.Frequency(frequency.String), end)
	case instal.Valid && instal.String != "":
		var info installmentInfo
		if err := json.Unmarshal([]byte(instal.String), &info); err != nil {
			return tx, fmt.Errorf("transaction %s installment info: %w", tx.ID, err)
		}
		tx.Plan = core.InstallmentPlan(info.CurrentInstallment, info.TotalInstallments)
	default:
		tx.Plan = core.SinglePlan()
	}
	return tx, nil
}

// planColumns maps a plan to is_recurring, frequency, end_date and installment_info.
func planColumns(p core.Plan) (bool, sql.NullString, sql.NullString, sql.NullString, error) {
	var frequency, endDate, instal sql.NullString
	if rec, ok := p.Recurrence(); ok {
		frequency = sql.NullString{String: string(rec.Every), Valid: true}
		if !rec.EndDate.IsZero() {
			endDate = sql.NullString{String: rec.EndDate.String(), Valid: true}
		}
		return true, frequency, endDate, instal, nil
	}
	if in, ok := p.Installment(); ok {
		b, err := json.Marshal(installmentInfo{TotalInstallments: in.Total, CurrentInstallment: in.Current})
		if err != nil {
			return false, frequency, endDate, instal, fmt.Errorf("encode installment info: %w", err)
		}
		instal = sql.NullString{String: string(b), Valid: true}
	}
	return false, frequency, endDate, instal, nil
}

// InsertTransactions implements backend.TransactionStore. The batch is
// written in one SQL transaction.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, ownerID string, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions (id, user_id, description, amount_cents, type, category, date,
		                          is_recurring, frequency, end_date, installment_info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		isRecurring, frequency, endDate, instal, err := planColumns(tx.Plan)
		if err != nil {
			return nil, err
		}
		tx.ID = uuid.NewString()
		tx.OwnerID = ownerID
		if _, err := stmt.ExecContext(ctx, tx.ID, ownerID, tx.Description, tx.Amount.Cents, string(tx.Type),
			tx.Category, tx.Date.String(), isRecurring, frequency, endDate, instal); err != nil {
			return nil, fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
		out[i] = tx
	}

	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "component", "storage", "owner_id", ownerID, "records", len(out))
	return out, nil
}

// DeleteTransaction implements backend.TransactionStore
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOne(res, "transaction", id)
}

func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, core.ErrNotFound)
	}
	return nil
}

// ListCategories implements backend.CategoryStore
func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, is_default
		FROM categories
		WHERE user_id = ?
		ORDER BY name ASC, type ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// GetCategory implements backend.CategoryStore
func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID, id string) (core.Category, error) {
	var c core.Category
	var typ string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, is_default
		FROM categories
		WHERE id = ? AND user_id = ?`, id, ownerID).Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.TransactionType(typ)
	return c, nil
}

// InsertCategories implements backend.CategoryStore
func (r *SQLiteRepository) InsertCategories(ctx context.Context, ownerID string, cats []core.Category) ([]core.Category, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	out := make([]core.Category, len(cats))
	for i, c := range cats {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		c.ID = uuid.NewString()
		c.OwnerID = ownerID
		if _, err := dbtx.ExecContext(ctx, `
			INSERT INTO categories (id, user_id, name, type, is_default) VALUES (?, ?, ?, ?, ?)`,
			c.ID, ownerID, c.Name, string(c.Type), c.IsDefault); err != nil {
			return nil, fmt.Errorf("insert category %q: %w", c.Name, err)
		}
		out[i] = c
	}
	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit categories: %w", err)
	}
	return out, nil
}

// UpdateCategory implements backend.CategoryStore. The default flag is not editable.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, ownerID string, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, type = ? WHERE id = ? AND user_id = ?`,
		c.Name, string(c.Type), c.ID, ownerID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return expectOne(res, "category", c.ID)
}

// DeleteCategory implements backend.CategoryStore
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id string, cascade bool) (int64, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	cat := core.Category{ID: id, OwnerID: ownerID}
	err = dbtx.QueryRowContext(ctx, `SELECT name, type FROM categories WHERE id = ? AND user_id = ?`, id, ownerID).Scan(&cat.Name, &cat.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get category: %w", err)
	}

	if _, err := dbtx.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}

	var removed int64
	if cascade {
		if removed, err = deleteFiledUnder(ctx, dbtx, cat); err != nil {
			return 0, err
		}
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit category delete: %w", err)
	}
	return removed, nil
}

// deleteFiledUnder removes the owner's transactions of cat's type whose
// category matches cat's name. Names are compared in Go because SQLite's
// NOCASE only folds ASCII.
func deleteFiledUnder(ctx context.Context, dbtx *sql.Tx, cat core.Category) (int64, error) {
	rows, err := dbtx.QueryContext(ctx, `SELECT id, category FROM transactions WHERE user_id = ? AND type = ?`, cat.OwnerID, string(cat.Type))
	if err != nil {
		return 0, fmt.Errorf("query category transactions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id, category string
		if err := rows.Scan(&id, &category); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan category transaction: %w", err)
		}
		if core.SameName(category, cat.Name) {
			ids = append(ids, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate category transactions: %w", err)
	}

	for _, id := range ids {
		if _, err := dbtx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, cat.OwnerID); err != nil {
			return 0, fmt.Errorf("delete category transaction: %w", err)
		}
	}
	return int64(len(ids)), nil
}

// ListGoals implements backend.GoalStore
func (r *SQLiteRepository) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, target_cents, current_cents, category, deadline
		FROM goals
		WHERE user_id = ?
		ORDER BY deadline ASC, name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		var deadline string
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Target.Cents, &g.Current.Cents, &g.Category, &deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.Deadline, err = core.ParseDate(deadline); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// InsertGoal implements backend.GoalStore
func (r *SQLiteRepository) InsertGoal(ctx context.Context, ownerID string, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return g, err
	}
	g.ID = uuid.NewString()
	g.OwnerID = ownerID
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, name, target_cents, current_cents, category, deadline)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, ownerID, g.Name, g.Target.Cents, g.Current.Cents, g.Category, g.Deadline.String()); err != nil {
		return g, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

// UpdateGoal implements backend.GoalStore
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, ownerID string, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, target_cents = ?, current_cents = ?, category = ?, deadline = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, g.Target.Cents, g.Current.Cents, g.Category, g.Deadline.String(), g.ID, ownerID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return expectOne(res, "goal", g.ID)
}

// DeleteGoal implements backend.GoalStore
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return expectOne(res, "goal", id)
}
