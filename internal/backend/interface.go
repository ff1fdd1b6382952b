package backend

import (
	"context"

	"finsimples/internal/core"
)

// Ports for the data store. Every call is scoped by owner id; a record owned
// by someone else behaves as if it did not exist (core.ErrNotFound).
type (
	TransactionStore interface {
		// ListTransactions returns the owner's transactions, newest date first.
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		// InsertTransactions stores all records or none and returns them with ids assigned.
		InsertTransactions(ctx context.Context, ownerID string, txs []core.Transaction) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, ownerID, id string) error
	}

	CategoryStore interface {
		// ListCategories returns the owner's categories ordered by name.
		ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
		InsertCategories(ctx context.Context, ownerID string, cats []core.Category) ([]core.Category, error)
		GetCategory(ctx context.Context, ownerID, id string) (core.Category, error)
		UpdateCategory(ctx context.Context, ownerID string, c core.Category) error
		// DeleteCategory removes the category. With cascade it also deletes the
		// owner's transactions filed under it (core.Category.Owns: same type,
		// name equal ignoring case) in the same unit of work, and reports how
		// many were removed.
		DeleteCategory(ctx context.Context, ownerID, id string, cascade bool) (int64, error)
	}

	GoalStore interface {
		ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error)
		InsertGoal(ctx context.Context, ownerID string, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, ownerID string, g core.Goal) error
		DeleteGoal(ctx context.Context, ownerID, id string) error
	}

	// Store is the full data store.
	Store interface {
		TransactionStore
		CategoryStore
		GoalStore
		Ping(ctx context.Context) error
	}
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Store   Store
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
