package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"finsimples/internal/backend"
	"finsimples/internal/cache"
	"finsimples/internal/core"
	applog "finsimples/internal/log"
)

// TransactionService records and lists an owner's transactions.
type TransactionService struct {
	store       backend.TransactionStore
	categories  *CategoryService
	invalidator cache.Invalidator

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewTransactionService(store backend.TransactionStore, categories *CategoryService, invalidator cache.Invalidator) *TransactionService {
	return &TransactionService{
		store:       store,
		categories:  categories,
		invalidator: invalidator,
		inFlight:    make(map[string]struct{}),
	}
}

// List returns all of the owner's transactions, newest first. Anonymous
// callers get an empty list.
func (s *TransactionService) List(ctx context.Context, owner string) ([]core.Transaction, error) {
	if owner == "" {
		return nil, nil
	}
	txs, err := s.store.ListTransactions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// ListByPeriod returns the owner's transactions inside period at now.
func (s *TransactionService) ListByPeriod(ctx context.Context, owner string, period core.Period, now time.Time) ([]core.Transaction, error) {
	txs, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return core.Filter(txs, core.Resolve(now, period)), nil
}

// Create validates and expands d and stores every resulting record in one
// atomic call. A second submission of the same draft while the first is
// still being saved fails with ErrSubmissionInFlight.
func (s *TransactionService) Create(ctx context.Context, owner string, d core.Draft) ([]core.Transaction, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}

	d.Description = sanitizeText(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	if err := d.Validate(); err != nil {
		return nil, invalid(fieldOf(err), err)
	}

	if s.categories != nil {
		ok, err := s.categories.Exists(ctx, owner, d.Category)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalid("category", fmt.Errorf("%w: %s", ErrUnknownCategory, d.Category))
		}
	}

	key := owner + "|" + fingerprint(d)
	if !s.acquire(key) {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(key)

	records := core.Expand(d)
	saved, err := s.store.InsertTransactions(ctx, owner, records)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Failed to save transactions", err,
			applog.ComponentTransaction, applog.OpCreate,
			applog.NewFields().WithOwner(owner).WithTransaction(d.Description, d.Amount.Cents, d.Category, len(records)))
		return nil, fmt.Errorf("save transactions: %w", err)
	}

	invalidate(ctx, s.invalidator, owner, cache.Transactions)
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogTransactionsCreated(ctx, owner, d.Description, d.Amount.Cents, d.Category, len(saved))

	return saved, nil
}

// Delete removes one transaction.
func (s *TransactionService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Failed to delete transaction", err,
				applog.ComponentTransaction, applog.OpDelete, applog.NewFields().WithOwner(owner))
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	invalidate(ctx, s.invalidator, owner, cache.Transactions)
	return nil
}

// Upcoming projects the next occurrence of each recurring transaction.
func (s *TransactionService) Upcoming(ctx context.Context, owner string, now time.Time) ([]Occurrence, error) {
	txs, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return Upcoming(now, txs), nil
}

func (s *TransactionService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *TransactionService) release(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

func fingerprint(d core.Draft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%s|%s|%s|%s|%d", d.Description, d.Amount.Cents, d.Type, d.Category, d.Date, d.Plan.Kind(), d.Installments)
	if rec, ok := d.Plan.Recurrence(); ok {
		fmt.Fprintf(&b, "|%s|%s", rec.Every, rec.EndDate)
	}
	return b.String()
}
