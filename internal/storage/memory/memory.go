// Package memory is a process-local store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"finsimples/internal/core"
)

type Store struct {
	mu    sync.Mutex
	txs   []core.Transaction // insertion order
	cats  []core.Category
	goals []core.Goal
}

func New() *Store {
	return &Store{}
}

func (s *Store) Ping(context.Context) error { return nil }

// ListTransactions returns the owner's transactions, newest date first and,
// within a date, most recently inserted first.
func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for i := len(s.txs) - 1; i >= 0; i-- {
		if s.txs[i].OwnerID == ownerID {
			out = append(out, s.txs[i])
		}
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out, nil
}

// InsertTransactions validates the whole batch before appending any record.
func (s *Store) InsertTransactions(_ context.Context, ownerID string, txs []core.Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		tx.ID = uuid.NewString()
		tx.OwnerID = ownerID
		out[i] = tx
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, out...)
	return slices.Clone(out), nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.txs, func(tx core.Transaction) bool { return tx.ID == id && tx.OwnerID == ownerID })
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	return nil
}

// ListCategories returns the owner's categories ordered by name.
func (s *Store) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Category
	for _, c := range s.cats {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Category) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(string(a.Type), string(b.Type))
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.categoryIndex(ownerID, id); i >= 0 {
		return s.cats[i], nil
	}
	return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
}

func (s *Store) categoryIndex(ownerID, id string) int {
	return slices.IndexFunc(s.cats, func(c core.Category) bool { return c.ID == id && c.OwnerID == ownerID })
}

func (s *Store) InsertCategories(_ context.Context, ownerID string, cats []core.Category) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Category, len(cats))
	for i, c := range cats {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		dup := slices.ContainsFunc(s.cats, func(e core.Category) bool {
			return e.OwnerID == ownerID && e.Name == c.Name && e.Type == c.Type
		})
		if dup {
			return nil, fmt.Errorf("category %q already exists", c.Name)
		}
		c.ID = uuid.NewString()
		c.OwnerID = ownerID
		out[i] = c
	}
	s.cats = append(s.cats, out...)
	return slices.Clone(out), nil
}

// UpdateCategory changes name and type. The default flag is kept.
func (s *Store) UpdateCategory(_ context.Context, ownerID string, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.categoryIndex(ownerID, c.ID)
	if i < 0 {
		return fmt.Errorf("category %s: %w", c.ID, core.ErrNotFound)
	}
	s.cats[i].Name = c.Name
	s.cats[i].Type = c.Type
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string, cascade bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.categoryIndex(ownerID, id)
	if i < 0 {
		return 0, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	cat := s.cats[i]
	s.cats = slices.Delete(s.cats, i, i+1)

	if !cascade {
		return 0, nil
	}
	before := len(s.txs)
	s.txs = slices.DeleteFunc(s.txs, func(tx core.Transaction) bool {
		return tx.OwnerID == ownerID && cat.Owns(tx)
	})
	return int64(before - len(s.txs)), nil
}

// ListGoals returns the owner's goals by deadline.
func (s *Store) ListGoals(_ context.Context, ownerID string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Goal
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Goal) int {
		if n := a.Deadline.Compare(b.Deadline.Time); n != 0 {
			return n
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) InsertGoal(_ context.Context, ownerID string, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return g, err
	}
	g.ID = uuid.NewString()
	g.OwnerID = ownerID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *Store) goalIndex(ownerID, id string) int {
	return slices.IndexFunc(s.goals, func(g core.Goal) bool { return g.ID == id && g.OwnerID == ownerID })
}

func (s *Store) UpdateGoal(_ context.Context, ownerID string, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.goalIndex(ownerID, g.ID)
	if i < 0 {
		return fmt.Errorf("goal %s: %w", g.ID, core.ErrNotFound)
	}
	g.OwnerID = ownerID
	s.goals[i] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.goalIndex(ownerID, id)
	if i < 0 {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	s.goals = slices.Delete(s.goals, i, i+1)
	return nil
}
