package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"finsimples/internal/backend"
	"finsimples/internal/cache"
	"finsimples/internal/core"
	applog "finsimples/internal/log"
)

// DeletePolicy decides what happens to transactions of a deleted category.
type DeletePolicy string

const (
	// DeleteOrphan keeps the transactions with their category name.
	DeleteOrphan DeletePolicy = "orphan"
	// DeleteCascade removes the transactions together with the category.
	DeleteCascade DeletePolicy = "cascade"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DeleteOrphan, DeleteCascade:
		return p, nil
	case "":
		return DeleteOrphan, nil
	}
	return "", fmt.Errorf("unknown category delete policy %q", s)
}

// FallbackCategory receives transactions imported without a category.
const FallbackCategory = "Outros"

var ErrUnknownCategory = errors.New("category does not exist")

// DefaultCategories are seeded for an owner on their first category read.
var DefaultCategories = []core.Category{
	{Name: "Alimentação", Type: core.Expense},
	{Name: "Moradia", Type: core.Expense},
	{Name: "Transporte", Type: core.Expense},
	{Name: "Saúde", Type: core.Expense},
	{Name: "Educação", Type: core.Expense},
	{Name: "Lazer", Type: core.Expense},
	{Name: FallbackCategory, Type: core.Expense},
	{Name: "Salário", Type: core.Income},
	{Name: "Freelance", Type: core.Income},
	{Name: "Investimentos", Type: core.Income},
	{Name: FallbackCategory, Type: core.Income},
}

// CategoryService manages an owner's categories.
type CategoryService struct {
	store       backend.CategoryStore
	invalidator cache.Invalidator
	policy      DeletePolicy
	seeding     singleflight.Group
}

func NewCategoryService(store backend.CategoryStore, invalidator cache.Invalidator, policy DeletePolicy) *CategoryService {
	if policy == "" {
		policy = DeleteOrphan
	}
	return &CategoryService{store: store, invalidator: invalidator, policy: policy}
}

// Policy returns the configured delete policy.
func (s *CategoryService) Policy() DeletePolicy { return s.policy }

// List returns the owner's categories ordered by name, optionally only those
// of typ. An owner with no categories gets the defaults first. Anonymous
// callers get an empty list.
func (s *CategoryService) List(ctx context.Context, owner string, typ core.TransactionType) ([]core.Category, error) {
	if owner == "" {
		return nil, nil
	}
	if typ != "" && !typ.Valid() {
		return nil, invalid("type", core.ErrInvalidType)
	}

	cats, err := s.store.ListCategories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		if cats, err = s.seed(ctx, owner); err != nil {
			return nil, err
		}
	}

	if typ == "" {
		return cats, nil
	}
	out := cats[:0:0]
	for _, c := range cats {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out, nil
}

// seed inserts the defaults once even when several requests race on an
// owner's first read.
func (s *CategoryService) seed(ctx context.Context, owner string) ([]core.Category, error) {
	v, err, _ := s.seeding.Do(owner, func() (any, error) {
		cats, err := s.store.ListCategories(ctx, owner)
		if err != nil || len(cats) > 0 {
			return cats, err
		}

		defaults := make([]core.Category, len(DefaultCategories))
		for i, c := range DefaultCategories {
			c.IsDefault = true
			defaults[i] = c
		}
		if _, err := s.store.InsertCategories(ctx, owner, defaults); err != nil {
			return nil, fmt.Errorf("seed default categories: %w", err)
		}
		invalidate(ctx, s.invalidator, owner, cache.Categories)

		applog.FromContext(ctx).InfoContext(ctx, "Seeded default categories",
			applog.FieldOwnerID, owner,
			applog.FieldRecords, len(defaults))

		return s.store.ListCategories(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Category), nil
}

// Exists reports whether owner has a category called name, of any type.
func (s *CategoryService) Exists(ctx context.Context, owner, name string) (bool, error) {
	cats, err := s.List(ctx, owner, "")
	if err != nil {
		return false, err
	}
	for _, c := range cats {
		if core.SameName(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *CategoryService) Create(ctx context.Context, owner string, c core.Category) (core.Category, error) {
	if owner == "" {
		return core.Category{}, ErrUnauthenticated
	}
	c.Name = sanitizeText(c.Name)
	c.IsDefault = false
	if err := c.Validate(); err != nil {
		return core.Category{}, invalid(fieldOf(err), err)
	}

	saved, err := s.store.InsertCategories(ctx, owner, []core.Category{c})
	if err != nil {
		s.logFailure(ctx, "Failed to create category", err, applog.OpCreate, owner)
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	invalidate(ctx, s.invalidator, owner, cache.Categories)
	return saved[0], nil
}

// Update renames or retypes a category. Transactions keep the old name.
func (s *CategoryService) Update(ctx context.Context, owner string, c core.Category) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	c.Name = sanitizeText(c.Name)
	if err := c.Validate(); err != nil {
		return invalid(fieldOf(err), err)
	}

	if err := s.store.UpdateCategory(ctx, owner, c); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logFailure(ctx, "Failed to update category", err, applog.OpUpdate, owner)
		}
		return fmt.Errorf("update category: %w", err)
	}
	invalidate(ctx, s.invalidator, owner, cache.Categories)
	return nil
}

// DeleteResult reports the outcome of a category deletion.
type DeleteResult struct {
	Policy              DeletePolicy
	RemovedTransactions int64
}

// Delete removes a non-default category and applies the delete policy.
func (s *CategoryService) Delete(ctx context.Context, owner, id string) (DeleteResult, error) {
	if owner == "" {
		return DeleteResult{}, ErrUnauthenticated
	}

	c, err := s.store.GetCategory(ctx, owner, id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("get category: %w", err)
	}
	if c.IsDefault {
		return DeleteResult{}, ErrDefaultCategory
	}

	cascade := s.policy == DeleteCascade
	removed, err := s.store.DeleteCategory(ctx, owner, id, cascade)
	if err != nil {
		s.logFailure(ctx, "Failed to delete category", err, applog.OpDelete, owner)
		return DeleteResult{}, fmt.Errorf("delete category: %w", err)
	}

	kinds := []cache.Kind{cache.Categories}
	if cascade {
		kinds = append(kinds, cache.Transactions)
	}
	invalidate(ctx, s.invalidator, owner, kinds...)

	applog.FromContext(ctx).InfoContext(ctx, "Category deleted",
		applog.FieldOwnerID, owner,
		applog.FieldCategory, c.Name,
		"policy", s.policy,
		"removed_transactions", removed)

	return DeleteResult{Policy: s.policy, RemovedTransactions: removed}, nil
}

func (s *CategoryService) logFailure(ctx context.Context, msg string, err error, op, owner string) {
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogError(ctx, msg, err, applog.ComponentCategory, op, applog.NewFields().WithOwner(owner))
}
