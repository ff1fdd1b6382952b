package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"finsimples/internal/cache"
	"finsimples/internal/core"
	"finsimples/internal/storage/memory"
)

func TestParseDeletePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DeletePolicy
		wantErr bool
	}{
		{"", DeleteOrphan, false},
		{"orphan", DeleteOrphan, false},
		{" Cascade ", DeleteCascade, false},
		{"purge", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDeletePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDeletePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestCategoryService_Seeding(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewCategoryService(store, nil, DeleteOrphan)

	if cats, err := svc.List(ctx, "", ""); err != nil || cats != nil {
		t.Fatalf("anonymous List() = %v, %v", cats, err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.List(ctx, "u1", ""); err != nil {
				t.Errorf("List() error = %v", err)
			}
		}()
	}
	wg.Wait()

	all, _ := store.ListCategories(ctx, "u1")
	if len(all) != len(DefaultCategories) {
		t.Fatalf("stored categories = %d, want %d", len(all), len(DefaultCategories))
	}
	for _, c := range all {
		if !c.IsDefault {
			t.Errorf("%s not marked default", c.Name)
		}
	}

	income, err := svc.List(ctx, "u1", core.Income)
	if err != nil {
		t.Fatalf("List(income) error = %v", err)
	}
	for _, c := range income {
		if c.Type != core.Income {
			t.Errorf("List(income) returned %+v", c)
		}
	}

	if _, err := svc.List(ctx, "u1", "transfer"); !IsValidation(err) {
		t.Errorf("List(bad type) error = %v, want validation", err)
	}
}

func TestCategoryService_Exists(t *testing.T) {
	svc := NewCategoryService(memory.New(), nil, DeleteOrphan)
	for name, want := range map[string]bool{"salário": true, " Moradia ": true, "Viagem": false} {
		got, err := svc.Exists(context.Background(), "u1", name)
		if err != nil || got != want {
			t.Errorf("Exists(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
}

func TestCategoryService_CRUD(t *testing.T) {
	ctx, rec := cache.WithRecorder(context.Background())
	svc := NewCategoryService(memory.New(), nil, DeleteOrphan)

	if _, err := svc.Create(ctx, "", core.Category{Name: "Pets", Type: core.Expense}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "u1", core.Category{Name: " ", Type: core.Expense}); !IsValidation(err) {
		t.Errorf("Create(blank) error = %v, want validation", err)
	}

	c, err := svc.Create(ctx, "u1", core.Category{Name: "Pets", Type: core.Expense, IsDefault: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.IsDefault {
		t.Error("user category created as default")
	}

	c.Name = "Animais"
	if err := svc.Update(ctx, "u1", c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if ok, _ := svc.Exists(ctx, "u1", "Animais"); !ok {
		t.Error("renamed category not found")
	}

	res, err := svc.Delete(ctx, "u1", c.ID)
	if err != nil || res.Policy != DeleteOrphan {
		t.Fatalf("Delete() = %+v, %v", res, err)
	}
	if _, err := svc.Delete(ctx, "u1", c.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}

	if !slices.Equal(rec.Kinds(), []cache.Kind{cache.Categories}) {
		t.Errorf("recorded kinds = %v", rec.Kinds())
	}
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("default refused", func(t *testing.T) {
		svc := NewCategoryService(memory.New(), nil, DeleteCascade)
		cats, _ := svc.List(ctx, "u1", "")
		if _, err := svc.Delete(ctx, "u1", cats[0].ID); !errors.Is(err, ErrDefaultCategory) {
			t.Errorf("Delete(default) error = %v, want %v", err, ErrDefaultCategory)
		}
	})

	for _, policy := range []DeletePolicy{DeleteOrphan, DeleteCascade} {
		t.Run(string(policy), func(t *testing.T) {
			store := memory.New()
			inv := &recordingInvalidator{}
			cats := NewCategoryService(store, inv, policy)
			txs := NewTransactionService(store, cats, inv)

			c, err := cats.Create(ctx, "u1", core.Category{Name: "Pets", Type: core.Expense})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			d := draft()
			d.Category = "Pets"
			if _, err := txs.Create(ctx, "u1", d); err != nil {
				t.Fatalf("Create(tx) error = %v", err)
			}

			res, err := cats.Delete(ctx, "u1", c.ID)
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			remaining, _ := txs.List(ctx, "u1")

			wantRemoved, wantLeft := int64(0), 1
			if policy == DeleteCascade {
				wantRemoved, wantLeft = 1, 0
			}
			if res.RemovedTransactions != wantRemoved || len(remaining) != wantLeft {
				t.Errorf("removed = %d, left = %d", res.RemovedTransactions, len(remaining))
			}

			last := inv.got[len(inv.got)-1]
			if last.Has(cache.Transactions) != (policy == DeleteCascade) || !last.Has(cache.Categories) {
				t.Errorf("invalidation = %+v", last)
			}
		})
	}
}
