package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsimples/internal/cache"
	"finsimples/internal/core"
	"finsimples/internal/storage/memory"
)

func TestGoalService(t *testing.T) {
	ctx := context.Background()
	inv := &recordingInvalidator{}
	svc := NewGoalService(memory.New(), inv)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	goal := core.Goal{
		Name:     "Reserva <i>de emergência</i>",
		Target:   core.Money{Cents: 1000000},
		Current:  core.Money{Cents: 250000},
		Category: "Investimentos",
		Deadline: core.NewDate(2024, 6, 20),
	}

	if _, err := svc.Create(ctx, "", goal); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous Create() error = %v", err)
	}
	bad := goal
	bad.Target = core.Money{}
	if _, err := svc.Create(ctx, "u1", bad); !IsValidation(err) {
		t.Fatalf("Create(zero target) error = %v, want validation", err)
	}

	saved, err := svc.Create(ctx, "u1", goal)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if saved.Name != "Reserva de emergência" {
		t.Errorf("name = %q", saved.Name)
	}

	goals, err := svc.List(ctx, "u1", now)
	if err != nil || len(goals) != 1 {
		t.Fatalf("List() = %+v, %v", goals, err)
	}
	if goals[0].Status != core.GoalUrgent || goals[0].DaysLeft != 19 {
		t.Errorf("evaluation = %+v", goals[0].GoalProgress)
	}

	saved.Current = saved.Target
	if err := svc.Update(ctx, "u1", saved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	goals, _ = svc.List(ctx, "u1", now)
	if goals[0].Status != core.GoalCompleted {
		t.Errorf("status after update = %s", goals[0].Status)
	}

	if err := svc.Delete(ctx, "u2", saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() by other owner error = %v", err)
	}
	if err := svc.Delete(ctx, "u1", saved.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if goals, _ := svc.List(ctx, "", now); goals != nil {
		t.Errorf("anonymous List() = %v", goals)
	}

	for _, k := range inv.kinds() {
		if k != cache.Goals {
			t.Errorf("invalidated %s, want only goals", k)
		}
	}
	if len(inv.got) != 3 {
		t.Errorf("invalidations = %d, want 3", len(inv.got))
	}
}
