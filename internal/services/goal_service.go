package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsimples/internal/backend"
	"finsimples/internal/cache"
	"finsimples/internal/core"
	applog "finsimples/internal/log"
)

// EvaluatedGoal is a goal with its progress at read time.
type EvaluatedGoal struct {
	core.Goal
	core.GoalProgress
}

type GoalService struct {
	store       backend.GoalStore
	invalidator cache.Invalidator
}

func NewGoalService(store backend.GoalStore, invalidator cache.Invalidator) *GoalService {
	return &GoalService{store: store, invalidator: invalidator}
}

// List returns the owner's goals evaluated at now.
func (s *GoalService) List(ctx context.Context, owner string, now time.Time) ([]EvaluatedGoal, error) {
	if owner == "" {
		return nil, nil
	}
	goals, err := s.store.ListGoals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]EvaluatedGoal, len(goals))
	for i, g := range goals {
		out[i] = EvaluatedGoal{Goal: g, GoalProgress: core.Evaluate(g, now)}
	}
	return out, nil
}

func (s *GoalService) Create(ctx context.Context, owner string, g core.Goal) (core.Goal, error) {
	if owner == "" {
		return core.Goal{}, ErrUnauthenticated
	}
	g = cleanGoal(g)
	if err := g.Validate(); err != nil {
		return core.Goal{}, invalid(fieldOf(err), err)
	}
	saved, err := s.store.InsertGoal(ctx, owner, g)
	if err != nil {
		s.logFailure(ctx, "Failed to create goal", err, applog.OpCreate, owner)
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	invalidate(ctx, s.invalidator, owner, cache.Goals)
	return saved, nil
}

func (s *GoalService) Update(ctx context.Context, owner string, g core.Goal) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	g = cleanGoal(g)
	if err := g.Validate(); err != nil {
		return invalid(fieldOf(err), err)
	}
	if err := s.store.UpdateGoal(ctx, owner, g); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logFailure(ctx, "Failed to update goal", err, applog.OpUpdate, owner)
		}
		return fmt.Errorf("update goal: %w", err)
	}
	invalidate(ctx, s.invalidator, owner, cache.Goals)
	return nil
}

func (s *GoalService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	if err := s.store.DeleteGoal(ctx, owner, id); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logFailure(ctx, "Failed to delete goal", err, applog.OpDelete, owner)
		}
		return fmt.Errorf("delete goal: %w", err)
	}
	invalidate(ctx, s.invalidator, owner, cache.Goals)
	return nil
}

func cleanGoal(g core.Goal) core.Goal {
	g.Name = sanitizeText(g.Name)
	g.Category = sanitizeText(g.Category)
	return g
}

func (s *GoalService) logFailure(ctx context.Context, msg string, err error, op, owner string) {
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogError(ctx, msg, err, applog.ComponentGoal, op, applog.NewFields().WithOwner(owner))
}
