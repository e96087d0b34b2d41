package services

import (
	"context"
	"fmt"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// GoalService manages savings goals. Assigning savings to a goal is capped by
// the user's current monthly savings minus what is already committed.
type GoalService struct {
	storage *storage.SQLiteRepository
	ledger  *LedgerService
}

func NewGoalService(storage *storage.SQLiteRepository, ledger *LedgerService) *GoalService {
	return &GoalService{
		storage: storage,
		ledger:  ledger,
	}
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	g.CurrentAmount = core.Money{}
	return s.storage.CreateGoal(ctx, g)
}

func (s *GoalService) List(ctx context.Context, userID int64) ([]core.Goal, error) {
	return s.storage.ListGoals(ctx, userID)
}

func (s *GoalService) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteGoal(ctx, userID, id)
}

// AssignSavings moves part of the user's available savings into a goal. The
// available amount is monthly income minus monthly expense minus everything
// already assigned across goals.
func (s *GoalService) AssignSavings(ctx context.Context, userID, goalID int64, amount core.Money) (core.Goal, error) {
	goal, err := s.storage.GetGoal(ctx, userID, goalID)
	if err != nil {
		return core.Goal{}, err
	}

	available, err := s.AvailableSavings(ctx, userID)
	if err != nil {
		return core.Goal{}, err
	}

	if err := goal.AssignSavings(amount, available); err != nil {
		return core.Goal{}, err
	}

	return s.storage.UpdateGoalCurrent(ctx, userID, goalID, goal.CurrentAmount)
}

// AvailableSavings is the monthly headroom not yet committed to any goal.
func (s *GoalService) AvailableSavings(ctx context.Context, userID int64) (core.Money, error) {
	income, expense, err := s.ledger.MonthlyTotals(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("monthly totals: %w", err)
	}

	goals, err := s.storage.ListGoals(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("list goals: %w", err)
	}

	available := core.Savings(income, expense)
	for _, g := range goals {
		available.Cents -= g.CurrentAmount.Cents
	}
	return available, nil
}
