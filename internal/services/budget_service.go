package services

import (
	"context"
	"fmt"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// BudgetService manages per-category spending ceilings and their alerts.
type BudgetService struct {
	storage *storage.SQLiteRepository
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage}
}

// Upsert creates or replaces the budget for one category.
func (s *BudgetService) Upsert(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return s.storage.UpsertBudget(ctx, b)
}

func (s *BudgetService) List(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.storage.ListBudgets(ctx, userID)
}

func (s *BudgetService) Delete(ctx context.Context, userID int64, category string) error {
	return s.storage.DeleteBudget(ctx, userID, category)
}

// Alerts recomputes the consumption state of every budget against the current
// monthly expense totals. Categories without entries count as zero spend.
func (s *BudgetService) Alerts(ctx context.Context, userID int64) ([]core.BudgetAlert, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	spent, err := s.storage.SumExpensesByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}

	alerts := make([]core.BudgetAlert, 0, len(budgets))
	for _, b := range budgets {
		alerts = append(alerts, b.Evaluate(spent[b.Category]))
	}
	return alerts, nil
}
