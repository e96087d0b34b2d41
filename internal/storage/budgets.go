package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/core"
)

// UpsertBudget inserts or replaces the monthly limit for one category.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, monthly_limit_cents, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, category) DO UPDATE SET
		   monthly_limit_cents = excluded.monthly_limit_cents,
		   updated_at = excluded.updated_at`,
		b.UserID, b.Category, b.MonthlyLimit.Cents, b.UpdatedAt)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, category, monthly_limit_cents, updated_at
		 FROM budgets WHERE user_id = ?
		 ORDER BY category ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.UserID, &b.Category, &b.MonthlyLimit.Cents, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID int64, category string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND category = ?`, userID, category)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.CreatedAt = time.Now().UTC()

	var targetDate sql.NullTime
	if g.TargetDate != nil {
		targetDate = sql.NullTime{Time: g.TargetDate.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, name, target_cents, current_cents, target_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, targetDate, g.CreatedAt)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}

	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal insert id: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_cents, current_cents, target_date, created_at
		 FROM goals WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_cents, current_cents, target_date, created_at
		 FROM goals WHERE id = ? AND user_id = ?`,
		id, userID)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

// UpdateGoalCurrent overwrites the accumulated amount of a goal.
func (r *SQLiteRepository) UpdateGoalCurrent(ctx context.Context, userID, id int64, current core.Money) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET current_cents = ? WHERE id = ? AND user_id = ?`,
		current.Cents, id, userID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal current: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal current rows affected: %w", err)
	}
	if affected == 0 {
		return core.Goal{}, core.ErrNotFound
	}
	return r.GetGoal(ctx, userID, id)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func scanGoal(row entryScanner) (core.Goal, error) {
	var g core.Goal
	var targetDate sql.NullTime
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents,
		&g.CurrentAmount.Cents, &targetDate, &g.CreatedAt)
	if err != nil {
		return core.Goal{}, err
	}
	if targetDate.Valid {
		t := targetDate.Time
		g.TargetDate = &t
	}
	return g, nil
}
