package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/core"
)

func (r *SQLiteRepository) CreatePantryItem(ctx context.Context, p core.PantryItem) (core.PantryItem, error) {
	p.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO pantry_items (user_id, name, quantity, unit, price_cents, purchased_at, duration_days, finished, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		p.UserID, p.Name, p.Quantity, p.Unit, p.Price.Cents, p.PurchasedAt, p.DurationDays, p.CreatedAt)
	if err != nil {
		return core.PantryItem{}, fmt.Errorf("insert pantry item: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.PantryItem{}, fmt.Errorf("pantry insert id: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListPantryItems(ctx context.Context, userID int64) ([]core.PantryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, quantity, unit, price_cents, purchased_at, duration_days, finished, finished_at, created_at
		 FROM pantry_items WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	defer rows.Close()

	var items []core.PantryItem
	for rows.Next() {
		p, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) GetPantryItem(ctx context.Context, userID, id int64) (core.PantryItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, quantity, unit, price_cents, purchased_at, duration_days, finished, finished_at, created_at
		 FROM pantry_items WHERE id = ? AND user_id = ?`,
		id, userID)

	p, err := scanPantryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PantryItem{}, core.ErrNotFound
	}
	if err != nil {
		return core.PantryItem{}, fmt.Errorf("get pantry item: %w", err)
	}
	return p, nil
}

// SetPantryFinished toggles the finished flag. Marking unfinished clears the
// finish date so the shelf-life math starts from a clean slate.
func (r *SQLiteRepository) SetPantryFinished(ctx context.Context, userID, id int64, finished bool, finishedAt *time.Time) (core.PantryItem, error) {
	var finishedAtVal sql.NullTime
	if finished && finishedAt != nil {
		finishedAtVal = sql.NullTime{Time: finishedAt.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE pantry_items SET finished = ?, finished_at = ? WHERE id = ? AND user_id = ?`,
		finished, finishedAtVal, id, userID)
	if err != nil {
		return core.PantryItem{}, fmt.Errorf("set pantry finished: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.PantryItem{}, fmt.Errorf("set pantry finished rows affected: %w", err)
	}
	if affected == 0 {
		return core.PantryItem{}, core.ErrNotFound
	}
	return r.GetPantryItem(ctx, userID, id)
}

func (r *SQLiteRepository) DeletePantryItem(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pantry_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pantry item rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListUnfinishedPantryItems returns unfinished items across all users. The
// restock worker filters them with core.PantryItem.Depleted so the shelf-life
// rules live in one place.
func (r *SQLiteRepository) ListUnfinishedPantryItems(ctx context.Context) ([]core.PantryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, quantity, unit, price_cents, purchased_at, duration_days, finished, finished_at, created_at
		 FROM pantry_items WHERE finished = 0
		 ORDER BY purchased_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unfinished pantry items: %w", err)
	}
	defer rows.Close()

	var items []core.PantryItem
	for rows.Next() {
		p, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func scanPantryItem(row entryScanner) (core.PantryItem, error) {
	var p core.PantryItem
	var finishedAt sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Quantity, &p.Unit, &p.Price.Cents,
		&p.PurchasedAt, &p.DurationDays, &p.Finished, &finishedAt, &p.CreatedAt)
	if err != nil {
		return core.PantryItem{}, err
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		p.FinishedAt = &t
	}
	return p, nil
}
