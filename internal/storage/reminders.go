package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/core"
)

func (r *SQLiteRepository) CreateReminder(ctx context.Context, rem core.Reminder) (core.Reminder, error) {
	rem.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (user_id, kind, title, description, due_at, repeat, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		rem.UserID, rem.Kind, rem.Title, rem.Description, rem.DueAt, rem.Repeat, rem.CreatedAt)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}

	rem.ID, err = res.LastInsertId()
	if err != nil {
		return core.Reminder{}, fmt.Errorf("reminder insert id: %w", err)
	}
	return rem, nil
}

func (r *SQLiteRepository) ListReminders(ctx context.Context, userID int64) ([]core.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, kind, title, description, due_at, repeat, completed, created_at
		 FROM reminders WHERE user_id = ?
		 ORDER BY due_at ASC, id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []core.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// SetReminderCompleted flips the completed flag and returns the updated row.
func (r *SQLiteRepository) SetReminderCompleted(ctx context.Context, userID, id int64, completed bool) (core.Reminder, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET completed = ? WHERE id = ? AND user_id = ?`,
		completed, id, userID)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("set reminder completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Reminder{}, fmt.Errorf("set reminder completed rows affected: %w", err)
	}
	if affected == 0 {
		return core.Reminder{}, core.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, kind, title, description, due_at, repeat, completed, created_at
		 FROM reminders WHERE id = ? AND user_id = ?`,
		id, userID)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Reminder{}, core.ErrNotFound
	}
	if err != nil {
		return core.Reminder{}, fmt.Errorf("get reminder: %w", err)
	}
	return rem, nil
}

func (r *SQLiteRepository) DeleteReminder(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reminder rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// HasOpenReminder reports whether the user already has an uncompleted reminder
// with this title. The restock worker uses it to avoid duplicates.
func (r *SQLiteRepository) HasOpenReminder(ctx context.Context, userID int64, title string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminders WHERE user_id = ? AND title = ? AND completed = 0`,
		userID, title).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count open reminders: %w", err)
	}
	return count > 0, nil
}

func scanReminder(row entryScanner) (core.Reminder, error) {
	var rem core.Reminder
	err := row.Scan(&rem.ID, &rem.UserID, &rem.Kind, &rem.Title, &rem.Description,
		&rem.DueAt, &rem.Repeat, &rem.Completed, &rem.CreatedAt)
	if err != nil {
		return core.Reminder{}, err
	}
	return rem, nil
}
