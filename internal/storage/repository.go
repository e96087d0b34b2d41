package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finanzas/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database connection is usable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser inserts a new account. Email uniqueness is enforced by the
// database and surfaces as core.ErrEmailTaken.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`,
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// CreateEntry inserts a ledger entry with sync bookkeeping in 'pending' state.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	e.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (user_id, kind, concept, category, weekly_cents, monthly_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, string(e.Kind), e.Concept, e.Category, e.Weekly.Cents, e.Monthly.Cents, e.CreatedAt)
	if err != nil {
		return core.Entry{}, fmt.Errorf("insert entry: %w", err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry insert id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved",
		"id", e.ID,
		"kind", string(e.Kind),
		"concept", e.Concept,
		"monthly_cents", e.Monthly.Cents)

	return e, nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, userID int64, kind core.EntryKind) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, kind, concept, category, weekly_cents, monthly_cents, created_at
		 FROM entries WHERE user_id = ? AND kind = ?
		 ORDER BY created_at DESC, id DESC`,
		userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry retrieves a single entry by ID regardless of owner. It exists for
// the sync worker, which operates across users; handlers go through the
// owner-scoped methods instead.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, kind, concept, category, weekly_cents, monthly_cents, created_at
		 FROM entries WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, core.ErrNotFound
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// UpdateEntryCategory changes an entry's category and returns the updated row.
// Rows the user does not own are invisible and report core.ErrNotFound.
func (r *SQLiteRepository) UpdateEntryCategory(ctx context.Context, userID, id int64, kind core.EntryKind, category string) (core.Entry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET category = ?, sync_status = 'pending', version = version + 1
		 WHERE id = ? AND user_id = ? AND kind = ?`,
		category, id, userID, string(kind))
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry category rows affected: %w", err)
	}
	if affected == 0 {
		return core.Entry{}, core.ErrNotFound
	}
	return r.GetEntry(ctx, id)
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, userID, id int64, kind core.EntryKind) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND user_id = ? AND kind = ?`,
		id, userID, string(kind))
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// SumMonthly totals the monthly amounts for one kind of entry.
func (r *SQLiteRepository) SumMonthly(ctx context.Context, userID int64, kind core.EntryKind) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(monthly_cents), 0) FROM entries WHERE user_id = ? AND kind = ?`,
		userID, string(kind)).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum monthly %s: %w", kind, err)
	}
	return core.Money{Cents: cents}, nil
}

// SumExpensesByCategory totals monthly expense amounts per category.
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, userID int64) (map[string]core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COALESCE(SUM(monthly_cents), 0)
		 FROM entries WHERE user_id = ? AND kind = 'expense'
		 GROUP BY category`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]core.Money)
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums[category] = core.Money{Cents: cents}
	}
	return sums, rows.Err()
}

// PendingSyncEntry is the minimal row shape carried by sync queue messages.
type PendingSyncEntry struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncEntries returns entries that still need to be mirrored out.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM entries
		 WHERE sync_status = 'pending'
		 ORDER BY created_at ASC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncEntry
	for rows.Next() {
		var p PendingSyncEntry
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync entry: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced marks an entry as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_status = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Entry marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an entry as having failed to mirror.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE entries SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

type entryScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row entryScanner) (core.Entry, error) {
	var e core.Entry
	var kind string
	err := row.Scan(&e.ID, &e.UserID, &kind, &e.Concept, &e.Category,
		&e.Weekly.Cents, &e.Monthly.Cents, &e.CreatedAt)
	if err != nil {
		return core.Entry{}, err
	}
	e.Kind = core.EntryKind(kind)
	return e, nil
}
