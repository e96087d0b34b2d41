package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type fakeAppender struct {
	appended []core.Entry
	fail     bool
}

func (f *fakeAppender) Append(_ context.Context, e core.Entry) (string, error) {
	if f.fail {
		return "", errors.New("sheets unavailable")
	}
	f.appended = append(f.appended, e)
	return "Sheet1!A2:F2", nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *storage.SQLiteRepository) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Name: "Test", Email: "worker@example.com", PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedEntry(t *testing.T, repo *storage.SQLiteRepository, userID int64) core.Entry {
	t.Helper()
	e, err := repo.CreateEntry(context.Background(), core.Entry{
		UserID: userID, Kind: core.KindExpense, Concept: "Luz",
		Category: "vivienda", Weekly: core.Money{Cents: 1000}, Monthly: core.Money{Cents: 4000},
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	return e
}

func TestSyncWorker_HandleSyncMessage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)
	e := seedEntry(t, repo, u.ID)

	appender := &fakeAppender{}
	w := NewSyncWorker(repo, appender, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage(e.ID, 1)); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}
	if len(appender.appended) != 1 || appender.appended[0].Concept != "Luz" {
		t.Fatalf("expected one appended entry, got %+v", appender.appended)
	}

	pending, err := repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected entry marked synced, still pending: %+v", pending)
	}
}

func TestSyncWorker_HandleSyncMessage_DeletedEntry(t *testing.T) {
	repo := newTestRepo(t)
	w := NewSyncWorker(repo, &fakeAppender{}, 10)

	// Messages for rows that no longer exist must ack, not requeue forever.
	if err := w.HandleSyncMessage(context.Background(), amqp.NewEntrySyncMessage(999, 1)); err != nil {
		t.Fatalf("expected deleted entry to be dropped, got %v", err)
	}
}

func TestSyncWorker_AppendFailureMarksError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)
	e := seedEntry(t, repo, u.ID)

	w := NewSyncWorker(repo, &fakeAppender{fail: true}, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage(e.ID, 1)); err == nil {
		t.Fatal("expected error from failing appender")
	}

	// The row left the pending queue and is parked in error state.
	pending, err := repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected entry marked with sync error, still pending: %+v", pending)
	}
}

func TestSyncWorker_ProcessPendingEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)
	seedEntry(t, repo, u.ID)
	seedEntry(t, repo, u.ID)

	appender := &fakeAppender{}
	w := NewSyncWorker(repo, appender, 10)

	if err := w.ProcessPendingEntries(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(appender.appended) != 2 {
		t.Fatalf("expected 2 appended entries, got %d", len(appender.appended))
	}
}

func TestRestockWorker_CreatesReminderOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo)

	// Depleted: 12 days since purchase against a 10-day shelf life.
	_, err := repo.CreatePantryItem(ctx, core.PantryItem{
		UserID:       u.ID,
		Name:         "Leche",
		Quantity:     6,
		Unit:         "unidades",
		PurchasedAt:  time.Now().UTC().Add(-12 * 24 * time.Hour),
		DurationDays: 10,
	})
	if err != nil {
		t.Fatalf("create pantry item: %v", err)
	}
	// Still within shelf life, must not trigger.
	_, err = repo.CreatePantryItem(ctx, core.PantryItem{
		UserID:       u.ID,
		Name:         "Arroz",
		Quantity:     1,
		Unit:         "kg",
		PurchasedAt:  time.Now().UTC().Add(-24 * time.Hour),
		DurationDays: 30,
	})
	if err != nil {
		t.Fatalf("create pantry item: %v", err)
	}

	w := NewRestockWorker(repo)

	if err := w.ProcessDepletedItems(ctx); err != nil {
		t.Fatalf("process depleted: %v", err)
	}

	reminders, err := repo.ListReminders(ctx, u.ID)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(reminders) != 1 || reminders[0].Title != "Comprar Leche" {
		t.Fatalf("expected single restock reminder for Leche, got %+v", reminders)
	}
	if reminders[0].Kind != ReminderKindRestock {
		t.Fatalf("expected kind %q, got %q", ReminderKindRestock, reminders[0].Kind)
	}

	// A second scan must not duplicate the open reminder.
	if err := w.ProcessDepletedItems(ctx); err != nil {
		t.Fatalf("second scan: %v", err)
	}
	reminders, err = repo.ListReminders(ctx, u.ID)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("expected no duplicate reminders, got %d", len(reminders))
	}
}
