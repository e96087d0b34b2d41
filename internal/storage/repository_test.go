package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finanzas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createTestUser(t *testing.T, repo *SQLiteRepository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Name:         "Test",
		Email:        email,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	createTestUser(t, repo, "ana@example.com")

	_, err := repo.CreateUser(ctx, core.User{Name: "Other", Email: "ana@example.com", PasswordHash: "h"})
	if !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := createTestUser(t, repo, "ana@example.com")

	got, err := repo.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ID != created.ID || got.Email != created.Email {
		t.Fatalf("got user %+v, want %+v", got, created)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "owner@example.com")
	other := createTestUser(t, repo, "other@example.com")

	created, err := repo.CreateEntry(ctx, core.Entry{
		UserID:   owner.ID,
		Kind:     core.KindExpense,
		Concept:  "Alquiler",
		Category: "vivienda",
		Weekly:   core.Money{Cents: 20000},
		Monthly:  core.Money{Cents: 80000},
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero entry id")
	}

	t.Run("list is scoped to owner and kind", func(t *testing.T) {
		entries, err := repo.ListEntries(ctx, owner.ID, core.KindExpense)
		if err != nil {
			t.Fatalf("list entries: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != created.ID {
			t.Fatalf("expected the created entry, got %+v", entries)
		}

		incomes, err := repo.ListEntries(ctx, owner.ID, core.KindIncome)
		if err != nil {
			t.Fatalf("list incomes: %v", err)
		}
		if len(incomes) != 0 {
			t.Fatalf("expected no incomes, got %d", len(incomes))
		}

		foreign, err := repo.ListEntries(ctx, other.ID, core.KindExpense)
		if err != nil {
			t.Fatalf("list foreign entries: %v", err)
		}
		if len(foreign) != 0 {
			t.Fatalf("expected no entries for other user, got %d", len(foreign))
		}
	})

	t.Run("update category returns updated row", func(t *testing.T) {
		updated, err := repo.UpdateEntryCategory(ctx, owner.ID, created.ID, core.KindExpense, "casa")
		if err != nil {
			t.Fatalf("update category: %v", err)
		}
		if updated.Category != "casa" {
			t.Fatalf("expected category casa, got %s", updated.Category)
		}
	})

	t.Run("update by non-owner is not found", func(t *testing.T) {
		_, err := repo.UpdateEntryCategory(ctx, other.ID, created.ID, core.KindExpense, "casa")
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete by non-owner is not found", func(t *testing.T) {
		err := repo.DeleteEntry(ctx, other.ID, created.ID, core.KindExpense)
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete by owner", func(t *testing.T) {
		if err := repo.DeleteEntry(ctx, owner.ID, created.ID, core.KindExpense); err != nil {
			t.Fatalf("delete entry: %v", err)
		}
		entries, err := repo.ListEntries(ctx, owner.ID, core.KindExpense)
		if err != nil {
			t.Fatalf("list entries: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected empty list after delete, got %d", len(entries))
		}
	})
}

func TestSums(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := createTestUser(t, repo, "sums@example.com")

	seed := []core.Entry{
		{UserID: u.ID, Kind: core.KindExpense, Concept: "Alquiler", Category: "vivienda", Weekly: core.Money{Cents: 20000}, Monthly: core.Money{Cents: 80000}},
		{UserID: u.ID, Kind: core.KindExpense, Concept: "Compra", Category: "Despensa", Weekly: core.Money{Cents: 5000}, Monthly: core.Money{Cents: 20000}},
		{UserID: u.ID, Kind: core.KindIncome, Concept: "Sueldo", Category: "trabajo", Weekly: core.Money{Cents: 37500}, Monthly: core.Money{Cents: 150000}},
	}
	for _, e := range seed {
		if _, err := repo.CreateEntry(ctx, e); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	expenses, err := repo.SumMonthly(ctx, u.ID, core.KindExpense)
	if err != nil {
		t.Fatalf("sum expenses: %v", err)
	}
	if expenses.Cents != 100000 {
		t.Fatalf("expected 100000 expense cents, got %d", expenses.Cents)
	}

	incomes, err := repo.SumMonthly(ctx, u.ID, core.KindIncome)
	if err != nil {
		t.Fatalf("sum incomes: %v", err)
	}
	if incomes.Cents != 150000 {
		t.Fatalf("expected 150000 income cents, got %d", incomes.Cents)
	}

	byCategory, err := repo.SumExpensesByCategory(ctx, u.ID)
	if err != nil {
		t.Fatalf("sum by category: %v", err)
	}
	if byCategory["vivienda"].Cents != 80000 || byCategory["Despensa"].Cents != 20000 {
		t.Fatalf("unexpected category sums: %+v", byCategory)
	}
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := createTestUser(t, repo, "sync@example.com")

	e, err := repo.CreateEntry(ctx, core.Entry{
		UserID: u.ID, Kind: core.KindExpense, Concept: "Luz", Category: "vivienda",
		Weekly: core.Money{Cents: 1000}, Monthly: core.Money{Cents: 4000},
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	pending, err := repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != e.ID || pending[0].Version != 1 {
		t.Fatalf("expected one pending entry at version 1, got %+v", pending)
	}

	if err := repo.MarkSynced(ctx, e.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("get pending after sync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending entries, got %d", len(pending))
	}

	// Category updates re-queue the entry with a bumped version.
	if _, err := repo.UpdateEntryCategory(ctx, u.ID, e.ID, core.KindExpense, "casa"); err != nil {
		t.Fatalf("update category: %v", err)
	}
	pending, err = repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("get pending after update: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("expected re-queued entry at version 2, got %+v", pending)
	}
}

func TestPantryFinishedToggle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := createTestUser(t, repo, "pantry@example.com")

	item, err := repo.CreatePantryItem(ctx, core.PantryItem{
		UserID:       u.ID,
		Name:         "Leche",
		Quantity:     6,
		Unit:         "unidades",
		Price:        core.Money{Cents: 540},
		PurchasedAt:  time.Now().UTC().Add(-48 * time.Hour),
		DurationDays: 7,
	})
	if err != nil {
		t.Fatalf("create pantry item: %v", err)
	}

	now := time.Now().UTC()
	finished, err := repo.SetPantryFinished(ctx, u.ID, item.ID, true, &now)
	if err != nil {
		t.Fatalf("mark finished: %v", err)
	}
	if !finished.Finished || finished.FinishedAt == nil {
		t.Fatalf("expected finished with date, got %+v", finished)
	}

	reopened, err := repo.SetPantryFinished(ctx, u.ID, item.ID, false, nil)
	if err != nil {
		t.Fatalf("reopen item: %v", err)
	}
	if reopened.Finished || reopened.FinishedAt != nil {
		t.Fatalf("expected finish date cleared on reopen, got %+v", reopened)
	}

	unfinished, err := repo.ListUnfinishedPantryItems(ctx)
	if err != nil {
		t.Fatalf("list unfinished: %v", err)
	}
	if len(unfinished) != 1 || unfinished[0].ID != item.ID {
		t.Fatalf("expected the reopened item, got %+v", unfinished)
	}
}

func TestReminderOrderingAndDedup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := createTestUser(t, repo, "reminders@example.com")

	later, err := repo.CreateReminder(ctx, core.Reminder{
		UserID: u.ID, Kind: "pago", Title: "Pagar alquiler",
		DueAt: time.Now().UTC().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	sooner, err := repo.CreateReminder(ctx, core.Reminder{
		UserID: u.ID, Kind: "compra", Title: "Comprar Leche",
		DueAt: time.Now().UTC().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	list, err := repo.ListReminders(ctx, u.ID)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(list) != 2 || list[0].ID != sooner.ID || list[1].ID != later.ID {
		t.Fatalf("expected reminders ordered by due date, got %+v", list)
	}

	open, err := repo.HasOpenReminder(ctx, u.ID, "Comprar Leche")
	if err != nil {
		t.Fatalf("has open reminder: %v", err)
	}
	if !open {
		t.Fatal("expected an open reminder")
	}

	if _, err := repo.SetReminderCompleted(ctx, u.ID, sooner.ID, true); err != nil {
		t.Fatalf("complete reminder: %v", err)
	}
	open, err = repo.HasOpenReminder(ctx, u.ID, "Comprar Leche")
	if err != nil {
		t.Fatalf("has open reminder: %v", err)
	}
	if open {
		t.Fatal("expected no open reminder after completion")
	}
}

func TestBudgetUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := createTestUser(t, repo, "budget@example.com")

	if _, err := repo.UpsertBudget(ctx, core.Budget{
		UserID: u.ID, Category: "vivienda", MonthlyLimit: core.Money{Cents: 80000},
	}); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	if _, err := repo.UpsertBudget(ctx, core.Budget{
		UserID: u.ID, Category: "vivienda", MonthlyLimit: core.Money{Cents: 90000},
	}); err != nil {
		t.Fatalf("upsert budget again: %v", err)
	}

	budgets, err := repo.ListBudgets(ctx, u.ID)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].MonthlyLimit.Cents != 90000 {
		t.Fatalf("expected one budget with updated limit, got %+v", budgets)
	}

	if err := repo.DeleteBudget(ctx, u.ID, "vivienda"); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	if err := repo.DeleteBudget(ctx, u.ID, "vivienda"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting missing budget, got %v", err)
	}
}

func TestGoalOwnership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := createTestUser(t, repo, "goal@example.com")
	other := createTestUser(t, repo, "intruder@example.com")

	g, err := repo.CreateGoal(ctx, core.Goal{
		UserID:       owner.ID,
		Name:         "Vacaciones",
		TargetAmount: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	updated, err := repo.UpdateGoalCurrent(ctx, owner.ID, g.ID, core.Money{Cents: 25000})
	if err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if updated.CurrentAmount.Cents != 25000 {
		t.Fatalf("expected 25000 current cents, got %d", updated.CurrentAmount.Cents)
	}

	if _, err := repo.UpdateGoalCurrent(ctx, other.ID, g.ID, core.Money{Cents: 1}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if _, err := repo.GetGoal(ctx, other.ID, g.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner get, got %v", err)
	}
}
