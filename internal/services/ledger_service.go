package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// SyncPublisher queues a ledger entry for mirroring to the external sheet.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, id, version int64) error
}

// LedgerService orchestrates expense and income entries across SQLite and AMQP.
type LedgerService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
}

func NewLedgerService(storage *storage.SQLiteRepository, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		storage:   storage,
		publisher: publisher,
	}
}

// Create saves an entry locally and publishes a sync message. A missing weekly
// or monthly amount is derived from the other before validation. Publish
// failures never fail the request; the pending scan picks the entry up later.
func (s *LedgerService) Create(ctx context.Context, e core.Entry) (core.Entry, error) {
	e.Concept = strings.TrimSpace(e.Concept)
	if strings.TrimSpace(e.Category) == "" {
		e.Category = core.DefaultCategory
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	created, err := s.storage.CreateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("save entry: %w", err)
	}

	if err := s.publishSyncMessage(ctx, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", created.ID, "error", err)
	}

	return created, nil
}

func (s *LedgerService) List(ctx context.Context, userID int64, kind core.EntryKind) ([]core.Entry, error) {
	return s.storage.ListEntries(ctx, userID, kind)
}

// UpdateCategory changes an entry's category and returns the updated entry.
// The row is re-queued for mirroring via its sync status, so no message is
// published here.
func (s *LedgerService) UpdateCategory(ctx context.Context, userID, id int64, kind core.EntryKind, category string) (core.Entry, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return core.Entry{}, core.ErrEmptyCategory
	}
	return s.storage.UpdateEntryCategory(ctx, userID, id, kind, category)
}

func (s *LedgerService) Delete(ctx context.Context, userID, id int64, kind core.EntryKind) error {
	return s.storage.DeleteEntry(ctx, userID, id, kind)
}

// MonthlyTotals returns the user's total monthly income and expense.
func (s *LedgerService) MonthlyTotals(ctx context.Context, userID int64) (income, expense core.Money, err error) {
	income, err = s.storage.SumMonthly(ctx, userID, core.KindIncome)
	if err != nil {
		return core.Money{}, core.Money{}, err
	}
	expense, err = s.storage.SumMonthly(ctx, userID, core.KindExpense)
	if err != nil {
		return core.Money{}, core.Money{}, err
	}
	return income, expense, nil
}

func (s *LedgerService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishEntrySync(ctx, id, version)
}
