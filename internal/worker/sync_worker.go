package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/sheets"
	"finanzas/internal/storage"
)

// SyncWorker mirrors ledger entries from SQLite to an external sheet.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheets    sheets.EntryAppender
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheets sheets.EntryAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP. The full
// row is fetched from storage so a stale queue payload cannot mirror old data.
// Entries deleted before the message arrives are dropped without error.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	entry, err := w.storage.GetEntry(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Entry deleted before sync, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.syncEntryToSheets(ctx, entry); err != nil {
		return fmt.Errorf("sync entry to sheets: %w", err)
	}
	return nil
}

// ProcessPendingEntries mirrors entries that are still marked pending. This is
// the backup mechanism for lost AMQP messages.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		entry, err := w.storage.GetEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.syncEntryToSheets(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains a larger batch of pending entries at worker startup
// to recover from missed messages or downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		entry, err := w.storage.GetEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncEntryToSheets(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncEntryToSheets(ctx context.Context, entry core.Entry) error {
	ref, err := w.sheets.Append(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, entry.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", entry.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The mirror already happened; a bookkeeping failure only re-syncs later.
	if err := w.storage.MarkSynced(ctx, entry.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", entry.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced entry",
		"id", entry.ID,
		"sheets_ref", ref,
		"concept", entry.Concept,
		"monthly_cents", entry.Monthly.Cents)

	return nil
}
