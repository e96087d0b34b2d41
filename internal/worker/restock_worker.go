package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// ReminderKindRestock marks reminders created automatically for depleted
// pantry items.
const ReminderKindRestock = "compra"

// RestockWorker creates repurchase reminders for pantry items whose expected
// shelf life has run out without being marked finished.
type RestockWorker struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewRestockWorker(storage *storage.SQLiteRepository) *RestockWorker {
	return &RestockWorker{
		storage: storage,
		now:     time.Now,
	}
}

// ProcessDepletedItems scans unfinished pantry items across all users and
// creates one open reminder per depleted item. Items that already have an
// open reminder with the same title are skipped.
func (w *RestockWorker) ProcessDepletedItems(ctx context.Context) error {
	items, err := w.storage.ListUnfinishedPantryItems(ctx)
	if err != nil {
		return fmt.Errorf("list unfinished pantry items: %w", err)
	}

	now := w.now().UTC()
	created := 0

	for _, item := range items {
		if !item.Depleted(now) {
			continue
		}

		title := restockTitle(item)
		open, err := w.storage.HasOpenReminder(ctx, item.UserID, title)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check open reminders",
				"pantry_id", item.ID, "error", err)
			continue
		}
		if open {
			continue
		}

		_, err = w.storage.CreateReminder(ctx, core.Reminder{
			UserID:      item.UserID,
			Kind:        ReminderKindRestock,
			Title:       title,
			Description: fmt.Sprintf("La despensa de %s se agotó tras %d días", item.Name, item.DurationDays),
			DueAt:       now,
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create restock reminder",
				"pantry_id", item.ID, "error", err)
			continue
		}

		created++
		slog.InfoContext(ctx, "Created restock reminder",
			"pantry_id", item.ID,
			"user_id", item.UserID,
			"title", title)
	}

	if created > 0 {
		slog.InfoContext(ctx, "Restock scan completed",
			"scanned", len(items),
			"created", created)
	}

	return nil
}

func restockTitle(item core.PantryItem) string {
	return "Comprar " + item.Name
}
