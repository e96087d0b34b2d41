package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// PantryService manages pantry items and their companion ledger entries.
type PantryService struct {
	storage *storage.SQLiteRepository
	ledger  *LedgerService
	now     func() time.Time
}

func NewPantryService(storage *storage.SQLiteRepository, ledger *LedgerService) *PantryService {
	return &PantryService{
		storage: storage,
		ledger:  ledger,
		now:     time.Now,
	}
}

// Create saves a pantry item and, when it carries a price, records a companion
// expense in the ledger. The companion write is best-effort: the item is kept
// even if the expense fails.
func (s *PantryService) Create(ctx context.Context, p core.PantryItem) (core.PantryItem, error) {
	p.Name = strings.TrimSpace(p.Name)
	if strings.TrimSpace(p.Unit) == "" {
		p.Unit = core.DefaultUnit
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = s.now().UTC()
	}
	if err := p.Validate(); err != nil {
		return core.PantryItem{}, err
	}

	created, err := s.storage.CreatePantryItem(ctx, p)
	if err != nil {
		return core.PantryItem{}, fmt.Errorf("save pantry item: %w", err)
	}

	if expense, ok := created.CompanionExpense(); ok {
		if _, err := s.ledger.Create(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to record companion expense",
				"pantry_id", created.ID, "error", err)
		}
	}

	return created, nil
}

func (s *PantryService) List(ctx context.Context, userID int64) ([]core.PantryItem, error) {
	return s.storage.ListPantryItems(ctx, userID)
}

// SetFinished toggles the finished flag. Finishing stamps the current time;
// reopening clears it.
func (s *PantryService) SetFinished(ctx context.Context, userID, id int64, finished bool) (core.PantryItem, error) {
	var finishedAt *time.Time
	if finished {
		t := s.now().UTC()
		finishedAt = &t
	}
	return s.storage.SetPantryFinished(ctx, userID, id, finished, finishedAt)
}

func (s *PantryService) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeletePantryItem(ctx, userID, id)
}
