package core

import (
	"strings"
	"time"
)

// DefaultUnit is applied when a pantry item arrives without a unit.
const DefaultUnit = "unidades"

// PantryItem is a purchased consumable with an expected usable duration,
// used to prompt repurchase before depletion.
type PantryItem struct {
	ID           int64
	UserID       int64
	Name         string
	Quantity     float64
	Unit         string
	Price        Money
	PurchasedAt  time.Time
	DurationDays int
	Finished     bool
	FinishedAt   *time.Time
	CreatedAt    time.Time
}

func (p PantryItem) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.DurationDays <= 0 {
		return ErrInvalidDuration
	}
	if p.Price.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// DaysSincePurchase returns the whole days elapsed since the purchase date.
func (p PantryItem) DaysSincePurchase(now time.Time) int {
	if now.Before(p.PurchasedAt) {
		return 0
	}
	return int(now.Sub(p.PurchasedAt).Hours() / 24)
}

// DaysRemaining returns the expected days of shelf life left, clamped at zero.
func (p PantryItem) DaysRemaining(now time.Time) int {
	remaining := p.DurationDays - p.DaysSincePurchase(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActualDurationDays returns how long the item actually lasted. The second
// return is false while the item is unfinished or has no finish date.
func (p PantryItem) ActualDurationDays() (int, bool) {
	if !p.Finished || p.FinishedAt == nil {
		return 0, false
	}
	if p.FinishedAt.Before(p.PurchasedAt) {
		return 0, true
	}
	return int(p.FinishedAt.Sub(p.PurchasedAt).Hours() / 24), true
}

// Depleted reports whether the item ran out of expected shelf life without
// being marked finished. Depleted items trigger repurchase reminders.
func (p PantryItem) Depleted(now time.Time) bool {
	return !p.Finished && p.DaysRemaining(now) == 0
}

// CompanionExpense builds the ledger entry recorded when a priced pantry item
// is purchased: the monthly amount is the price, the weekly amount a quarter
// of it. Returns false when the item has no price.
func (p PantryItem) CompanionExpense() (Entry, bool) {
	if p.Price.Cents <= 0 {
		return Entry{}, false
	}
	return Entry{
		UserID:   p.UserID,
		Kind:     KindExpense,
		Concept:  "Compra despensa: " + p.Name,
		Category: PantryCategory,
		Weekly:   p.Price.DivRound(WeeksPerMonth),
		Monthly:  p.Price,
	}, true
}
