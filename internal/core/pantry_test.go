package core

import (
	"testing"
	"time"
)

func TestPantryItemValidate(t *testing.T) {
	good := PantryItem{Name: "arroz", Quantity: 2, DurationDays: 30}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		p    PantryItem
		want error
	}{
		{"missing name", PantryItem{Quantity: 1, DurationDays: 10}, ErrEmptyName},
		{"zero quantity", PantryItem{Name: "arroz", DurationDays: 10}, ErrInvalidQuantity},
		{"zero duration", PantryItem{Name: "arroz", Quantity: 1}, ErrInvalidDuration},
		{"negative price", PantryItem{Name: "arroz", Quantity: 1, DurationDays: 10, Price: Money{Cents: -1}}, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.p.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPantryItemShelfLife(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("remaining days clamp at zero", func(t *testing.T) {
		// duration 10, purchased 12 days ago
		p := PantryItem{DurationDays: 10, PurchasedAt: now.AddDate(0, 0, -12)}
		if got := p.DaysSincePurchase(now); got != 12 {
			t.Fatalf("expected 12 days since purchase, got %d", got)
		}
		if got := p.DaysRemaining(now); got != 0 {
			t.Fatalf("expected 0 remaining, got %d", got)
		}
	})

	t.Run("remaining days mid-life", func(t *testing.T) {
		p := PantryItem{DurationDays: 10, PurchasedAt: now.AddDate(0, 0, -3)}
		if got := p.DaysRemaining(now); got != 7 {
			t.Fatalf("expected 7 remaining, got %d", got)
		}
	})

	t.Run("future purchase date counts as day zero", func(t *testing.T) {
		p := PantryItem{DurationDays: 10, PurchasedAt: now.AddDate(0, 0, 2)}
		if got := p.DaysSincePurchase(now); got != 0 {
			t.Fatalf("expected 0, got %d", got)
		}
	})
}

func TestPantryItemActualDuration(t *testing.T) {
	purchased := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	finished := purchased.AddDate(0, 0, 8)

	p := PantryItem{PurchasedAt: purchased, Finished: true, FinishedAt: &finished}
	got, ok := p.ActualDurationDays()
	if !ok || got != 8 {
		t.Fatalf("expected 8 days, got %d (ok=%v)", got, ok)
	}

	if _, ok := (PantryItem{PurchasedAt: purchased}).ActualDurationDays(); ok {
		t.Fatalf("unfinished item should not report actual duration")
	}
	if _, ok := (PantryItem{PurchasedAt: purchased, Finished: true}).ActualDurationDays(); ok {
		t.Fatalf("finished item without date should not report actual duration")
	}
}

func TestPantryItemDepleted(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	depleted := PantryItem{DurationDays: 5, PurchasedAt: now.AddDate(0, 0, -6)}
	if !depleted.Depleted(now) {
		t.Fatalf("expected depleted")
	}
	fresh := PantryItem{DurationDays: 5, PurchasedAt: now.AddDate(0, 0, -1)}
	if fresh.Depleted(now) {
		t.Fatalf("fresh item reported depleted")
	}
	done := PantryItem{DurationDays: 5, PurchasedAt: now.AddDate(0, 0, -6), Finished: true}
	if done.Depleted(now) {
		t.Fatalf("finished item reported depleted")
	}
}

func TestPantryItemCompanionExpense(t *testing.T) {
	p := PantryItem{
		UserID: 7,
		Name:   "aceite",
		Price:  Money{Cents: 2000},
	}
	e, ok := p.CompanionExpense()
	if !ok {
		t.Fatalf("expected companion expense for priced item")
	}
	if e.Monthly.Cents != 2000 {
		t.Fatalf("monthly should equal price, got %d", e.Monthly.Cents)
	}
	if e.Weekly.Cents != 500 {
		t.Fatalf("weekly should be price/4, got %d", e.Weekly.Cents)
	}
	if e.Category != PantryCategory || e.UserID != 7 || e.Kind != KindExpense {
		t.Fatalf("unexpected companion shape: %+v", e)
	}

	if _, ok := (PantryItem{Name: "sal"}).CompanionExpense(); ok {
		t.Fatalf("free item should not produce a companion expense")
	}
}
