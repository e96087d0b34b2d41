package core

import (
	"errors"
	"strings"
	"time"
)

// WeeksPerMonth is the canonical weekly/monthly multiplier. When only one of
// the two amounts is supplied, the other is derived with it.
const WeeksPerMonth = 4

const (
	KindExpense EntryKind = "expense"
	KindIncome  EntryKind = "income"

	// DefaultCategory is applied when an entry arrives without a category.
	DefaultCategory = "otros"

	// PantryCategory marks companion expenses created from pantry purchases.
	PantryCategory = "Despensa"
)

type (
	// EntryKind discriminates the two ledger tables' shared row shape.
	EntryKind string

	// User is a registered account. PasswordHash never leaves the server.
	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Entry is one ledger line: a recurring expense or income with its
	// weekly and monthly equivalents stored independently.
	Entry struct {
		ID        int64
		UserID    int64
		Kind      EntryKind
		Concept   string
		Category  string
		Weekly    Money
		Monthly   Money
		CreatedAt time.Time
	}

	// Reminder is a dated to-do owned by a user.
	Reminder struct {
		ID          int64
		UserID      int64
		Kind        string
		Title       string
		Description string
		DueAt       time.Time
		Repeat      bool
		Completed   bool
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyConcept       = errors.New("empty concept")
	ErrMissingAmounts     = errors.New("missing weekly and monthly amounts")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrEmptyKind          = errors.New("empty kind")
	ErrEmptyTitle         = errors.New("empty title")
	ErrMissingDueDate     = errors.New("missing due date")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientFunds  = errors.New("amount exceeds available savings")
)

// Normalize fills in the missing one of weekly/monthly using WeeksPerMonth.
// It is a no-op when both are present or both are absent.
func (e *Entry) Normalize() {
	switch {
	case e.Weekly.IsZero() && !e.Monthly.IsZero():
		e.Weekly = e.Monthly.DivRound(WeeksPerMonth)
	case !e.Weekly.IsZero() && e.Monthly.IsZero():
		e.Monthly = e.Weekly.Mul(WeeksPerMonth)
	}
}

func (e Entry) Validate() error {
	if e.Kind != KindExpense && e.Kind != KindIncome {
		return errors.New("invalid entry kind")
	}
	if strings.TrimSpace(e.Concept) == "" {
		return ErrEmptyConcept
	}
	if len(e.Concept) > 200 {
		return errors.New("concept too long (max 200 characters)")
	}
	if e.Weekly.IsZero() && e.Monthly.IsZero() {
		return ErrMissingAmounts
	}
	if e.Weekly.Cents < 0 || e.Monthly.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.Kind) == "" {
		return ErrEmptyKind
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if r.DueAt.IsZero() {
		return ErrMissingDueDate
	}
	return nil
}

// ValidateRegistration checks the fields a new account must carry.
func (u User) ValidateRegistration(password string) error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(u.Email, "@") || strings.TrimSpace(u.Email) == "" {
		return ErrInvalidEmail
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// Savings is the monthly headroom available for goals: total monthly income
// minus total monthly expense. It can be negative.
func Savings(incomeMonthly, expenseMonthly Money) Money {
	return Money{Cents: incomeMonthly.Cents - expenseMonthly.Cents}
}
