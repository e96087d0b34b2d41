package core

import (
	"strings"
	"time"
)

// Alert tiers for budget consumption. Thresholds are integer percent points.
const (
	AlertOK       AlertLevel = "ok"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"

	WarningThreshold  = 75
	CriticalThreshold = 90
)

type (
	AlertLevel string

	// Budget is a per-category monthly spending ceiling. A user has at most
	// one budget per category; writes upsert.
	Budget struct {
		UserID       int64
		Category     string
		MonthlyLimit Money
		UpdatedAt    time.Time
	}

	// BudgetAlert is the computed consumption state of one budget.
	BudgetAlert struct {
		Category string
		Limit    Money
		Spent    Money
		Percent  int
		Level    AlertLevel
	}

	// Goal is a savings target with an accumulating current amount.
	Goal struct {
		ID            int64
		UserID        int64
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    *time.Time
		CreatedAt     time.Time
	}
)

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.MonthlyLimit.Validate()
}

// Evaluate classifies spending against the budget's ceiling. The percentage
// is rounded half-up to whole points; 75 and 90 are the tier boundaries.
func (b Budget) Evaluate(spent Money) BudgetAlert {
	alert := BudgetAlert{
		Category: b.Category,
		Limit:    b.MonthlyLimit,
		Spent:    spent,
		Level:    AlertOK,
	}
	if b.MonthlyLimit.Cents > 0 {
		alert.Percent = int((spent.Cents*100 + b.MonthlyLimit.Cents/2) / b.MonthlyLimit.Cents)
	}
	switch {
	case alert.Percent >= CriticalThreshold:
		alert.Level = AlertCritical
	case alert.Percent >= WarningThreshold:
		alert.Level = AlertWarning
	}
	return alert
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	return g.TargetAmount.Validate()
}

// AssignSavings adds amount to the goal's current total. The amount must be
// positive and must not exceed the caller's available savings.
func (g *Goal) AssignSavings(amount, available Money) error {
	if amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if amount.Cents > available.Cents {
		return ErrInsufficientFunds
	}
	g.CurrentAmount.Cents += amount.Cents
	return nil
}

// Achieved reports whether the goal's target has been reached.
func (g Goal) Achieved() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}
