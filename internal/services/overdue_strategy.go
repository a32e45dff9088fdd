package services

// This file implements the strategy pattern for overdue classification.
// Customer balances and title groups decide "late" differently: customers by
// the size of the open balance, titles by their due dates.

import (
	"time"

	"gemdash/internal/core"

	"github.com/shopspring/decimal"
)

// DefaultOverdueThreshold is the canonical-currency balance above which a
// customer is considered overdue.
const DefaultOverdueThreshold = 5_000_000

// OverduePolicy is the strategy interface for deciding whether an open
// balance is overdue.
type OverduePolicy interface {
	// IsOverdue reports whether a positive balance made of records is late
	// as of now.
	IsOverdue(outstanding decimal.Decimal, records []core.LedgerRecord, now time.Time) bool
}

// ThresholdPolicy flags balances strictly above Limit.
type ThresholdPolicy struct {
	Limit decimal.Decimal
}

// IsOverdue returns true if outstanding exceeds the limit.
func (p ThresholdPolicy) IsOverdue(outstanding decimal.Decimal, _ []core.LedgerRecord, _ time.Time) bool {
	return outstanding.GreaterThan(p.Limit)
}

// DueDatePolicy flags groups where any record's due date is before today.
type DueDatePolicy struct{}

// IsOverdue returns true if some record has a due date strictly before the
// calendar day of now. Records without a due date never make a group late.
func (DueDatePolicy) IsOverdue(_ decimal.Decimal, records []core.LedgerRecord, now time.Time) bool {
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	for _, r := range records {
		if !r.DueDate.IsZero() && r.DueDate.Before(today) {
			return true
		}
	}
	return false
}

// Classify applies policy to an outstanding balance. A non-positive balance
// is Cleared no matter what the policy says.
func Classify(policy OverduePolicy, outstanding decimal.Decimal, records []core.LedgerRecord, now time.Time) core.ClearingStatus {
	late := outstanding.IsPositive() && policy.IsOverdue(outstanding, records, now)
	return core.ClassifyBalance(outstanding, late)
}
