package allocation

import (
	"time"

	"github.com/curaflow/curaflow/pkg/rate"
	"github.com/shopspring/decimal"
)

// BudgetAllocation is a client's budgeted amount for one budget type over an
// inclusive date range. UsedAmount is only ever mutated by the expense
// ledger, under an optimistic version check.
//
// UsedAmount <= AllocatedAmount is a soft constraint: the ledger warns when
// a debit crosses it but never refuses.
type BudgetAllocation struct {
	ID              int
	ClientID        int
	BudgetTypeID    int
	AllocatedAmount decimal.Decimal
	UsedAmount      decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	// optional per-allocation rate overrides; absent fields fall back to
	// the staff member's defaults then the budget type's defaults
	WeekdayRate   decimal.NullDecimal
	HolidayRate   decimal.NullDecimal
	KilometerRate decimal.NullDecimal
	Version       int
}

// IsActiveBetween reports whether the allocation's date range overlaps the
// given inclusive range. Zero start or end dates are open-ended.
func (a BudgetAllocation) IsActiveBetween(start, end time.Time) bool {
	if !a.StartDate.IsZero() && a.StartDate.After(end) {
		return false
	}
	if !a.EndDate.IsZero() && a.EndDate.Before(start) {
		return false
	}
	return true
}

// Available returns the remaining amount; negative once over budget.
func (a BudgetAllocation) Available() decimal.Decimal {
	return a.AllocatedAmount.Sub(a.UsedAmount)
}

// UsedPercentage returns used/allocated expressed as a percentage, and zero
// for a zero allocated amount.
func (a BudgetAllocation) UsedPercentage() decimal.Decimal {
	if a.AllocatedAmount.IsZero() {
		return decimal.Zero
	}
	return a.UsedAmount.Div(a.AllocatedAmount).Mul(decimal.NewFromInt(100))
}

func (a BudgetAllocation) OverrideRates() rate.RateSet {
	return rate.RateSet{
		Weekday:   a.WeekdayRate,
		Holiday:   a.HolidayRate,
		Kilometer: a.KilometerRate,
	}
}
