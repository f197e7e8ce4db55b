package expense

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrConcurrentModification means the allocation's version changed
	// between read and write. The ledger retries a few times before
	// surfacing it.
	ErrConcurrentModification = errors.New("allocation was modified concurrently")
	ErrExpenseVoided          = errors.New("expense is already voided")
	ErrExpenseNotFound        = errors.New("expense not found")
)

// BudgetExpense is one debit against a client's budget. AllocationID is nil
// for direct assistance expenses, which are recorded for the audit trail but
// never consume an allocation.
//
// Expenses are never deleted. Reversal voids the expense and re-credits the
// allocation, so the history of every debit survives.
type BudgetExpense struct {
	ID              int
	UID             string
	AllocationID    *int
	Amount          decimal.Decimal
	Description     string
	ExpenseDate     time.Time
	TimeLogID       *int
	CompensationUID *string
	Voided          bool
	CreatedAt       time.Time
}

// ExceededWarning reports that a debit pushed an allocation over its
// allocated amount. The debit has already been committed when the warning is
// raised.
type ExceededWarning struct {
	AllocationID int
	Allocated    decimal.Decimal
	Used         decimal.Decimal
	Overrun      decimal.Decimal
}

func (w ExceededWarning) String() string {
	return fmt.Sprintf("allocation %d exceeded: %s used of %s allocated (overrun %s)",
		w.AllocationID, w.Used, w.Allocated, w.Overrun)
}
