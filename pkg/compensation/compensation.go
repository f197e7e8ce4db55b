package compensation

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCompensationNotFound = errors.New("compensation not found")
	// ErrPeriodOverlap means the staff member already has a compensation
	// whose period overlaps the requested one.
	ErrPeriodOverlap = errors.New("compensation period overlaps an existing compensation")
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusPaid            Status = "paid"
)

// CanTransitionTo encodes the forward path of the state machine:
// draft -> pending_approval -> approved -> paid. Deletion is allowed from
// any state and is not a transition in this sense.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPendingApproval
	case StatusPendingApproval:
		return next == StatusApproved
	case StatusApproved:
		return next == StatusPaid
	default:
		return false
	}
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition compensation from %s to %s", e.From, e.To)
}

// ChargeMismatchError reports that submitted charges do not reconcile
// exactly with the compensation total. This is a hard error; nothing is
// debited.
type ChargeMismatchError struct {
	Expected   decimal.Decimal
	Charged    decimal.Decimal
	Difference decimal.Decimal
}

func (e *ChargeMismatchError) Error() string {
	return fmt.Sprintf("charges sum to %s but compensation total is %s (difference %s)",
		e.Charged, e.Expected, e.Difference)
}

// Charge assigns part of the compensation total to one budget allocation,
// or to direct assistance when AllocationID is nil. ExpenseUID links the
// ledger debit once the compensation has been submitted.
type Charge struct {
	ID           int
	AllocationID *int
	Amount       decimal.Decimal
	ExpenseUID   *string
}

// BucketLine is the hours and amount accrued in one time bucket.
type BucketLine struct {
	Hours  decimal.Decimal
	Amount decimal.Decimal
}

// UnbillableLog identifies a time log that could not be costed during
// calculation. Unbillable logs never contribute to any total.
type UnbillableLog struct {
	TimeLogID int
	Reason    string
}

// Breakdown is the calculated compensation for one staff member and period.
// TotalCompensation is always recomputed from the bucket amounts plus
// mileage, never taken from input.
type Breakdown struct {
	Regular  BucketLine
	Weekend  BucketLine
	Holiday  BucketLine
	Overtime BucketLine

	Kilometers    decimal.Decimal
	MileageAmount decimal.Decimal

	TotalCompensation decimal.Decimal

	BillableLogs int
	// UnbillableLogs is calculation-time information and is not persisted
	// with the compensation record.
	UnbillableLogs []UnbillableLog
}

// TotalHours sums the hours of all buckets.
func (b Breakdown) TotalHours() decimal.Decimal {
	return b.Regular.Hours.Add(b.Weekend.Hours).Add(b.Holiday.Hours).Add(b.Overtime.Hours)
}

type Compensation struct {
	ID          int
	UID         string
	StaffID     int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      Status
	Breakdown   Breakdown
	Charges     []Charge
	CreatedAt   time.Time
}
