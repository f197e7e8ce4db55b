package timelog

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeLog is a single worked shift, costed at creation time. Hours,
// HourlyRate and TotalCost are computed server-side from the shift times and
// the resolved rates; values supplied by the caller are ignored.
//
// HourlyRate is the effective blended rate, so
// TotalCost = Hours * HourlyRate + mileage holds for every stored log.
type TimeLog struct {
	ID           int
	ClientID     int
	StaffID      int
	AllocationID *int
	StartTime    time.Time
	EndTime      time.Time
	// ServiceDate is the UTC calendar date of StartTime.
	ServiceDate time.Time
	Hours       decimal.Decimal
	Kilometers  decimal.Decimal
	HourlyRate  decimal.Decimal
	TotalCost   decimal.Decimal
	Description string
	// ExpenseUID links the ledger debit recorded for this shift.
	ExpenseUID *string
	CreatedAt  time.Time
}
