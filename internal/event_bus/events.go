package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRecorded is published by the ledger after a debit has been
// committed, for both allocation-backed and direct assistance expenses.
type ExpenseRecorded struct {
	ExpenseUID   string
	AllocationID *int
	Amount       decimal.Decimal
	ExpenseDate  time.Time
	Description  string
}

// AllocationExceeded is published when a debit pushed an allocation's used
// amount above its allocated amount. The debit itself is never refused.
type AllocationExceeded struct {
	AllocationID int
	ClientID     int
	Allocated    decimal.Decimal
	Used         decimal.Decimal
	Overrun      decimal.Decimal
}

// CompensationStatusChanged is published on every compensation state
// machine transition, including deletion.
type CompensationStatusChanged struct {
	CompensationUID string
	StaffID         int
	From            string
	To              string
	Total           decimal.Decimal
}
