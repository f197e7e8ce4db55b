package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/curaflow/curaflow/internal/event_bus"
	"github.com/curaflow/curaflow/pkg/allocation"
)

// maxDebitAttempts bounds optimistic retries on concurrent allocation
// updates before the conflict is surfaced to the caller.
const maxDebitAttempts = 3

type DebitRequest struct {
	AllocationID    *int
	Amount          decimal.Decimal
	Description     string
	ExpenseDate     time.Time
	TimeLogID       *int
	CompensationUID *string
}

// DebitResult carries the recorded expense and, when the debit pushed the
// allocation over its allocated amount, a warning. Warning is advisory: the
// expense is committed either way.
type DebitResult struct {
	Expense BudgetExpense
	Warning *ExceededWarning
}

type Ledger interface {
	Debit(ctx context.Context, req DebitRequest) (DebitResult, error)
	Reverse(ctx context.Context, uid string) (BudgetExpense, error)
	Get(ctx context.Context, uid string) (BudgetExpense, error)
	GetByAllocation(ctx context.Context, allocationID int) ([]BudgetExpense, error)
	GetByCompensation(ctx context.Context, compensationUID string) ([]BudgetExpense, error)
}

type LedgerImpl struct {
	repo ExpenseRepo
	bus  *event_bus.EventBus
}

func NewLedger(repo ExpenseRepo, bus *event_bus.EventBus) *LedgerImpl {
	return &LedgerImpl{repo: repo, bus: bus}
}

func (l *LedgerImpl) Debit(ctx context.Context, req DebitRequest) (DebitResult, error) {
	if !req.Amount.IsPositive() {
		return DebitResult{}, fmt.Errorf("debit amount must be positive, got %s", req.Amount)
	}
	if req.ExpenseDate.IsZero() {
		return DebitResult{}, fmt.Errorf("expense date is required")
	}

	exp := BudgetExpense{
		UID:             uuid.NewString(),
		AllocationID:    req.AllocationID,
		Amount:          req.Amount,
		Description:     req.Description,
		ExpenseDate:     req.ExpenseDate,
		TimeLogID:       req.TimeLogID,
		CompensationUID: req.CompensationUID,
	}

	var stored BudgetExpense
	var snapshot *allocation.BudgetAllocation
	var err error
	for attempt := 1; attempt <= maxDebitAttempts; attempt++ {
		stored, snapshot, err = l.repo.Debit(ctx, exp)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConcurrentModification) {
			return DebitResult{}, err
		}
		log.Warnf("debit of allocation conflicted (attempt %d/%d), retrying", attempt, maxDebitAttempts)
	}
	if err != nil {
		return DebitResult{}, err
	}

	result := DebitResult{Expense: stored}
	if snapshot != nil && snapshot.UsedAmount.GreaterThan(snapshot.AllocatedAmount) {
		result.Warning = &ExceededWarning{
			AllocationID: snapshot.ID,
			Allocated:    snapshot.AllocatedAmount,
			Used:         snapshot.UsedAmount,
			Overrun:      snapshot.UsedAmount.Sub(snapshot.AllocatedAmount),
		}
	}

	l.publish(ctx, event_bus.TypeExpenseRecorded, event_bus.ExpenseRecorded{
		ExpenseUID:   stored.UID,
		AllocationID: stored.AllocationID,
		Amount:       stored.Amount,
		ExpenseDate:  stored.ExpenseDate,
		Description:  stored.Description,
	})
	if result.Warning != nil {
		l.publish(ctx, event_bus.TypeAllocationExceeded, event_bus.AllocationExceeded{
			AllocationID: result.Warning.AllocationID,
			ClientID:     snapshot.ClientID,
			Allocated:    result.Warning.Allocated,
			Used:         result.Warning.Used,
			Overrun:      result.Warning.Overrun,
		})
	}
	return result, nil
}

func (l *LedgerImpl) Reverse(ctx context.Context, uid string) (BudgetExpense, error) {
	return l.repo.Reverse(ctx, uid)
}

func (l *LedgerImpl) Get(ctx context.Context, uid string) (BudgetExpense, error) {
	return l.repo.Get(ctx, uid)
}

func (l *LedgerImpl) GetByAllocation(ctx context.Context, allocationID int) ([]BudgetExpense, error) {
	return l.repo.GetByAllocation(ctx, allocationID)
}

func (l *LedgerImpl) GetByCompensation(ctx context.Context, compensationUID string) ([]BudgetExpense, error) {
	return l.repo.GetByCompensation(ctx, compensationUID)
}

func (l *LedgerImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if l.bus == nil {
		return
	}
	if err := l.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("event %s handler failed: %v", eventType, err)
	}
}
