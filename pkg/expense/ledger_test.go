package expense

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/curaflow/curaflow/internal/event_bus"
	"github.com/curaflow/curaflow/pkg/allocation"
)

func newTestLedger(t *testing.T) (*LedgerImpl, *allocation.StubAllocationRepo, *StubExpenseRepo, *event_bus.EventBus) {
	t.Helper()
	allocations := allocation.NewStubAllocationRepo()
	repo := NewStubExpenseRepo(allocations)
	bus := event_bus.NewEventBus()
	return NewLedger(repo, bus), allocations, repo, bus
}

func expenseDate(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestDebitConsumesAllocation(t *testing.T) {
	ctx := context.Background()
	ledger, allocations, _, _ := newTestLedger(t)
	allocations.Put(allocation.BudgetAllocation{
		ID: 1, ClientID: 7, AllocatedAmount: decimal.NewFromInt(100),
	})
	allocID := 1

	result, err := ledger.Debit(ctx, DebitRequest{
		AllocationID: &allocID,
		Amount:       decimal.NewFromInt(90),
		Description:  "care visit",
		ExpenseDate:  expenseDate("2025-03-10"),
	})
	assert.NoError(t, err)
	assert.Nil(t, result.Warning)
	assert.NotEmpty(t, result.Expense.UID)

	alloc, err := allocations.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(90).Equal(alloc.UsedAmount))
}

func TestDebitOverBudgetWarnsButCommits(t *testing.T) {
	ctx := context.Background()
	ledger, allocations, _, bus := newTestLedger(t)
	allocations.Put(allocation.BudgetAllocation{
		ID: 1, ClientID: 7,
		AllocatedAmount: decimal.NewFromInt(100),
		UsedAmount:      decimal.NewFromInt(90),
	})
	allocID := 1

	var exceeded []event_bus.AllocationExceeded
	event_bus.SubscribeTyped[event_bus.AllocationExceeded](bus, event_bus.TypeAllocationExceeded,
		func(e event_bus.EventT[event_bus.AllocationExceeded]) error {
			exceeded = append(exceeded, e.Data)
			return nil
		})

	result, err := ledger.Debit(ctx, DebitRequest{
		AllocationID: &allocID,
		Amount:       decimal.NewFromInt(30),
		Description:  "care visit",
		ExpenseDate:  expenseDate("2025-03-10"),
	})
	assert.NoError(t, err)
	assert.NotNil(t, result.Warning)
	assert.True(t, decimal.NewFromInt(120).Equal(result.Warning.Used))
	assert.True(t, decimal.NewFromInt(20).Equal(result.Warning.Overrun))

	// debit committed despite the warning
	alloc, err := allocations.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(alloc.UsedAmount))

	assert.Len(t, exceeded, 1)
	assert.Equal(t, 7, exceeded[0].ClientID)
	assert.True(t, decimal.NewFromInt(20).Equal(exceeded[0].Overrun))
}

func TestDirectExpenseTouchesNoAllocation(t *testing.T) {
	ctx := context.Background()
	ledger, allocations, _, bus := newTestLedger(t)
	allocations.Put(allocation.BudgetAllocation{
		ID: 1, ClientID: 7, AllocatedAmount: decimal.NewFromInt(100),
	})

	var recorded []event_bus.ExpenseRecorded
	event_bus.SubscribeTyped[event_bus.ExpenseRecorded](bus, event_bus.TypeExpenseRecorded,
		func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
			recorded = append(recorded, e.Data)
			return nil
		})

	result, err := ledger.Debit(ctx, DebitRequest{
		Amount:      decimal.NewFromInt(45),
		Description: "direct assistance",
		ExpenseDate: expenseDate("2025-03-10"),
	})
	assert.NoError(t, err)
	assert.Nil(t, result.Warning)
	assert.Nil(t, result.Expense.AllocationID)

	alloc, err := allocations.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, alloc.UsedAmount.IsZero())

	assert.Len(t, recorded, 1)
	assert.Nil(t, recorded[0].AllocationID)
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger(t)

	_, err := ledger.Debit(ctx, DebitRequest{
		Amount:      decimal.Zero,
		ExpenseDate: expenseDate("2025-03-10"),
	})
	assert.Error(t, err)

	_, err = ledger.Debit(ctx, DebitRequest{
		Amount:      decimal.NewFromInt(-5),
		ExpenseDate: expenseDate("2025-03-10"),
	})
	assert.Error(t, err)
}

func TestDebitRetriesOnConcurrentModification(t *testing.T) {
	ctx := context.Background()
	ledger, allocations, repo, _ := newTestLedger(t)
	allocations.Put(allocation.BudgetAllocation{
		ID: 1, ClientID: 7, AllocatedAmount: decimal.NewFromInt(100),
	})
	allocID := 1

	repo.FailDebits = 2
	result, err := ledger.Debit(ctx, DebitRequest{
		AllocationID: &allocID,
		Amount:       decimal.NewFromInt(10),
		ExpenseDate:  expenseDate("2025-03-10"),
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Expense.UID)

	// one more conflict than the retry budget surfaces the error
	repo.FailDebits = maxDebitAttempts
	_, err = ledger.Debit(ctx, DebitRequest{
		AllocationID: &allocID,
		Amount:       decimal.NewFromInt(10),
		ExpenseDate:  expenseDate("2025-03-10"),
	})
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestReverseRecreditsAndVoids(t *testing.T) {
	ctx := context.Background()
	ledger, allocations, _, _ := newTestLedger(t)
	allocations.Put(allocation.BudgetAllocation{
		ID: 1, ClientID: 7, AllocatedAmount: decimal.NewFromInt(100),
	})
	allocID := 1

	result, err := ledger.Debit(ctx, DebitRequest{
		AllocationID: &allocID,
		Amount:       decimal.NewFromInt(60),
		ExpenseDate:  expenseDate("2025-03-10"),
	})
	assert.NoError(t, err)

	reversed, err := ledger.Reverse(ctx, result.Expense.UID)
	assert.NoError(t, err)
	assert.True(t, reversed.Voided)

	alloc, err := allocations.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, alloc.UsedAmount.IsZero())

	// double reversal is refused
	_, err = ledger.Reverse(ctx, result.Expense.UID)
	assert.ErrorIs(t, err, ErrExpenseVoided)

	_, err = ledger.Reverse(ctx, "no-such-uid")
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}
