package expense

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/curaflow/curaflow/internal/test_utils"
	"github.com/curaflow/curaflow/pkg/allocation"
	"github.com/curaflow/curaflow/pkg/budget_type"
	"github.com/curaflow/curaflow/pkg/client"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var db *sql.DB

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	defer cleanup()
	code := m.Run()
	os.Exit(code)
}

// setupAllocation stores a fresh client, budget type and allocation so each
// test debits an allocation no other test has touched.
func setupAllocation(t *testing.T, allocated int64) (context.Context, int) {
	t.Helper()
	ctx := context.Background()

	clientId, err := client.NewClientRepo(db).Store(ctx, client.Client{
		FirstName: "Test",
		LastName:  "Client",
		Status:    client.ClientStatusActive,
	})
	assert.NoError(t, err)

	typeId, err := budget_type.NewBudgetTypeRepo(db).Store(ctx, budget_type.BudgetType{
		Name: "Personal Care",
		Code: uuid.NewString(),
	})
	assert.NoError(t, err)

	allocId, err := allocation.NewAllocationRepo(db).Store(ctx, allocation.BudgetAllocation{
		ClientID:        clientId,
		BudgetTypeID:    typeId,
		AllocatedAmount: decimal.NewFromInt(allocated),
		StartDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Version:         1,
	})
	assert.NoError(t, err)

	return ctx, allocId
}

func TestExpenseRepoImpl_Debit(t *testing.T) {
	// given
	ctx, allocId := setupAllocation(t, 100)
	repo := NewExpenseRepo(db)

	// when
	stored, alloc, err := repo.Debit(ctx, BudgetExpense{
		UID:          uuid.NewString(),
		AllocationID: &allocId,
		Amount:       decimal.NewFromInt(40),
		Description:  "Morning visit",
		ExpenseDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	// then
	assert.NotZero(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.True(t, decimal.NewFromInt(40).Equal(alloc.UsedAmount))
	assert.Equal(t, 2, alloc.Version)

	reloaded, err := allocation.NewAllocationRepo(db).Get(ctx, allocId)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(reloaded.UsedAmount))
	assert.Equal(t, 2, reloaded.Version)
}

func TestExpenseRepoImpl_Debit_DirectExpenseTouchesNoAllocation(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewExpenseRepo(db)

	// when
	stored, alloc, err := repo.Debit(ctx, BudgetExpense{
		UID:         uuid.NewString(),
		Amount:      decimal.NewFromInt(25),
		Description: "Out of pocket supplies",
		ExpenseDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
	})

	// then
	assert.NoError(t, err)
	assert.Nil(t, alloc)
	assert.Nil(t, stored.AllocationID)

	fetched, err := repo.Get(ctx, stored.UID)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(fetched.Amount))
}

func TestExpenseRepoImpl_Debit_UnknownAllocation(t *testing.T) {
	// given
	ctx := context.Background()
	repo := NewExpenseRepo(db)

	// when
	missing := 999999
	_, _, err := repo.Debit(ctx, BudgetExpense{
		UID:          uuid.NewString(),
		AllocationID: &missing,
		Amount:       decimal.NewFromInt(10),
		ExpenseDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	// then
	assert.ErrorIs(t, err, allocation.ErrAllocationNotFound)
}

func TestExpenseRepoImpl_Reverse(t *testing.T) {
	// given
	ctx, allocId := setupAllocation(t, 100)
	repo := NewExpenseRepo(db)

	stored, _, err := repo.Debit(ctx, BudgetExpense{
		UID:          uuid.NewString(),
		AllocationID: &allocId,
		Amount:       decimal.NewFromInt(60),
		Description:  "Evening visit",
		ExpenseDate:  time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	// when
	reversed, err := repo.Reverse(ctx, stored.UID)
	assert.NoError(t, err)

	// then
	assert.True(t, reversed.Voided)
	alloc, err := allocation.NewAllocationRepo(db).Get(ctx, allocId)
	assert.NoError(t, err)
	assert.True(t, alloc.UsedAmount.IsZero())

	// reversing twice must not re-credit again
	_, err = repo.Reverse(ctx, stored.UID)
	assert.ErrorIs(t, err, ErrExpenseVoided)
}

func TestExpenseRepoImpl_GetByCompensation(t *testing.T) {
	// given
	ctx, allocId := setupAllocation(t, 500)
	repo := NewExpenseRepo(db)
	compUID := uuid.NewString()

	for _, amount := range []int64{100, 200} {
		_, _, err := repo.Debit(ctx, BudgetExpense{
			UID:             uuid.NewString(),
			AllocationID:    &allocId,
			Amount:          decimal.NewFromInt(amount),
			ExpenseDate:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			CompensationUID: &compUID,
		})
		assert.NoError(t, err)
	}

	// when
	linked, err := repo.GetByCompensation(ctx, compUID)

	// then
	assert.NoError(t, err)
	assert.Len(t, linked, 2)
	assert.True(t, decimal.NewFromInt(100).Equal(linked[0].Amount))
	assert.True(t, decimal.NewFromInt(200).Equal(linked[1].Amount))
}
