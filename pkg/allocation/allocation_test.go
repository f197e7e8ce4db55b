package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/curaflow/curaflow/pkg/budget_type"
)

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestIsActiveBetween(t *testing.T) {
	tests := []struct {
		name       string
		allocation BudgetAllocation
		from       string
		to         string
		expected   bool
	}{
		{
			name:       "range inside allocation period",
			allocation: BudgetAllocation{StartDate: date("2025-01-01"), EndDate: date("2025-06-30")},
			from:       "2025-02-01",
			to:         "2025-02-28",
			expected:   true,
		},
		{
			name:       "range overlapping allocation start",
			allocation: BudgetAllocation{StartDate: date("2025-01-01"), EndDate: date("2025-06-30")},
			from:       "2024-12-15",
			to:         "2025-01-15",
			expected:   true,
		},
		{
			name:       "range ending the day the allocation starts",
			allocation: BudgetAllocation{StartDate: date("2025-01-01"), EndDate: date("2025-06-30")},
			from:       "2024-12-01",
			to:         "2025-01-01",
			expected:   true,
		},
		{
			name:       "range entirely before allocation",
			allocation: BudgetAllocation{StartDate: date("2025-01-01"), EndDate: date("2025-06-30")},
			from:       "2024-11-01",
			to:         "2024-12-31",
			expected:   false,
		},
		{
			name:       "range entirely after allocation",
			allocation: BudgetAllocation{StartDate: date("2025-01-01"), EndDate: date("2025-06-30")},
			from:       "2025-07-01",
			to:         "2025-07-31",
			expected:   false,
		},
		{
			name:       "open-ended allocation matches any range",
			allocation: BudgetAllocation{},
			from:       "2025-02-01",
			to:         "2025-02-28",
			expected:   true,
		},
		{
			name:       "open end date matches future range",
			allocation: BudgetAllocation{StartDate: date("2025-01-01")},
			from:       "2030-01-01",
			to:         "2030-12-31",
			expected:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.allocation.IsActiveBetween(date(tt.from), date(tt.to)))
		})
	}
}

func TestAvailableAndUsedPercentage(t *testing.T) {
	alloc := BudgetAllocation{
		AllocatedAmount: decimal.NewFromInt(200),
		UsedAmount:      decimal.NewFromInt(50),
	}
	assert.True(t, decimal.NewFromInt(150).Equal(alloc.Available()))
	assert.True(t, decimal.NewFromInt(25).Equal(alloc.UsedPercentage()))

	overBudget := BudgetAllocation{
		AllocatedAmount: decimal.NewFromInt(100),
		UsedAmount:      decimal.NewFromInt(120),
	}
	assert.True(t, decimal.NewFromInt(-20).Equal(overBudget.Available()))

	empty := BudgetAllocation{UsedAmount: decimal.NewFromInt(10)}
	assert.True(t, empty.UsedPercentage().IsZero())
}

func TestMatchAnnotatesAllocationsAndSummaries(t *testing.T) {
	ctx := context.Background()
	repo := NewStubAllocationRepo()
	typeRepo := budget_type.NewStubBudgetTypeRepo()

	careID, err := typeRepo.Store(ctx, budget_type.BudgetType{Name: "Personal Care", Code: "CARE"})
	assert.NoError(t, err)
	respiteID, err := typeRepo.Store(ctx, budget_type.BudgetType{Name: "Respite", Code: "RESPITE"})
	assert.NoError(t, err)

	// two allocations of the same type stay separate in the result
	repo.Put(BudgetAllocation{
		ID: 1, ClientID: 7, BudgetTypeID: careID,
		AllocatedAmount: decimal.NewFromInt(100), UsedAmount: decimal.NewFromInt(90),
		StartDate: date("2025-01-01"), EndDate: date("2025-06-30"),
	})
	repo.Put(BudgetAllocation{
		ID: 2, ClientID: 7, BudgetTypeID: careID,
		AllocatedAmount: decimal.NewFromInt(200), UsedAmount: decimal.NewFromInt(40),
		StartDate: date("2025-01-01"), EndDate: date("2025-12-31"),
	})
	repo.Put(BudgetAllocation{
		ID: 3, ClientID: 7, BudgetTypeID: respiteID,
		AllocatedAmount: decimal.NewFromInt(50),
		StartDate:       date("2025-01-01"), EndDate: date("2025-12-31"),
	})
	// expired allocation stays out of the match
	repo.Put(BudgetAllocation{
		ID: 4, ClientID: 7, BudgetTypeID: careID,
		AllocatedAmount: decimal.NewFromInt(500),
		StartDate:       date("2024-01-01"), EndDate: date("2024-12-31"),
	})
	// other client's allocation stays out too
	repo.Put(BudgetAllocation{
		ID: 5, ClientID: 8, BudgetTypeID: careID,
		AllocatedAmount: decimal.NewFromInt(300),
		StartDate:       date("2025-01-01"), EndDate: date("2025-12-31"),
	})

	service := NewAllocationService(repo, typeRepo)
	result, err := service.Match(ctx, 7, date("2025-02-01"), date("2025-02-28"))
	assert.NoError(t, err)

	assert.Len(t, result.Allocations, 3)
	first := result.Allocations[0]
	assert.Equal(t, 1, first.Allocation.ID)
	assert.Equal(t, "Personal Care", first.BudgetType.Name)
	assert.True(t, decimal.NewFromInt(10).Equal(first.Available))
	assert.True(t, decimal.NewFromInt(90).Equal(first.UsedPercentage))

	assert.Len(t, result.Summaries, 2)
	care := result.Summaries[0]
	assert.Equal(t, "Personal Care", care.BudgetType.Name)
	assert.Equal(t, 2, care.AllocationCount)
	assert.True(t, decimal.NewFromInt(300).Equal(care.TotalAllocated))
	assert.True(t, decimal.NewFromInt(130).Equal(care.TotalUsed))
	assert.True(t, decimal.NewFromInt(170).Equal(care.TotalAvailable))

	respite := result.Summaries[1]
	assert.Equal(t, "Respite", respite.BudgetType.Name)
	assert.Equal(t, 1, respite.AllocationCount)
	assert.True(t, decimal.NewFromInt(50).Equal(respite.TotalAvailable))
}

func TestCreateValidatesAllocation(t *testing.T) {
	ctx := context.Background()
	repo := NewStubAllocationRepo()
	typeRepo := budget_type.NewStubBudgetTypeRepo()
	typeID, err := typeRepo.Store(ctx, budget_type.BudgetType{Name: "Personal Care", Code: "CARE"})
	assert.NoError(t, err)

	service := NewAllocationService(repo, typeRepo)

	_, err = service.Create(ctx, BudgetAllocation{
		ClientID: 1, BudgetTypeID: typeID,
		AllocatedAmount: decimal.NewFromInt(-10),
		StartDate:       date("2025-01-01"), EndDate: date("2025-12-31"),
	})
	assert.Error(t, err)

	_, err = service.Create(ctx, BudgetAllocation{
		ClientID: 1, BudgetTypeID: typeID,
		AllocatedAmount: decimal.NewFromInt(100),
		StartDate:       date("2025-12-31"), EndDate: date("2025-01-01"),
	})
	assert.Error(t, err)

	_, err = service.Create(ctx, BudgetAllocation{
		ClientID: 1, BudgetTypeID: 999,
		AllocatedAmount: decimal.NewFromInt(100),
		StartDate:       date("2025-01-01"), EndDate: date("2025-12-31"),
	})
	assert.Error(t, err)

	created, err := service.Create(ctx, BudgetAllocation{
		ClientID: 1, BudgetTypeID: typeID,
		AllocatedAmount: decimal.NewFromInt(100),
		StartDate:       date("2025-01-01"), EndDate: date("2025-12-31"),
	})
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.UsedAmount.IsZero())
}