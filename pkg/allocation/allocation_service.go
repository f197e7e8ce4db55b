package allocation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/curaflow/curaflow/pkg/budget_type"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// AllocationStatus is a single allocation annotated with its budget type
// and balance figures, as callers need it for selection.
type AllocationStatus struct {
	Allocation     BudgetAllocation
	BudgetType     budget_type.BudgetType
	Available      decimal.Decimal
	UsedPercentage decimal.Decimal
}

// BudgetTypeSummary aggregates the concurrently active allocations of one
// budget type for the summary view. Individual allocations keep their own
// used amounts and are never merged; this is an additional view, not a
// replacement.
type BudgetTypeSummary struct {
	BudgetType      budget_type.BudgetType
	AllocationCount int
	TotalAllocated  decimal.Decimal
	TotalUsed       decimal.Decimal
	TotalAvailable  decimal.Decimal
}

type MatchResult struct {
	Allocations []AllocationStatus
	Summaries   []BudgetTypeSummary
}

type AllocationService interface {
	Get(ctx context.Context, id int) (BudgetAllocation, error)
	GetAllByClient(ctx context.Context, clientID int) ([]BudgetAllocation, error)
	Create(ctx context.Context, alloc BudgetAllocation) (BudgetAllocation, error)
	Update(ctx context.Context, alloc BudgetAllocation) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	// Match returns the client's allocations active in [from, to], each
	// individually annotated, plus per-budget-type aggregates.
	Match(ctx context.Context, clientID int, from, to time.Time) (MatchResult, error)
}

type AllocationServiceImpl struct {
	repo           AllocationRepo
	budgetTypeRepo budget_type.BudgetTypeRepo
}

func NewAllocationService(repo AllocationRepo, budgetTypeRepo budget_type.BudgetTypeRepo) *AllocationServiceImpl {
	return &AllocationServiceImpl{repo: repo, budgetTypeRepo: budgetTypeRepo}
}

func (s *AllocationServiceImpl) Get(ctx context.Context, id int) (BudgetAllocation, error) {
	return s.repo.Get(ctx, id)
}

func (s *AllocationServiceImpl) GetAllByClient(ctx context.Context, clientID int) ([]BudgetAllocation, error) {
	return s.repo.GetAllByClient(ctx, clientID)
}

func (s *AllocationServiceImpl) Create(ctx context.Context, alloc BudgetAllocation) (BudgetAllocation, error) {
	if err := validateAllocation(alloc); err != nil {
		return BudgetAllocation{}, err
	}
	if _, err := s.budgetTypeRepo.Get(ctx, alloc.BudgetTypeID); err != nil {
		return BudgetAllocation{}, fmt.Errorf("invalid budget type %d: %w", alloc.BudgetTypeID, err)
	}

	id, err := s.repo.Store(ctx, alloc)
	if err != nil {
		return BudgetAllocation{}, err
	}
	alloc.ID = id
	return alloc, nil
}

func (s *AllocationServiceImpl) Update(ctx context.Context, alloc BudgetAllocation) (bool, error) {
	if err := validateAllocation(alloc); err != nil {
		return false, err
	}
	updated, err := s.repo.Update(ctx, alloc)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("allocation not updated, probably because it does not exist (%d)", alloc.ID)
		return false, fmt.Errorf("allocation not updated")
	}
	return true, nil
}

func (s *AllocationServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *AllocationServiceImpl) Match(ctx context.Context, clientID int, from, to time.Time) (MatchResult, error) {
	allocations, err := s.repo.FindActive(ctx, clientID, from, to)
	if err != nil {
		return MatchResult{}, err
	}

	budgetTypes := map[int]budget_type.BudgetType{}
	statuses := make([]AllocationStatus, 0, len(allocations))
	for _, alloc := range allocations {
		budgetType, ok := budgetTypes[alloc.BudgetTypeID]
		if !ok {
			budgetType, err = s.budgetTypeRepo.Get(ctx, alloc.BudgetTypeID)
			if err != nil {
				return MatchResult{}, fmt.Errorf("failed to load budget type %d: %w", alloc.BudgetTypeID, err)
			}
			budgetTypes[alloc.BudgetTypeID] = budgetType
		}
		statuses = append(statuses, AllocationStatus{
			Allocation:     alloc,
			BudgetType:     budgetType,
			Available:      alloc.Available(),
			UsedPercentage: alloc.UsedPercentage(),
		})
	}

	summaryByType := map[int]*BudgetTypeSummary{}
	for _, status := range statuses {
		summary, ok := summaryByType[status.BudgetType.ID]
		if !ok {
			summary = &BudgetTypeSummary{BudgetType: status.BudgetType}
			summaryByType[status.BudgetType.ID] = summary
		}
		summary.AllocationCount++
		summary.TotalAllocated = summary.TotalAllocated.Add(status.Allocation.AllocatedAmount)
		summary.TotalUsed = summary.TotalUsed.Add(status.Allocation.UsedAmount)
		summary.TotalAvailable = summary.TotalAvailable.Add(status.Available)
	}

	summaries := make([]BudgetTypeSummary, 0, len(summaryByType))
	for _, summary := range summaryByType {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].BudgetType.Name < summaries[j].BudgetType.Name
	})

	return MatchResult{Allocations: statuses, Summaries: summaries}, nil
}

func validateAllocation(alloc BudgetAllocation) error {
	if alloc.ClientID == 0 {
		return fmt.Errorf("allocation client is required")
	}
	if alloc.StartDate.IsZero() || alloc.EndDate.IsZero() {
		return fmt.Errorf("allocation start and end dates are required")
	}
	if alloc.EndDate.Before(alloc.StartDate) {
		return fmt.Errorf("allocation end date is before start date")
	}
	if alloc.AllocatedAmount.IsNegative() {
		return fmt.Errorf("allocated amount cannot be negative")
	}
	return nil
}
