package expense

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/curaflow/curaflow/pkg/allocation"
)

// StubExpenseRepo mirrors the transactional debit semantics of the SQL repo
// against a StubAllocationRepo so ledger behaviour can be tested in memory.
type StubExpenseRepo struct {
	nextId      int
	data        map[string]BudgetExpense
	allocations *allocation.StubAllocationRepo
	// FailDebits makes the next N debits return ErrConcurrentModification,
	// for exercising the retry path.
	FailDebits int
	// FailReversals makes the next N reversals fail, for exercising
	// rollback error paths.
	FailReversals int
}

func NewStubExpenseRepo(allocations *allocation.StubAllocationRepo) *StubExpenseRepo {
	return &StubExpenseRepo{data: map[string]BudgetExpense{}, allocations: allocations}
}

func (s *StubExpenseRepo) Debit(ctx context.Context, exp BudgetExpense) (BudgetExpense, *allocation.BudgetAllocation, error) {
	if s.FailDebits > 0 {
		s.FailDebits--
		return BudgetExpense{}, nil, ErrConcurrentModification
	}

	var snapshot *allocation.BudgetAllocation
	if exp.AllocationID != nil {
		alloc, err := s.allocations.Get(ctx, *exp.AllocationID)
		if err != nil {
			return BudgetExpense{}, nil, err
		}
		alloc.UsedAmount = alloc.UsedAmount.Add(exp.Amount)
		alloc.Version++
		s.allocations.Put(alloc)
		snapshot = &alloc
	}

	s.nextId++
	exp.ID = s.nextId
	exp.CreatedAt = time.Now()
	s.data[exp.UID] = exp
	return exp, snapshot, nil
}

func (s *StubExpenseRepo) Reverse(ctx context.Context, uid string) (BudgetExpense, error) {
	if s.FailReversals > 0 {
		s.FailReversals--
		return BudgetExpense{}, errors.New("reversal failed")
	}
	exp, ok := s.data[uid]
	if !ok {
		return BudgetExpense{}, ErrExpenseNotFound
	}
	if exp.Voided {
		return BudgetExpense{}, ErrExpenseVoided
	}
	exp.Voided = true
	s.data[uid] = exp

	if exp.AllocationID != nil {
		alloc, err := s.allocations.Get(ctx, *exp.AllocationID)
		if err != nil {
			return BudgetExpense{}, err
		}
		alloc.UsedAmount = alloc.UsedAmount.Sub(exp.Amount)
		alloc.Version++
		s.allocations.Put(alloc)
	}
	return exp, nil
}

func (s *StubExpenseRepo) Get(ctx context.Context, uid string) (BudgetExpense, error) {
	exp, ok := s.data[uid]
	if !ok {
		return BudgetExpense{}, ErrExpenseNotFound
	}
	return exp, nil
}

func (s *StubExpenseRepo) GetByAllocation(ctx context.Context, allocationID int) ([]BudgetExpense, error) {
	expenses := make([]BudgetExpense, 0)
	for _, exp := range s.data {
		if exp.AllocationID != nil && *exp.AllocationID == allocationID {
			expenses = append(expenses, exp)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].ID < expenses[j].ID })
	return expenses, nil
}

func (s *StubExpenseRepo) GetByCompensation(ctx context.Context, compensationUID string) ([]BudgetExpense, error) {
	expenses := make([]BudgetExpense, 0)
	for _, exp := range s.data {
		if exp.CompensationUID != nil && *exp.CompensationUID == compensationUID {
			expenses = append(expenses, exp)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].ID < expenses[j].ID })
	return expenses, nil
}
