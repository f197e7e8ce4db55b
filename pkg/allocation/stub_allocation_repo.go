package allocation

import (
	"context"
	"sort"
	"time"
)

type StubAllocationRepo struct {
	nextId int
	data   map[int]BudgetAllocation
}

func NewStubAllocationRepo() *StubAllocationRepo {
	return &StubAllocationRepo{data: map[int]BudgetAllocation{}}
}

func (s *StubAllocationRepo) Store(ctx context.Context, alloc BudgetAllocation) (int, error) {
	s.nextId++
	alloc.ID = s.nextId
	alloc.Version = 1
	s.data[alloc.ID] = alloc
	return alloc.ID, nil
}

func (s *StubAllocationRepo) Get(ctx context.Context, id int) (BudgetAllocation, error) {
	alloc, ok := s.data[id]
	if !ok {
		return BudgetAllocation{}, ErrAllocationNotFound
	}
	return alloc, nil
}

func (s *StubAllocationRepo) GetAllByClient(ctx context.Context, clientID int) ([]BudgetAllocation, error) {
	allocations := make([]BudgetAllocation, 0)
	for _, alloc := range s.data {
		if alloc.ClientID == clientID {
			allocations = append(allocations, alloc)
		}
	}
	sort.Slice(allocations, func(i, j int) bool { return allocations[i].ID < allocations[j].ID })
	return allocations, nil
}

func (s *StubAllocationRepo) FindActive(ctx context.Context, clientID int, from, to time.Time) ([]BudgetAllocation, error) {
	allocations := make([]BudgetAllocation, 0)
	for _, alloc := range s.data {
		if alloc.ClientID == clientID && alloc.IsActiveBetween(from, to) {
			allocations = append(allocations, alloc)
		}
	}
	sort.Slice(allocations, func(i, j int) bool { return allocations[i].ID < allocations[j].ID })
	return allocations, nil
}

func (s *StubAllocationRepo) Update(ctx context.Context, alloc BudgetAllocation) (bool, error) {
	existing, ok := s.data[alloc.ID]
	if !ok {
		return false, nil
	}
	alloc.UsedAmount = existing.UsedAmount
	alloc.Version = existing.Version
	s.data[alloc.ID] = alloc
	return true, nil
}

func (s *StubAllocationRepo) Delete(ctx context.Context, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

// Put replaces an allocation wholesale, standing in for the ledger in tests.
func (s *StubAllocationRepo) Put(alloc BudgetAllocation) {
	s.data[alloc.ID] = alloc
	if alloc.ID > s.nextId {
		s.nextId = alloc.ID
	}
}
