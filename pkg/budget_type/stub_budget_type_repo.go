package budget_type

import (
	"context"
	"sort"
)

type StubBudgetTypeRepo struct {
	nextId int
	data   map[int]BudgetType
}

func NewStubBudgetTypeRepo() *StubBudgetTypeRepo {
	return &StubBudgetTypeRepo{data: map[int]BudgetType{}}
}

func (s *StubBudgetTypeRepo) Store(ctx context.Context, budgetType BudgetType) (int, error) {
	s.nextId++
	budgetType.ID = s.nextId
	s.data[budgetType.ID] = budgetType
	return budgetType.ID, nil
}

func (s *StubBudgetTypeRepo) GetAll(ctx context.Context) ([]BudgetType, error) {
	budgetTypes := make([]BudgetType, 0, len(s.data))
	for _, budgetType := range s.data {
		budgetTypes = append(budgetTypes, budgetType)
	}
	sort.Slice(budgetTypes, func(i, j int) bool { return budgetTypes[i].Name < budgetTypes[j].Name })
	return budgetTypes, nil
}

func (s *StubBudgetTypeRepo) Get(ctx context.Context, id int) (BudgetType, error) {
	budgetType, ok := s.data[id]
	if !ok {
		return BudgetType{}, ErrBudgetTypeNotFound
	}
	return budgetType, nil
}

func (s *StubBudgetTypeRepo) Update(ctx context.Context, budgetType BudgetType) (bool, error) {
	if _, ok := s.data[budgetType.ID]; !ok {
		return false, nil
	}
	s.data[budgetType.ID] = budgetType
	return true, nil
}

func (s *StubBudgetTypeRepo) Delete(ctx context.Context, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}
