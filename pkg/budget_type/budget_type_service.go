package budget_type

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type BudgetTypeService interface {
	GetAll(ctx context.Context) ([]BudgetType, error)
	Get(ctx context.Context, id int) (BudgetType, error)
	Create(ctx context.Context, budgetType BudgetType) (BudgetType, error)
	Update(ctx context.Context, budgetType BudgetType) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type BudgetTypeServiceImpl struct {
	repo BudgetTypeRepo
}

func NewBudgetTypeService(repo BudgetTypeRepo) *BudgetTypeServiceImpl {
	return &BudgetTypeServiceImpl{repo: repo}
}

func (s *BudgetTypeServiceImpl) GetAll(ctx context.Context) ([]BudgetType, error) {
	return s.repo.GetAll(ctx)
}

func (s *BudgetTypeServiceImpl) Get(ctx context.Context, id int) (BudgetType, error) {
	return s.repo.Get(ctx, id)
}

func (s *BudgetTypeServiceImpl) Create(ctx context.Context, budgetType BudgetType) (BudgetType, error) {
	if budgetType.Name == "" {
		return BudgetType{}, fmt.Errorf("budget type name is required")
	}
	id, err := s.repo.Store(ctx, budgetType)
	if err != nil {
		return BudgetType{}, err
	}
	budgetType.ID = id
	return budgetType, nil
}

func (s *BudgetTypeServiceImpl) Update(ctx context.Context, budgetType BudgetType) (bool, error) {
	updated, err := s.repo.Update(ctx, budgetType)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("budget type not updated, probably because it does not exist (%d)", budgetType.ID)
		return false, fmt.Errorf("budget type not updated")
	}
	return true, nil
}

func (s *BudgetTypeServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	return s.repo.Delete(ctx, id)
}
