package staff

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type StaffService interface {
	Get(ctx context.Context, id int) (Staff, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Staff, error)
	Create(ctx context.Context, staff Staff) (Staff, error)
	Update(ctx context.Context, staff Staff) (bool, error)
	SetStatus(ctx context.Context, id int, status StaffStatus) (bool, error)
}

type StaffServiceImpl struct {
	repo StaffRepo
}

func NewStaffService(repo StaffRepo) *StaffServiceImpl {
	return &StaffServiceImpl{repo: repo}
}

func (s *StaffServiceImpl) Get(ctx context.Context, id int) (Staff, error) {
	return s.repo.Get(ctx, id)
}

func (s *StaffServiceImpl) GetAll(ctx context.Context, includeInactive bool) ([]Staff, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

func (s *StaffServiceImpl) Create(ctx context.Context, staff Staff) (Staff, error) {
	if staff.LastName == "" {
		return Staff{}, fmt.Errorf("staff last name is required")
	}
	if staff.Status == "" {
		staff.Status = StaffStatusActive
	}

	id, err := s.repo.Store(ctx, staff)
	if err != nil {
		return Staff{}, err
	}
	staff.ID = id
	return staff, nil
}

func (s *StaffServiceImpl) Update(ctx context.Context, staff Staff) (bool, error) {
	updated, err := s.repo.Update(ctx, staff)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("staff member not updated, probably because it does not exist (%d)", staff.ID)
		return false, fmt.Errorf("staff member not updated")
	}
	return true, nil
}

func (s *StaffServiceImpl) SetStatus(ctx context.Context, id int, status StaffStatus) (bool, error) {
	if status != StaffStatusActive && status != StaffStatusInactive {
		return false, fmt.Errorf("invalid staff status: %s", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
