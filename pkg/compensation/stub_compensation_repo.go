package compensation

import (
	"context"
	"sort"
	"time"
)

type StubCompensationRepo struct {
	nextId int
	data   map[string]Compensation
}

func NewStubCompensationRepo() *StubCompensationRepo {
	return &StubCompensationRepo{data: map[string]Compensation{}}
}

func (s *StubCompensationRepo) Store(ctx context.Context, comp Compensation) (int, error) {
	s.nextId++
	comp.ID = s.nextId
	comp.CreatedAt = time.Now()
	s.data[comp.UID] = comp
	return comp.ID, nil
}

func (s *StubCompensationRepo) Get(ctx context.Context, uid string) (Compensation, error) {
	comp, ok := s.data[uid]
	if !ok {
		return Compensation{}, ErrCompensationNotFound
	}
	return comp, nil
}

func (s *StubCompensationRepo) GetByStaff(ctx context.Context, staffID int) ([]Compensation, error) {
	compensations := make([]Compensation, 0)
	for _, comp := range s.data {
		if comp.StaffID == staffID {
			compensations = append(compensations, comp)
		}
	}
	sortByPeriod(compensations)
	return compensations, nil
}

func (s *StubCompensationRepo) GetAll(ctx context.Context) ([]Compensation, error) {
	compensations := make([]Compensation, 0, len(s.data))
	for _, comp := range s.data {
		compensations = append(compensations, comp)
	}
	sortByPeriod(compensations)
	return compensations, nil
}

func (s *StubCompensationRepo) HasOverlap(ctx context.Context, staffID int, periodStart, periodEnd time.Time) (bool, error) {
	for _, comp := range s.data {
		if comp.StaffID != staffID {
			continue
		}
		if !comp.PeriodStart.After(periodEnd) && !comp.PeriodEnd.Before(periodStart) {
			return true, nil
		}
	}
	return false, nil
}

func (s *StubCompensationRepo) UpdateStatus(ctx context.Context, uid string, status Status) (bool, error) {
	comp, ok := s.data[uid]
	if !ok {
		return false, nil
	}
	comp.Status = status
	s.data[uid] = comp
	return true, nil
}

func (s *StubCompensationRepo) StoreCharges(ctx context.Context, uid string, charges []Charge, status Status) error {
	comp, ok := s.data[uid]
	if !ok {
		return ErrCompensationNotFound
	}
	comp.Charges = charges
	comp.Status = status
	s.data[uid] = comp
	return nil
}

func (s *StubCompensationRepo) Delete(ctx context.Context, uid string) (bool, error) {
	if _, ok := s.data[uid]; !ok {
		return false, nil
	}
	delete(s.data, uid)
	return true, nil
}

func sortByPeriod(compensations []Compensation) {
	sort.Slice(compensations, func(i, j int) bool {
		if compensations[i].PeriodStart.Equal(compensations[j].PeriodStart) {
			return compensations[i].StaffID < compensations[j].StaffID
		}
		return compensations[i].PeriodStart.After(compensations[j].PeriodStart)
	})
}
