package staff

import (
	"context"
	"sort"
)

type StubStaffRepo struct {
	nextId int
	data   map[int]Staff
}

func NewStubStaffRepo() *StubStaffRepo {
	return &StubStaffRepo{data: map[int]Staff{}}
}

func (s *StubStaffRepo) Store(ctx context.Context, staff Staff) (int, error) {
	s.nextId++
	staff.ID = s.nextId
	s.data[staff.ID] = staff
	return staff.ID, nil
}

func (s *StubStaffRepo) Get(ctx context.Context, id int) (Staff, error) {
	staff, ok := s.data[id]
	if !ok {
		return Staff{}, ErrStaffNotFound
	}
	return staff, nil
}

func (s *StubStaffRepo) GetAll(ctx context.Context, includeInactive bool) ([]Staff, error) {
	members := make([]Staff, 0, len(s.data))
	for _, staff := range s.data {
		if staff.Status != StaffStatusInactive || includeInactive {
			members = append(members, staff)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (s *StubStaffRepo) Update(ctx context.Context, staff Staff) (bool, error) {
	existing, ok := s.data[staff.ID]
	if !ok {
		return false, nil
	}
	staff.Status = existing.Status
	s.data[staff.ID] = staff
	return true, nil
}

func (s *StubStaffRepo) UpdateStatus(ctx context.Context, id int, status StaffStatus) (bool, error) {
	staff, ok := s.data[id]
	if !ok {
		return false, nil
	}
	staff.Status = status
	s.data[id] = staff
	return true, nil
}
