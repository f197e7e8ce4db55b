package holiday

import (
	"context"
	"sort"
	"time"
)

type StubHolidayRepo struct {
	nextId int
	data   map[int]Holiday
}

func NewStubHolidayRepo(dates ...time.Time) *StubHolidayRepo {
	repo := &StubHolidayRepo{data: map[int]Holiday{}}
	for _, date := range dates {
		repo.Store(context.Background(), Holiday{Date: date})
	}
	return repo
}

func (s *StubHolidayRepo) Store(ctx context.Context, holiday Holiday) (int, error) {
	s.nextId++
	holiday.ID = s.nextId
	holiday.Date = DateOnly(holiday.Date)
	s.data[holiday.ID] = holiday
	return holiday.ID, nil
}

func (s *StubHolidayRepo) StoreAll(ctx context.Context, holidays []Holiday) (int, error) {
	inserted := 0
	for _, holiday := range holidays {
		exists, _ := s.Exists(ctx, holiday.Date)
		if exists {
			continue
		}
		if _, err := s.Store(ctx, holiday); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (s *StubHolidayRepo) GetRange(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	from, to = DateOnly(from), DateOnly(to)
	var holidays []Holiday
	for _, holiday := range s.data {
		if !holiday.Date.Before(from) && !holiday.Date.After(to) {
			holidays = append(holidays, holiday)
		}
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}

func (s *StubHolidayRepo) Exists(ctx context.Context, date time.Time) (bool, error) {
	date = DateOnly(date)
	for _, holiday := range s.data {
		if holiday.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *StubHolidayRepo) Delete(ctx context.Context, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}
