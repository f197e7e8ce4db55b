package timelog

import (
	"context"
	"errors"
	"sort"
	"time"
)

type StubTimeLogRepo struct {
	nextId int
	data   map[int]TimeLog
	// FailDeletes makes the next N deletes fail, for exercising
	// rollback error paths.
	FailDeletes int
}

func NewStubTimeLogRepo() *StubTimeLogRepo {
	return &StubTimeLogRepo{data: map[int]TimeLog{}}
}

func (s *StubTimeLogRepo) Store(ctx context.Context, timeLog TimeLog) (int, error) {
	s.nextId++
	timeLog.ID = s.nextId
	s.data[timeLog.ID] = timeLog
	return timeLog.ID, nil
}

func (s *StubTimeLogRepo) Get(ctx context.Context, id int) (TimeLog, error) {
	timeLog, ok := s.data[id]
	if !ok {
		return TimeLog{}, ErrTimeLogNotFound
	}
	return timeLog, nil
}

func (s *StubTimeLogRepo) GetByStaff(ctx context.Context, staffID int, from, to time.Time) ([]TimeLog, error) {
	timeLogs := make([]TimeLog, 0)
	for _, timeLog := range s.data {
		if timeLog.StaffID == staffID && inRange(timeLog.ServiceDate, from, to) {
			timeLogs = append(timeLogs, timeLog)
		}
	}
	sortByServiceDate(timeLogs)
	return timeLogs, nil
}

func (s *StubTimeLogRepo) GetByClient(ctx context.Context, clientID int, from, to time.Time) ([]TimeLog, error) {
	timeLogs := make([]TimeLog, 0)
	for _, timeLog := range s.data {
		if timeLog.ClientID == clientID && inRange(timeLog.ServiceDate, from, to) {
			timeLogs = append(timeLogs, timeLog)
		}
	}
	sortByServiceDate(timeLogs)
	return timeLogs, nil
}

func (s *StubTimeLogRepo) SetExpenseUID(ctx context.Context, id int, expenseUID string) error {
	timeLog, ok := s.data[id]
	if !ok {
		return ErrTimeLogNotFound
	}
	timeLog.ExpenseUID = &expenseUID
	s.data[id] = timeLog
	return nil
}

func (s *StubTimeLogRepo) Delete(ctx context.Context, id int) (bool, error) {
	if s.FailDeletes > 0 {
		s.FailDeletes--
		return false, errors.New("delete failed")
	}
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func inRange(date, from, to time.Time) bool {
	return !date.Before(from) && !date.After(to)
}

func sortByServiceDate(timeLogs []TimeLog) {
	sort.Slice(timeLogs, func(i, j int) bool {
		if timeLogs[i].ServiceDate.Equal(timeLogs[j].ServiceDate) {
			return timeLogs[i].ID < timeLogs[j].ID
		}
		return timeLogs[i].ServiceDate.Before(timeLogs[j].ServiceDate)
	})
}
