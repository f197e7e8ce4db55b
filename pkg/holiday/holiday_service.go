package holiday

import (
	"context"
	"fmt"
	"time"
)

type HolidayService interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
	GetRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	Import(ctx context.Context, holidays []Holiday) (int, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type HolidayServiceImpl struct {
	repo HolidayRepo
}

func NewHolidayService(repo HolidayRepo) *HolidayServiceImpl {
	return &HolidayServiceImpl{repo: repo}
}

// IsHoliday satisfies the shift classifier's calendar dependency.
func (s *HolidayServiceImpl) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	return s.repo.Exists(ctx, date)
}

func (s *HolidayServiceImpl) GetRange(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	return s.repo.GetRange(ctx, from, to)
}

func (s *HolidayServiceImpl) Create(ctx context.Context, holiday Holiday) (Holiday, error) {
	if holiday.Date.IsZero() {
		return Holiday{}, fmt.Errorf("holiday date is required")
	}
	holiday.Date = DateOnly(holiday.Date)
	id, err := s.repo.Store(ctx, holiday)
	if err != nil {
		return Holiday{}, err
	}
	holiday.ID = id
	return holiday, nil
}

func (s *HolidayServiceImpl) Import(ctx context.Context, holidays []Holiday) (int, error) {
	return s.repo.StoreAll(ctx, holidays)
}

func (s *HolidayServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	return s.repo.Delete(ctx, id)
}
