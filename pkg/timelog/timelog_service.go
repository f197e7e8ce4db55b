package timelog

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/curaflow/curaflow/internal/utils"
	"github.com/curaflow/curaflow/pkg/allocation"
	"github.com/curaflow/curaflow/pkg/client"
	"github.com/curaflow/curaflow/pkg/expense"
	"github.com/curaflow/curaflow/pkg/staff"
)

// CreateResult carries the stored time log and the budget warning from its
// ledger debit, if any.
type CreateResult struct {
	TimeLog TimeLog
	Warning *expense.ExceededWarning
}

type TimeLogService interface {
	Create(ctx context.Context, timeLog TimeLog) (CreateResult, error)
	Get(ctx context.Context, id int) (TimeLog, error)
	GetByStaff(ctx context.Context, staffID int, from, to time.Time) ([]TimeLog, error)
	GetByClient(ctx context.Context, clientID int, from, to time.Time) ([]TimeLog, error)
	// Delete reverses the log's ledger debit before removing the record.
	Delete(ctx context.Context, id int) (bool, error)
}

type TimeLogServiceImpl struct {
	repo           TimeLogRepo
	clientRepo     client.ClientRepo
	staffRepo      staff.StaffRepo
	allocationRepo allocation.AllocationRepo
	coster         *Coster
	ledger         expense.Ledger
	clock          utils.Clock
}

func NewTimeLogService(
	repo TimeLogRepo,
	clientRepo client.ClientRepo,
	staffRepo staff.StaffRepo,
	allocationRepo allocation.AllocationRepo,
	coster *Coster,
	ledger expense.Ledger,
	clock utils.Clock,
) *TimeLogServiceImpl {
	return &TimeLogServiceImpl{
		repo:           repo,
		clientRepo:     clientRepo,
		staffRepo:      staffRepo,
		allocationRepo: allocationRepo,
		coster:         coster,
		ledger:         ledger,
		clock:          clock,
	}
}

// Create classifies and prices the shift, stores the log, and debits the
// selected allocation. The caller's hours, rate, and cost fields are
// ignored; everything monetary is computed here.
func (s *TimeLogServiceImpl) Create(ctx context.Context, timeLog TimeLog) (CreateResult, error) {
	// only worked shifts are billable
	if timeLog.StartTime.After(s.clock.Now()) {
		return CreateResult{}, fmt.Errorf("shift starting %s has not happened yet", timeLog.StartTime.Format(time.RFC3339))
	}
	if _, err := s.clientRepo.Get(ctx, timeLog.ClientID); err != nil {
		return CreateResult{}, fmt.Errorf("invalid client %d: %w", timeLog.ClientID, err)
	}
	staffMember, err := s.staffRepo.Get(ctx, timeLog.StaffID)
	if err != nil {
		return CreateResult{}, fmt.Errorf("invalid staff member %d: %w", timeLog.StaffID, err)
	}

	serviceDate := dateOf(timeLog.StartTime)
	if timeLog.AllocationID != nil {
		alloc, err := s.allocationRepo.Get(ctx, *timeLog.AllocationID)
		if err != nil {
			return CreateResult{}, fmt.Errorf("invalid allocation %d: %w", *timeLog.AllocationID, err)
		}
		if alloc.ClientID != timeLog.ClientID {
			return CreateResult{}, fmt.Errorf("allocation %d does not belong to client %d", alloc.ID, timeLog.ClientID)
		}
		if !alloc.IsActiveBetween(serviceDate, serviceDate) {
			return CreateResult{}, fmt.Errorf("allocation %d is not active on %s", alloc.ID, serviceDate.Format("2006-01-02"))
		}
	}

	costing, err := s.coster.Cost(ctx, staffMember, timeLog.AllocationID, timeLog.StartTime, timeLog.EndTime, timeLog.Kilometers)
	if err != nil {
		return CreateResult{}, err
	}

	timeLog.ServiceDate = serviceDate
	timeLog.Hours = costing.Hours
	timeLog.HourlyRate = costing.EffectiveHourlyRate()
	timeLog.TotalCost = costing.TotalCost

	id, err := s.repo.Store(ctx, timeLog)
	if err != nil {
		return CreateResult{}, err
	}
	timeLog.ID = id

	description := timeLog.Description
	if description == "" {
		description = fmt.Sprintf("Shift on %s by %s %s",
			serviceDate.Format("2006-01-02"), staffMember.FirstName, staffMember.LastName)
	}
	debit, err := s.ledger.Debit(ctx, expense.DebitRequest{
		AllocationID: timeLog.AllocationID,
		Amount:       timeLog.TotalCost,
		Description:  description,
		ExpenseDate:  serviceDate,
		TimeLogID:    &timeLog.ID,
	})
	if err != nil {
		// undo the stored log so no shift sits in the books uncharged
		if _, deleteErr := s.repo.Delete(ctx, timeLog.ID); deleteErr != nil {
			log.Errorf("could not roll back time log %d after failed debit: %v", timeLog.ID, deleteErr)
			return CreateResult{}, fmt.Errorf("could not charge time log: %w (rollback of stored log %d also failed: %v)", err, timeLog.ID, deleteErr)
		}
		return CreateResult{}, fmt.Errorf("could not charge time log: %w", err)
	}
	if err := s.repo.SetExpenseUID(ctx, timeLog.ID, debit.Expense.UID); err != nil {
		return CreateResult{}, err
	}
	timeLog.ExpenseUID = &debit.Expense.UID

	return CreateResult{TimeLog: timeLog, Warning: debit.Warning}, nil
}

func (s *TimeLogServiceImpl) Get(ctx context.Context, id int) (TimeLog, error) {
	return s.repo.Get(ctx, id)
}

func (s *TimeLogServiceImpl) GetByStaff(ctx context.Context, staffID int, from, to time.Time) ([]TimeLog, error) {
	return s.repo.GetByStaff(ctx, staffID, from, to)
}

func (s *TimeLogServiceImpl) GetByClient(ctx context.Context, clientID int, from, to time.Time) ([]TimeLog, error) {
	return s.repo.GetByClient(ctx, clientID, from, to)
}

func (s *TimeLogServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	timeLog, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if timeLog.ExpenseUID != nil {
		if _, err := s.ledger.Reverse(ctx, *timeLog.ExpenseUID); err != nil {
			return false, fmt.Errorf("could not reverse expense for time log %d: %w", id, err)
		}
	}
	return s.repo.Delete(ctx, id)
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
