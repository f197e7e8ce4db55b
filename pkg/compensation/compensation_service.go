package compensation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/curaflow/curaflow/internal/event_bus"
	"github.com/curaflow/curaflow/pkg/expense"
	"github.com/curaflow/curaflow/pkg/shift"
	"github.com/curaflow/curaflow/pkg/staff"
	"github.com/curaflow/curaflow/pkg/timelog"
)

// SubmitResult carries the submitted compensation and any budget warnings
// raised by the per-charge ledger debits.
type SubmitResult struct {
	Compensation Compensation
	Warnings     []expense.ExceededWarning
}

type CompensationService interface {
	// Calculate aggregates the staff member's time logs over the period
	// without persisting anything. Logs that cannot be costed are isolated
	// into Breakdown.UnbillableLogs; all other totals are unaffected.
	Calculate(ctx context.Context, staffID int, periodStart, periodEnd time.Time) (Breakdown, error)
	Create(ctx context.Context, staffID int, periodStart, periodEnd time.Time) (Compensation, error)
	Get(ctx context.Context, uid string) (Compensation, error)
	GetByStaff(ctx context.Context, staffID int) ([]Compensation, error)
	GetAll(ctx context.Context) ([]Compensation, error)
	Submit(ctx context.Context, uid string, charges []Charge) (SubmitResult, error)
	Approve(ctx context.Context, uid string) (Compensation, error)
	MarkPaid(ctx context.Context, uid string) (Compensation, error)
	// Delete removes the compensation from any state, reversing every
	// non-void expense it charged.
	Delete(ctx context.Context, uid string) error
}

type CompensationServiceImpl struct {
	repo        CompensationRepo
	staffRepo   staff.StaffRepo
	timeLogRepo timelog.TimeLogRepo
	coster      *timelog.Coster
	ledger      expense.Ledger
	bus         *event_bus.EventBus
}

func NewCompensationService(
	repo CompensationRepo,
	staffRepo staff.StaffRepo,
	timeLogRepo timelog.TimeLogRepo,
	coster *timelog.Coster,
	ledger expense.Ledger,
	bus *event_bus.EventBus,
) *CompensationServiceImpl {
	return &CompensationServiceImpl{
		repo:        repo,
		staffRepo:   staffRepo,
		timeLogRepo: timeLogRepo,
		coster:      coster,
		ledger:      ledger,
		bus:         bus,
	}
}

func (s *CompensationServiceImpl) Calculate(ctx context.Context, staffID int, periodStart, periodEnd time.Time) (Breakdown, error) {
	staffMember, err := s.staffRepo.Get(ctx, staffID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("invalid staff member %d: %w", staffID, err)
	}
	timeLogs, err := s.timeLogRepo.GetByStaff(ctx, staffID, periodStart, periodEnd)
	if err != nil {
		return Breakdown{}, err
	}

	var breakdown Breakdown
	for _, entry := range timeLogs {
		costing, err := s.coster.Cost(ctx, staffMember, entry.AllocationID, entry.StartTime, entry.EndTime, entry.Kilometers)
		if err != nil {
			// one uncostable log never corrupts the totals of the rest
			breakdown.UnbillableLogs = append(breakdown.UnbillableLogs, UnbillableLog{
				TimeLogID: entry.ID,
				Reason:    err.Error(),
			})
			continue
		}

		for _, segment := range costing.Segments {
			amount := segment.Hours.Mul(shift.BucketRate(segment.Bucket, costing.Rates, s.coster.OvertimeMultiplier()))
			line := breakdown.bucketLine(segment.Bucket)
			line.Hours = line.Hours.Add(segment.Hours)
			line.Amount = line.Amount.Add(amount)
		}
		breakdown.Kilometers = breakdown.Kilometers.Add(entry.Kilometers)
		breakdown.MileageAmount = breakdown.MileageAmount.Add(costing.MileageCost)
		breakdown.BillableLogs++
	}

	breakdown.TotalCompensation = breakdown.Regular.Amount.
		Add(breakdown.Weekend.Amount).
		Add(breakdown.Holiday.Amount).
		Add(breakdown.Overtime.Amount).
		Add(breakdown.MileageAmount)
	return breakdown, nil
}

func (b *Breakdown) bucketLine(bucket shift.Bucket) *BucketLine {
	switch bucket {
	case shift.BucketWeekend:
		return &b.Weekend
	case shift.BucketHoliday:
		return &b.Holiday
	case shift.BucketOvertime:
		return &b.Overtime
	default:
		return &b.Regular
	}
}

func (s *CompensationServiceImpl) Create(ctx context.Context, staffID int, periodStart, periodEnd time.Time) (Compensation, error) {
	if periodEnd.Before(periodStart) {
		return Compensation{}, fmt.Errorf("period end is before period start")
	}
	overlap, err := s.repo.HasOverlap(ctx, staffID, periodStart, periodEnd)
	if err != nil {
		return Compensation{}, err
	}
	if overlap {
		return Compensation{}, ErrPeriodOverlap
	}

	breakdown, err := s.Calculate(ctx, staffID, periodStart, periodEnd)
	if err != nil {
		return Compensation{}, err
	}

	comp := Compensation{
		UID:         uuid.NewString(),
		StaffID:     staffID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      StatusDraft,
		Breakdown:   breakdown,
	}
	id, err := s.repo.Store(ctx, comp)
	if err != nil {
		return Compensation{}, err
	}
	comp.ID = id
	return comp, nil
}

func (s *CompensationServiceImpl) Get(ctx context.Context, uid string) (Compensation, error) {
	return s.repo.Get(ctx, uid)
}

func (s *CompensationServiceImpl) GetByStaff(ctx context.Context, staffID int) ([]Compensation, error) {
	return s.repo.GetByStaff(ctx, staffID)
}

func (s *CompensationServiceImpl) GetAll(ctx context.Context) ([]Compensation, error) {
	return s.repo.GetAll(ctx)
}

// Submit reconciles the charges against the compensation total, debits the
// ledger once per charge, and moves the compensation to pending approval.
// The charges must sum to the total exactly; nothing is debited otherwise.
func (s *CompensationServiceImpl) Submit(ctx context.Context, uid string, charges []Charge) (SubmitResult, error) {
	comp, err := s.repo.Get(ctx, uid)
	if err != nil {
		return SubmitResult{}, err
	}
	if !comp.Status.CanTransitionTo(StatusPendingApproval) {
		return SubmitResult{}, &InvalidTransitionError{From: comp.Status, To: StatusPendingApproval}
	}

	charged := decimal.Zero
	for _, charge := range charges {
		if !charge.Amount.IsPositive() {
			return SubmitResult{}, fmt.Errorf("charge amounts must be positive, got %s", charge.Amount)
		}
		charged = charged.Add(charge.Amount)
	}
	if !charged.Equal(comp.Breakdown.TotalCompensation) {
		return SubmitResult{}, &ChargeMismatchError{
			Expected:   comp.Breakdown.TotalCompensation,
			Charged:    charged,
			Difference: charged.Sub(comp.Breakdown.TotalCompensation),
		}
	}

	var warnings []expense.ExceededWarning
	for i := range charges {
		result, err := s.ledger.Debit(ctx, expense.DebitRequest{
			AllocationID:    charges[i].AllocationID,
			Amount:          charges[i].Amount,
			Description:     fmt.Sprintf("Compensation %s - %s", comp.PeriodStart.Format("2006-01-02"), comp.PeriodEnd.Format("2006-01-02")),
			ExpenseDate:     comp.PeriodEnd,
			CompensationUID: &comp.UID,
		})
		if err != nil {
			// roll back the debits already made so the books stay consistent
			if revErr := s.reverseCharged(ctx, comp.UID); revErr != nil {
				log.Errorf("could not unwind charges for compensation %s: %v", comp.UID, revErr)
			}
			return SubmitResult{}, fmt.Errorf("could not debit charge against allocation: %w", err)
		}
		charges[i].ExpenseUID = &result.Expense.UID
		if result.Warning != nil {
			warnings = append(warnings, *result.Warning)
		}
	}

	if err := s.repo.StoreCharges(ctx, uid, charges, StatusPendingApproval); err != nil {
		if revErr := s.reverseCharged(ctx, comp.UID); revErr != nil {
			log.Errorf("could not unwind charges for compensation %s: %v", comp.UID, revErr)
		}
		return SubmitResult{}, err
	}

	s.publishStatusChange(ctx, comp, comp.Status, StatusPendingApproval)
	comp.Status = StatusPendingApproval
	comp.Charges = charges
	return SubmitResult{Compensation: comp, Warnings: warnings}, nil
}

func (s *CompensationServiceImpl) Approve(ctx context.Context, uid string) (Compensation, error) {
	return s.transition(ctx, uid, StatusApproved)
}

func (s *CompensationServiceImpl) MarkPaid(ctx context.Context, uid string) (Compensation, error) {
	return s.transition(ctx, uid, StatusPaid)
}

func (s *CompensationServiceImpl) transition(ctx context.Context, uid string, to Status) (Compensation, error) {
	comp, err := s.repo.Get(ctx, uid)
	if err != nil {
		return Compensation{}, err
	}
	if !comp.Status.CanTransitionTo(to) {
		return Compensation{}, &InvalidTransitionError{From: comp.Status, To: to}
	}
	if _, err := s.repo.UpdateStatus(ctx, uid, to); err != nil {
		return Compensation{}, err
	}
	s.publishStatusChange(ctx, comp, comp.Status, to)
	comp.Status = to
	return comp, nil
}

func (s *CompensationServiceImpl) Delete(ctx context.Context, uid string) error {
	comp, err := s.repo.Get(ctx, uid)
	if err != nil {
		return err
	}

	// The record must not disappear while its charges are still debited.
	if err := s.reverseCharged(ctx, comp.UID); err != nil {
		return fmt.Errorf("compensation %s not deleted: %w", uid, err)
	}

	if _, err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	s.publishStatusChange(ctx, comp, comp.Status, "deleted")
	return nil
}

// reverseCharged reverses every non-void expense linked to the
// compensation. Used both for deletion and to unwind a failed submit.
// Stops at the first failure; already-voided expenses stay voided, so a
// retry picks up where it left off.
func (s *CompensationServiceImpl) reverseCharged(ctx context.Context, uid string) error {
	expenses, err := s.ledger.GetByCompensation(ctx, uid)
	if err != nil {
		return fmt.Errorf("could not load expenses for compensation %s: %w", uid, err)
	}
	for _, exp := range expenses {
		if exp.Voided {
			continue
		}
		if _, err := s.ledger.Reverse(ctx, exp.UID); err != nil {
			return fmt.Errorf("could not reverse expense %s for compensation %s: %w", exp.UID, uid, err)
		}
	}
	return nil
}

func (s *CompensationServiceImpl) publishStatusChange(ctx context.Context, comp Compensation, from, to Status) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.TypeCompensationStatusChanged, event_bus.CompensationStatusChanged{
		CompensationUID: comp.UID,
		StaffID:         comp.StaffID,
		From:            string(from),
		To:              string(to),
		Total:           comp.Breakdown.TotalCompensation,
	}))
	if err != nil {
		log.Warnf("event %s handler failed: %v", event_bus.TypeCompensationStatusChanged, err)
	}
}
