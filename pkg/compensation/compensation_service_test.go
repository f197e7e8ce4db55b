package compensation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/curaflow/curaflow/internal/event_bus"
	"github.com/curaflow/curaflow/pkg/allocation"
	"github.com/curaflow/curaflow/pkg/budget_type"
	"github.com/curaflow/curaflow/pkg/expense"
	"github.com/curaflow/curaflow/pkg/holiday"
	"github.com/curaflow/curaflow/pkg/rate"
	"github.com/curaflow/curaflow/pkg/shift"
	"github.com/curaflow/curaflow/pkg/staff"
	"github.com/curaflow/curaflow/pkg/timelog"
)

type testEnv struct {
	service     *CompensationServiceImpl
	repo        *StubCompensationRepo
	staffRepo   *staff.StubStaffRepo
	timeLogs    *timelog.StubTimeLogRepo
	allocations *allocation.StubAllocationRepo
	expenses    *expense.StubExpenseRepo
	bus         *event_bus.EventBus
	staffID     int
}

// newTestEnv seeds one staff member (weekday 10, holiday 20, km 2), one
// budget type, and two allocations (ids 1 and 2).
func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ctx := context.Background()

	staffRepo := staff.NewStubStaffRepo()
	staffID, err := staffRepo.Store(ctx, staff.Staff{
		FirstName:     "Erik",
		LastName:      "Lund",
		WeekdayRate:   decimal.NewNullDecimal(decimal.NewFromInt(10)),
		HolidayRate:   decimal.NewNullDecimal(decimal.NewFromInt(20)),
		KilometerRate: decimal.NewNullDecimal(decimal.NewFromInt(2)),
	})
	assert.NoError(t, err)

	budgetTypes := budget_type.NewStubBudgetTypeRepo()
	_, err = budgetTypes.Store(ctx, budget_type.BudgetType{Name: "Personal Care", Code: "CARE"})
	assert.NoError(t, err)

	allocations := allocation.NewStubAllocationRepo()
	for id := 1; id <= 2; id++ {
		allocations.Put(allocation.BudgetAllocation{
			ID: id, ClientID: 7, BudgetTypeID: 1,
			AllocatedAmount: decimal.NewFromInt(1000),
			StartDate:       date("2025-01-01"), EndDate: date("2025-12-31"),
		})
	}

	holidayService := holiday.NewHolidayService(holiday.NewStubHolidayRepo())
	classifier := shift.NewClassifier(holidayService, 8)
	coster := timelog.NewCoster(allocations, budgetTypes, classifier, rate.NewResolver(), decimal.RequireFromString("1.5"))

	bus := event_bus.NewEventBus()
	expenses := expense.NewStubExpenseRepo(allocations)
	ledger := expense.NewLedger(expenses, bus)
	timeLogs := timelog.NewStubTimeLogRepo()
	repo := NewStubCompensationRepo()

	return testEnv{
		service:     NewCompensationService(repo, staffRepo, timeLogs, coster, ledger, bus),
		repo:        repo,
		staffRepo:   staffRepo,
		timeLogs:    timeLogs,
		allocations: allocations,
		expenses:    expenses,
		bus:         bus,
		staffID:     staffID,
	}
}

func date(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func at(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func (env testEnv) addTimeLog(t *testing.T, allocationID *int, start, end string, kilometers int64) {
	t.Helper()
	startTime := at(start)
	_, err := env.timeLogs.Store(context.Background(), timelog.TimeLog{
		ClientID: 7, StaffID: env.staffID, AllocationID: allocationID,
		StartTime:   startTime,
		EndTime:     at(end),
		ServiceDate: date(startTime.Format("2006-01-02")),
		Kilometers:  decimal.NewFromInt(kilometers),
	})
	assert.NoError(t, err)
}

func TestCalculateAggregatesBuckets(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	allocID := 1

	// Saturday 4h at the holiday rate, Monday 10h with a 2h overtime split
	env.addTimeLog(t, &allocID, "2025-03-08T10:00:00Z", "2025-03-08T14:00:00Z", 0)
	env.addTimeLog(t, &allocID, "2025-03-10T08:00:00Z", "2025-03-10T18:00:00Z", 5)

	breakdown, err := env.service.Calculate(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)

	assert.True(t, decimal.NewFromInt(4).Equal(breakdown.Weekend.Hours))
	assert.True(t, decimal.NewFromInt(80).Equal(breakdown.Weekend.Amount), "weekend amount: %s", breakdown.Weekend.Amount)
	assert.True(t, decimal.NewFromInt(8).Equal(breakdown.Regular.Hours))
	assert.True(t, decimal.NewFromInt(80).Equal(breakdown.Regular.Amount))
	assert.True(t, decimal.NewFromInt(2).Equal(breakdown.Overtime.Hours))
	// overtime at weekday rate times 1.5
	assert.True(t, decimal.NewFromInt(30).Equal(breakdown.Overtime.Amount), "overtime amount: %s", breakdown.Overtime.Amount)
	assert.True(t, breakdown.Holiday.Hours.IsZero())
	assert.True(t, decimal.NewFromInt(10).Equal(breakdown.MileageAmount))
	assert.True(t, decimal.NewFromInt(200).Equal(breakdown.TotalCompensation), "total: %s", breakdown.TotalCompensation)
	assert.Equal(t, 2, breakdown.BillableLogs)
	assert.Empty(t, breakdown.UnbillableLogs)
}

func TestCalculateIsolatesUncostableLogs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	allocID := 1
	missingAllocID := 99

	env.addTimeLog(t, &allocID, "2025-03-10T08:00:00Z", "2025-03-10T12:00:00Z", 0)
	env.addTimeLog(t, &missingAllocID, "2025-03-11T08:00:00Z", "2025-03-11T12:00:00Z", 0)

	breakdown, err := env.service.Calculate(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)

	// the costable log's totals are untouched by the failing one
	assert.True(t, decimal.NewFromInt(40).Equal(breakdown.TotalCompensation), "total: %s", breakdown.TotalCompensation)
	assert.Equal(t, 1, breakdown.BillableLogs)
	assert.Len(t, breakdown.UnbillableLogs, 1)
	assert.Equal(t, 2, breakdown.UnbillableLogs[0].TimeLogID)
	assert.Contains(t, breakdown.UnbillableLogs[0].Reason, "allocation")
}

func TestCreateRefusesOverlappingPeriod(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.service.Create(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)

	_, err = env.service.Create(ctx, env.staffID, date("2025-03-15"), date("2025-04-15"))
	assert.ErrorIs(t, err, ErrPeriodOverlap)

	// adjacent period is fine
	_, err = env.service.Create(ctx, env.staffID, date("2025-04-01"), date("2025-04-30"))
	assert.NoError(t, err)
}

func TestSubmitRefusesMismatchedCharges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	allocID := 1

	env.addTimeLog(t, &allocID, "2025-03-10T08:00:00Z", "2025-03-10T12:00:00Z", 0)
	comp, err := env.service.Create(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(comp.Breakdown.TotalCompensation))

	_, err = env.service.Submit(ctx, comp.UID, []Charge{
		{AllocationID: &allocID, Amount: decimal.NewFromInt(30)},
	})
	var mismatch *ChargeMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.True(t, decimal.NewFromInt(-10).Equal(mismatch.Difference), "difference: %s", mismatch.Difference)

	// nothing was debited
	alloc, err := env.allocations.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, alloc.UsedAmount.IsZero())

	stored, err := env.repo.Get(ctx, comp.UID)
	assert.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status)
}

func TestSubmitDebitsChargesAndTransitions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	allocOne, allocTwo := 1, 2

	env.addTimeLog(t, &allocOne, "2025-03-08T10:00:00Z", "2025-03-08T14:00:00Z", 0)
	env.addTimeLog(t, &allocOne, "2025-03-10T08:00:00Z", "2025-03-10T18:00:00Z", 5)
	comp, err := env.service.Create(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)

	var transitions []event_bus.CompensationStatusChanged
	event_bus.SubscribeTyped[event_bus.CompensationStatusChanged](env.bus, event_bus.TypeCompensationStatusChanged,
		func(e event_bus.EventT[event_bus.CompensationStatusChanged]) error {
			transitions = append(transitions, e.Data)
			return nil
		})

	result, err := env.service.Submit(ctx, comp.UID, []Charge{
		{AllocationID: &allocOne, Amount: decimal.NewFromInt(150)},
		{AllocationID: &allocTwo, Amount: decimal.NewFromInt(50)},
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, result.Compensation.Status)
	assert.Len(t, result.Compensation.Charges, 2)
	assert.NotNil(t, result.Compensation.Charges[0].ExpenseUID)

	first, err := env.allocations.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(first.UsedAmount))
	second, err := env.allocations.Get(ctx, 2)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(second.UsedAmount))

	assert.Len(t, transitions, 1)
	assert.Equal(t, "draft", transitions[0].From)
	assert.Equal(t, "pending_approval", transitions[0].To)

	// a second submit is an invalid transition
	_, err = env.service.Submit(ctx, comp.UID, []Charge{
		{AllocationID: &allocOne, Amount: decimal.NewFromInt(200)},
	})
	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestApproveAndPayFollowTheStateMachine(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	allocID := 1

	env.addTimeLog(t, &allocID, "2025-03-10T08:00:00Z", "2025-03-10T12:00:00Z", 0)
	comp, err := env.service.Create(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)

	// approving a draft skips submission
	_, err = env.service.Approve(ctx, comp.UID)
	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, StatusDraft, transitionErr.From)

	_, err = env.service.Submit(ctx, comp.UID, []Charge{
		{AllocationID: &allocID, Amount: decimal.NewFromInt(40)},
	})
	assert.NoError(t, err)

	approved, err := env.service.Approve(ctx, comp.UID)
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	paid, err := env.service.MarkPaid(ctx, comp.UID)
	assert.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)

	_, err = env.service.MarkPaid(ctx, comp.UID)
	assert.ErrorAs(t, err, &transitionErr)
}

func TestDeleteReversesChargesFromAnyState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	allocOne, allocTwo := 1, 2

	env.addTimeLog(t, &allocOne, "2025-03-08T10:00:00Z", "2025-03-08T14:00:00Z", 0)
	env.addTimeLog(t, &allocOne, "2025-03-10T08:00:00Z", "2025-03-10T18:00:00Z", 5)
	comp, err := env.service.Create(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)

	_, err = env.service.Submit(ctx, comp.UID, []Charge{
		{AllocationID: &allocOne, Amount: decimal.NewFromInt(150)},
		{AllocationID: &allocTwo, Amount: decimal.NewFromInt(50)},
	})
	assert.NoError(t, err)
	_, err = env.service.Approve(ctx, comp.UID)
	assert.NoError(t, err)
	_, err = env.service.MarkPaid(ctx, comp.UID)
	assert.NoError(t, err)

	err = env.service.Delete(ctx, comp.UID)
	assert.NoError(t, err)

	// both allocations re-credited in full
	first, err := env.allocations.Get(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, first.UsedAmount.IsZero(), "allocation 1 used: %s", first.UsedAmount)
	second, err := env.allocations.Get(ctx, 2)
	assert.NoError(t, err)
	assert.True(t, second.UsedAmount.IsZero(), "allocation 2 used: %s", second.UsedAmount)

	_, err = env.service.Get(ctx, comp.UID)
	assert.ErrorIs(t, err, ErrCompensationNotFound)
}

func TestDeleteKeepsRecordWhenReversalFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	allocID := 1

	env.addTimeLog(t, &allocID, "2025-03-10T08:00:00Z", "2025-03-10T12:00:00Z", 0)
	comp, err := env.service.Create(ctx, env.staffID, date("2025-03-01"), date("2025-03-31"))
	assert.NoError(t, err)
	_, err = env.service.Submit(ctx, comp.UID, []Charge{
		{AllocationID: &allocID, Amount: decimal.NewFromInt(40)},
	})
	assert.NoError(t, err)

	env.expenses.FailReversals = 1
	err = env.service.Delete(ctx, comp.UID)
	assert.Error(t, err)

	// the record survives, the allocation stays debited
	kept, err := env.service.Get(ctx, comp.UID)
	assert.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, kept.Status)
	alloc, err := env.allocations.Get(ctx, allocID)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(alloc.UsedAmount), "allocation used: %s", alloc.UsedAmount)

	// a later retry completes the deletion
	err = env.service.Delete(ctx, comp.UID)
	assert.NoError(t, err)
	alloc, err = env.allocations.Get(ctx, allocID)
	assert.NoError(t, err)
	assert.True(t, alloc.UsedAmount.IsZero())
	_, err = env.service.Get(ctx, comp.UID)
	assert.ErrorIs(t, err, ErrCompensationNotFound)
}
