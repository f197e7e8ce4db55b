package app

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/curaflow/curaflow/internal/config"
	"github.com/curaflow/curaflow/internal/event_bus"
	"github.com/curaflow/curaflow/internal/utils"
	"github.com/curaflow/curaflow/pkg/allocation"
	"github.com/curaflow/curaflow/pkg/budget_type"
	"github.com/curaflow/curaflow/pkg/client"
	"github.com/curaflow/curaflow/pkg/compensation"
	"github.com/curaflow/curaflow/pkg/expense"
	"github.com/curaflow/curaflow/pkg/google"
	"github.com/curaflow/curaflow/pkg/holiday"
	"github.com/curaflow/curaflow/pkg/rate"
	"github.com/curaflow/curaflow/pkg/shift"
	"github.com/curaflow/curaflow/pkg/staff"
	"github.com/curaflow/curaflow/pkg/timelog"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	ClientRepo    client.ClientRepo
	ClientService client.ClientService
	ClientHandler *client.ClientHandler

	StaffRepo    staff.StaffRepo
	StaffService staff.StaffService
	StaffHandler *staff.StaffHandler

	BudgetTypeRepo    budget_type.BudgetTypeRepo
	BudgetTypeService budget_type.BudgetTypeService
	BudgetTypeHandler *budget_type.BudgetTypeHandler

	HolidayRepo     holiday.HolidayRepo
	HolidayService  holiday.HolidayService
	HolidayHandler  *holiday.HolidayHandler
	HolidayImporter *google.HolidayImporter
	GoogleHandler   *google.Handler

	AllocationRepo    allocation.AllocationRepo
	AllocationService allocation.AllocationService
	AllocationHandler *allocation.AllocationHandler

	ExpenseRepo    expense.ExpenseRepo
	Ledger         expense.Ledger
	ExpenseHandler *expense.ExpenseHandler

	RateResolver *rate.Resolver
	Classifier   *shift.Classifier
	Coster       *timelog.Coster

	TimeLogRepo    timelog.TimeLogRepo
	TimeLogService timelog.TimeLogService
	TimeLogHandler *timelog.TimeLogHandler

	CompensationRepo    compensation.CompensationRepo
	CompensationService compensation.CompensationService
	CompensationHandler *compensation.CompensationHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	overtimeMultiplier, err := decimal.NewFromString(cfg.Payroll.OvertimeMultiplier)
	if err != nil {
		return nil, fmt.Errorf("invalid overtime multiplier %q: %w", cfg.Payroll.OvertimeMultiplier, err)
	}

	deps := &Dependencies{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.ClientRepo = client.NewClientRepo(db)
	deps.ClientService = client.NewClientService(deps.ClientRepo)
	deps.ClientHandler = client.NewClientHandler(deps.ClientService)

	deps.StaffRepo = staff.NewStaffRepo(db)
	deps.StaffService = staff.NewStaffService(deps.StaffRepo)
	deps.StaffHandler = staff.NewStaffHandler(deps.StaffService)

	deps.BudgetTypeRepo = budget_type.NewBudgetTypeRepo(db)
	deps.BudgetTypeService = budget_type.NewBudgetTypeService(deps.BudgetTypeRepo)
	deps.BudgetTypeHandler = budget_type.NewBudgetTypeHandler(deps.BudgetTypeService)

	deps.HolidayRepo = holiday.NewHolidayRepo(db)
	deps.HolidayService = holiday.NewHolidayService(deps.HolidayRepo)
	deps.HolidayHandler = holiday.NewHolidayHandler(deps.HolidayService)
	deps.HolidayImporter = google.NewHolidayImporter(cfg.Google, deps.HolidayService)
	deps.GoogleHandler = google.NewHandler(deps.HolidayImporter)

	deps.AllocationRepo = allocation.NewAllocationRepo(db)
	deps.AllocationService = allocation.NewAllocationService(deps.AllocationRepo, deps.BudgetTypeRepo)
	deps.AllocationHandler = allocation.NewAllocationHandler(deps.AllocationService)

	deps.ExpenseRepo = expense.NewExpenseRepo(db)
	deps.Ledger = expense.NewLedger(deps.ExpenseRepo, deps.EventBus)
	deps.ExpenseHandler = expense.NewExpenseHandler(deps.Ledger)

	deps.RateResolver = rate.NewResolver()
	deps.Classifier = shift.NewClassifier(deps.HolidayService, cfg.Payroll.DailyThresholdHours)
	deps.Coster = timelog.NewCoster(deps.AllocationRepo, deps.BudgetTypeRepo, deps.Classifier, deps.RateResolver, overtimeMultiplier)

	deps.TimeLogRepo = timelog.NewTimeLogRepo(db)
	deps.TimeLogService = timelog.NewTimeLogService(deps.TimeLogRepo, deps.ClientRepo, deps.StaffRepo, deps.AllocationRepo, deps.Coster, deps.Ledger, deps.Clock)
	deps.TimeLogHandler = timelog.NewTimeLogHandler(deps.TimeLogService)

	deps.CompensationRepo = compensation.NewCompensationRepo(db)
	deps.CompensationService = compensation.NewCompensationService(
		deps.CompensationRepo, deps.StaffRepo, deps.TimeLogRepo, deps.Coster, deps.Ledger, deps.EventBus)
	deps.CompensationHandler = compensation.NewCompensationHandler(
		deps.CompensationService, deps.StaffRepo, compensation.NewCsvCompensationRenderer())

	registerAuditSubscribers(deps.EventBus)

	return deps, nil
}

// registerAuditSubscribers logs every budget-affecting event. Overruns are
// warnings so operators can follow up with the client's case manager.
func registerAuditSubscribers(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.ExpenseRecorded](bus, event_bus.TypeExpenseRecorded,
		func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
			log.Infof("expense %s recorded: %s on %s", e.Data.ExpenseUID, e.Data.Amount, e.Data.ExpenseDate.Format("2006-01-02"))
			return nil
		})
	event_bus.SubscribeTyped[event_bus.AllocationExceeded](bus, event_bus.TypeAllocationExceeded,
		func(e event_bus.EventT[event_bus.AllocationExceeded]) error {
			log.Warnf("allocation %d (client %d) over budget: %s used of %s allocated",
				e.Data.AllocationID, e.Data.ClientID, e.Data.Used, e.Data.Allocated)
			return nil
		})
	event_bus.SubscribeTyped[event_bus.CompensationStatusChanged](bus, event_bus.TypeCompensationStatusChanged,
		func(e event_bus.EventT[event_bus.CompensationStatusChanged]) error {
			log.Infof("compensation %s for staff %d: %s -> %s (total %s)",
				e.Data.CompensationUID, e.Data.StaffID, e.Data.From, e.Data.To, e.Data.Total)
			return nil
		})
}
