package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Clients (no hard delete, status change only)
	r.HandleFunc("/api/client", deps.ClientHandler.Create).Methods("POST")
	r.HandleFunc("/api/client", deps.ClientHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/client/{id}", deps.ClientHandler.Get).Methods("GET")
	r.HandleFunc("/api/client/{id}", deps.ClientHandler.Update).Methods("PUT")
	r.HandleFunc("/api/client/{id}/status", deps.ClientHandler.SetStatus).Methods("PUT")

	// Staff
	r.HandleFunc("/api/staff", deps.StaffHandler.Create).Methods("POST")
	r.HandleFunc("/api/staff", deps.StaffHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/staff/{id}", deps.StaffHandler.Get).Methods("GET")
	r.HandleFunc("/api/staff/{id}", deps.StaffHandler.Update).Methods("PUT")
	r.HandleFunc("/api/staff/{id}/status", deps.StaffHandler.SetStatus).Methods("PUT")

	// Budget types
	r.HandleFunc("/api/budget-type", deps.BudgetTypeHandler.Create).Methods("POST")
	r.HandleFunc("/api/budget-type", deps.BudgetTypeHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/budget-type/{id}", deps.BudgetTypeHandler.Get).Methods("GET")
	r.HandleFunc("/api/budget-type/{id}", deps.BudgetTypeHandler.Update).Methods("PUT")
	r.HandleFunc("/api/budget-type/{id}", deps.BudgetTypeHandler.Delete).Methods("DELETE")

	// Budget allocations + matcher
	r.HandleFunc("/api/client/{clientId}/allocation", deps.AllocationHandler.Create).Methods("POST")
	r.HandleFunc("/api/client/{clientId}/allocation", deps.AllocationHandler.GetAllByClient).Methods("GET")
	r.HandleFunc("/api/client/{clientId}/allocation/{id}", deps.AllocationHandler.Update).Methods("PUT")
	r.HandleFunc("/api/client/{clientId}/allocation/{id}", deps.AllocationHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/client/{clientId}/budget", deps.AllocationHandler.Match).Queries("from", "{from}").Methods("GET")

	// Holidays
	r.HandleFunc("/api/holiday", deps.HolidayHandler.GetRange).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/holiday", deps.HolidayHandler.Create).Methods("POST")
	r.HandleFunc("/api/holiday/{id}", deps.HolidayHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/holiday/import", deps.GoogleHandler.ImportHolidays).Queries("year", "{year}").Methods("POST")

	// Time logs
	r.HandleFunc("/api/timelog", deps.TimeLogHandler.Create).Methods("POST")
	r.HandleFunc("/api/timelog", deps.TimeLogHandler.List).Methods("GET")
	r.HandleFunc("/api/timelog/{id}", deps.TimeLogHandler.Delete).Methods("DELETE")

	// Expenses
	r.HandleFunc("/api/expense", deps.ExpenseHandler.Create).Methods("POST")
	r.HandleFunc("/api/expense", deps.ExpenseHandler.GetByAllocation).Queries("allocationId", "{allocationId}").Methods("GET")
	r.HandleFunc("/api/expense/{uid}", deps.ExpenseHandler.Reverse).Methods("DELETE")

	// Compensations
	r.HandleFunc("/api/compensation", deps.CompensationHandler.Create).Methods("POST")
	r.HandleFunc("/api/compensation", deps.CompensationHandler.List).Methods("GET")
	r.HandleFunc("/api/compensation/{uid}", deps.CompensationHandler.Get).Methods("GET")
	r.HandleFunc("/api/compensation/{uid}", deps.CompensationHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/compensation/{uid}/submit", deps.CompensationHandler.Submit).Methods("POST")
	r.HandleFunc("/api/compensation/{uid}/approve", deps.CompensationHandler.Approve).Methods("POST")
	r.HandleFunc("/api/compensation/{uid}/pay", deps.CompensationHandler.MarkPaid).Methods("POST")
	r.HandleFunc("/api/compensation/{uid}/export", deps.CompensationHandler.Export).Methods("GET")
}
