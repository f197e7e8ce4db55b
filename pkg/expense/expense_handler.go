package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ExpenseDTO struct {
	UID             string          `json:"uid"`
	AllocationID    *int            `json:"allocationId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	ExpenseDate     string          `json:"expenseDate"`
	TimeLogID       *int            `json:"timeLogId,omitempty"`
	CompensationUID *string         `json:"compensationUid,omitempty"`
	Voided          bool            `json:"voided"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type ExceededWarningDTO struct {
	AllocationID int             `json:"allocationId"`
	Allocated    decimal.Decimal `json:"allocated"`
	Used         decimal.Decimal `json:"used"`
	Overrun      decimal.Decimal `json:"overrun"`
}

type DebitResultDTO struct {
	Expense ExpenseDTO          `json:"expense"`
	Warning *ExceededWarningDTO `json:"warning,omitempty"`
}

type ExpenseHandler struct {
	ledger Ledger
}

func NewExpenseHandler(ledger Ledger) *ExpenseHandler {
	return &ExpenseHandler{ledger: ledger}
}

// Create records a manual expense. Expenses produced by time logs and
// compensations go through their own services, not this endpoint.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Recording manual expense")
	w.Header().Set("Content-Type", "application/json")

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expenseDate, err := time.Parse("2006-01-02", dto.ExpenseDate)
	if err != nil {
		http.Error(w, "invalid expense date", http.StatusBadRequest)
		return
	}

	result, err := h.ledger.Debit(r.Context(), DebitRequest{
		AllocationID: dto.AllocationID,
		Amount:       dto.Amount,
		Description:  dto.Description,
		ExpenseDate:  expenseDate,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := DebitResultDTO{Expense: expenseToDTO(result.Expense)}
	if result.Warning != nil {
		response.Warning = &ExceededWarningDTO{
			AllocationID: result.Warning.AllocationID,
			Allocated:    result.Warning.Allocated,
			Used:         result.Warning.Used,
			Overrun:      result.Warning.Overrun,
		}
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *ExpenseHandler) GetByAllocation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	allocationID, err := strconv.Atoi(r.URL.Query().Get("allocationId"))
	if err != nil {
		http.Error(w, "allocationId query parameter is required", http.StatusBadRequest)
		return
	}

	expenses, err := h.ledger.GetByAllocation(r.Context(), allocationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, exp := range expenses {
		dtos = append(dtos, expenseToDTO(exp))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Reverse voids an expense and re-credits its allocation. The expense record
// itself stays in the ledger.
func (h *ExpenseHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	_, err := h.ledger.Reverse(r.Context(), uid)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrExpenseVoided):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func expenseToDTO(exp BudgetExpense) ExpenseDTO {
	return ExpenseDTO{
		UID:             exp.UID,
		AllocationID:    exp.AllocationID,
		Amount:          exp.Amount,
		Description:     exp.Description,
		ExpenseDate:     exp.ExpenseDate.Format("2006-01-02"),
		TimeLogID:       exp.TimeLogID,
		CompensationUID: exp.CompensationUID,
		Voided:          exp.Voided,
		CreatedAt:       exp.CreatedAt,
	}
}
