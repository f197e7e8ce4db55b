package allocation

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

type AllocationDTO struct {
	ID              int                 `json:"id"`
	ClientID        int                 `json:"clientId"`
	BudgetTypeID    int                 `json:"budgetTypeId"`
	AllocatedAmount decimal.Decimal     `json:"allocatedAmount"`
	UsedAmount      decimal.Decimal     `json:"usedAmount"`
	StartDate       string              `json:"startDate"`
	EndDate         string              `json:"endDate"`
	WeekdayRate     decimal.NullDecimal `json:"weekdayRate,omitempty"`
	HolidayRate     decimal.NullDecimal `json:"holidayRate,omitempty"`
	KilometerRate   decimal.NullDecimal `json:"kilometerRate,omitempty"`
}

type AllocationStatusDTO struct {
	AllocationDTO
	BudgetTypeName string          `json:"budgetTypeName"`
	Available      decimal.Decimal `json:"available"`
	UsedPercentage decimal.Decimal `json:"usedPercentage"`
}

type BudgetTypeSummaryDTO struct {
	BudgetTypeID    int             `json:"budgetTypeId"`
	BudgetTypeName  string          `json:"budgetTypeName"`
	AllocationCount int             `json:"allocationCount"`
	TotalAllocated  decimal.Decimal `json:"totalAllocated"`
	TotalUsed       decimal.Decimal `json:"totalUsed"`
	TotalAvailable  decimal.Decimal `json:"totalAvailable"`
}

type MatchResultDTO struct {
	Allocations []AllocationStatusDTO  `json:"allocations"`
	Summaries   []BudgetTypeSummaryDTO `json:"summaries"`
}

type AllocationHandler struct {
	service AllocationService
}

func NewAllocationHandler(service AllocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

func (h *AllocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new budget allocation")
	w.Header().Set("Content-Type", "application/json")

	clientID, err := strconv.Atoi(mux.Vars(r)["clientId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto AllocationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	alloc, err := dtoToAllocation(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	alloc.ClientID = clientID

	created, err := h.service.Create(r.Context(), alloc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(allocationToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *AllocationHandler) GetAllByClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clientID, err := strconv.Atoi(mux.Vars(r)["clientId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	allocations, err := h.service.GetAllByClient(r.Context(), clientID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]AllocationDTO, 0, len(allocations))
	for _, alloc := range allocations {
		dtos = append(dtos, allocationToDTO(alloc))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Match serves the budget overview used when charging a shift: individual
// allocations for selection plus per-type totals for the summary.
func (h *AllocationHandler) Match(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clientID, err := strconv.Atoi(mux.Vars(r)["clientId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	to := from
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		to, err = time.Parse("2006-01-02", toParam)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.Match(r.Context(), clientID, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := MatchResultDTO{
		Allocations: make([]AllocationStatusDTO, 0, len(result.Allocations)),
		Summaries:   make([]BudgetTypeSummaryDTO, 0, len(result.Summaries)),
	}
	for _, status := range result.Allocations {
		dto.Allocations = append(dto.Allocations, AllocationStatusDTO{
			AllocationDTO:  allocationToDTO(status.Allocation),
			BudgetTypeName: status.BudgetType.Name,
			Available:      status.Available,
			UsedPercentage: status.UsedPercentage,
		})
	}
	for _, summary := range result.Summaries {
		dto.Summaries = append(dto.Summaries, BudgetTypeSummaryDTO{
			BudgetTypeID:    summary.BudgetType.ID,
			BudgetTypeName:  summary.BudgetType.Name,
			AllocationCount: summary.AllocationCount,
			TotalAllocated:  summary.TotalAllocated,
			TotalUsed:       summary.TotalUsed,
			TotalAvailable:  summary.TotalAvailable,
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *AllocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto AllocationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == 0 || dto.ID != id {
		http.Error(w, "Invalid allocation id in request body", http.StatusBadRequest)
		return
	}
	alloc, err := dtoToAllocation(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.service.Update(r.Context(), alloc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Allocation not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *AllocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.service.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Allocation not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func allocationToDTO(alloc BudgetAllocation) AllocationDTO {
	return AllocationDTO{
		ID:              alloc.ID,
		ClientID:        alloc.ClientID,
		BudgetTypeID:    alloc.BudgetTypeID,
		AllocatedAmount: alloc.AllocatedAmount,
		UsedAmount:      alloc.UsedAmount,
		StartDate:       alloc.StartDate.Format("2006-01-02"),
		EndDate:         alloc.EndDate.Format("2006-01-02"),
		WeekdayRate:     alloc.WeekdayRate,
		HolidayRate:     alloc.HolidayRate,
		KilometerRate:   alloc.KilometerRate,
	}
}

func dtoToAllocation(dto AllocationDTO) (BudgetAllocation, error) {
	startDate, err := time.Parse("2006-01-02", dto.StartDate)
	if err != nil {
		return BudgetAllocation{}, errors.New("invalid start date")
	}
	endDate, err := time.Parse("2006-01-02", dto.EndDate)
	if err != nil {
		return BudgetAllocation{}, errors.New("invalid end date")
	}
	return BudgetAllocation{
		ID:              dto.ID,
		ClientID:        dto.ClientID,
		BudgetTypeID:    dto.BudgetTypeID,
		AllocatedAmount: dto.AllocatedAmount,
		StartDate:       startDate,
		EndDate:         endDate,
		WeekdayRate:     dto.WeekdayRate,
		HolidayRate:     dto.HolidayRate,
		KilometerRate:   dto.KilometerRate,
	}, nil
}
