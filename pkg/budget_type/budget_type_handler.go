package budget_type

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetTypeDTO struct {
	ID                   int                 `json:"id"`
	Name                 string              `json:"name"`
	Code                 string              `json:"code,omitempty"`
	Description          string              `json:"description,omitempty"`
	DefaultWeekdayRate   decimal.NullDecimal `json:"defaultWeekdayRate,omitempty"`
	DefaultHolidayRate   decimal.NullDecimal `json:"defaultHolidayRate,omitempty"`
	DefaultKilometerRate decimal.NullDecimal `json:"defaultKilometerRate,omitempty"`
}

type BudgetTypeHandler struct {
	service BudgetTypeService
}

func NewBudgetTypeHandler(service BudgetTypeService) *BudgetTypeHandler {
	return &BudgetTypeHandler{service: service}
}

func (h *BudgetTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new budget type")
	w.Header().Set("Content-Type", "application/json")

	var dto BudgetTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dtoToBudgetType(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(budgetTypeToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetTypeHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	budgetTypes, err := h.service.GetAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]BudgetTypeDTO, 0, len(budgetTypes))
	for _, budgetType := range budgetTypes {
		dtos = append(dtos, budgetTypeToDTO(budgetType))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	budgetType, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBudgetTypeNotFound) {
			http.Error(w, "Budget type not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(budgetTypeToDTO(budgetType)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto BudgetTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == 0 || dto.ID != id {
		http.Error(w, "Invalid budget type id in request body", http.StatusBadRequest)
		return
	}

	ok, err := h.service.Update(r.Context(), dtoToBudgetType(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Budget type not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *BudgetTypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Budget type not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func budgetTypeToDTO(budgetType BudgetType) BudgetTypeDTO {
	return BudgetTypeDTO{
		ID:                   budgetType.ID,
		Name:                 budgetType.Name,
		Code:                 budgetType.Code,
		Description:          budgetType.Description,
		DefaultWeekdayRate:   budgetType.DefaultWeekdayRate,
		DefaultHolidayRate:   budgetType.DefaultHolidayRate,
		DefaultKilometerRate: budgetType.DefaultKilometerRate,
	}
}

func dtoToBudgetType(dto BudgetTypeDTO) BudgetType {
	return BudgetType{
		ID:                   dto.ID,
		Name:                 dto.Name,
		Code:                 dto.Code,
		Description:          dto.Description,
		DefaultWeekdayRate:   dto.DefaultWeekdayRate,
		DefaultHolidayRate:   dto.DefaultHolidayRate,
		DefaultKilometerRate: dto.DefaultKilometerRate,
	}
}
