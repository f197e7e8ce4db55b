package staff

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type StaffDTO struct {
	ID            int                 `json:"id"`
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Email         string              `json:"email,omitempty"`
	Phone         string              `json:"phone,omitempty"`
	WeekdayRate   decimal.NullDecimal `json:"weekdayRate,omitempty"`
	HolidayRate   decimal.NullDecimal `json:"holidayRate,omitempty"`
	KilometerRate decimal.NullDecimal `json:"kilometerRate,omitempty"`
	Status        string              `json:"status"`
}

type StaffHandler struct {
	service StaffService
}

func NewStaffHandler(service StaffService) *StaffHandler {
	return &StaffHandler{service: service}
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new staff member")
	w.Header().Set("Content-Type", "application/json")

	var dto StaffDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dtoToStaff(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(staffToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *StaffHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	includeInactive := r.URL.Query().Has("includeInactive")

	members, err := h.service.GetAll(r.Context(), includeInactive)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]StaffDTO, 0, len(members))
	for _, member := range members {
		dtos = append(dtos, staffToDTO(member))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrStaffNotFound) {
			http.Error(w, "Staff member not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(staffToDTO(member)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto StaffDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == 0 || dto.ID != id {
		http.Error(w, "Invalid staff id in request body", http.StatusBadRequest)
		return
	}

	ok, err := h.service.Update(r.Context(), dtoToStaff(dto))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Staff member not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *StaffHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var statusDTO struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.service.SetStatus(r.Context(), id, StaffStatus(statusDTO.Status))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "Staff member not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func staffToDTO(s Staff) StaffDTO {
	return StaffDTO{
		ID:            s.ID,
		FirstName:     s.FirstName,
		LastName:      s.LastName,
		Email:         s.Email,
		Phone:         s.Phone,
		WeekdayRate:   s.WeekdayRate,
		HolidayRate:   s.HolidayRate,
		KilometerRate: s.KilometerRate,
		Status:        string(s.Status),
	}
}

func dtoToStaff(dto StaffDTO) Staff {
	return Staff{
		ID:            dto.ID,
		FirstName:     dto.FirstName,
		LastName:      dto.LastName,
		Email:         dto.Email,
		Phone:         dto.Phone,
		WeekdayRate:   dto.WeekdayRate,
		HolidayRate:   dto.HolidayRate,
		KilometerRate: dto.KilometerRate,
		Status:        StaffStatus(dto.Status),
	}
}
