package holiday

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type HolidayDTO struct {
	ID   int    `json:"id"`
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}

type HolidayHandler struct {
	service HolidayService
}

func NewHolidayHandler(service HolidayService) *HolidayHandler {
	return &HolidayHandler{service: service}
}

func (h *HolidayHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to date", http.StatusBadRequest)
		return
	}

	holidays, err := h.service.GetRange(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, holiday := range holidays {
		dtos = append(dtos, holidayToDTO(holiday))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *HolidayHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new holiday")
	w.Header().Set("Content-Type", "application/json")

	var dto HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		http.Error(w, "invalid holiday date", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), Holiday{Date: date, Name: dto.Name})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(holidayToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *HolidayHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Holiday not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func holidayToDTO(holiday Holiday) HolidayDTO {
	return HolidayDTO{
		ID:   holiday.ID,
		Date: holiday.Date.Format("2006-01-02"),
		Name: holiday.Name,
	}
}
