package timelog

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

type TimeLogDTO struct {
	ID           int             `json:"id"`
	ClientID     int             `json:"clientId"`
	StaffID      int             `json:"staffId"`
	AllocationID *int            `json:"allocationId,omitempty"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      time.Time       `json:"endTime"`
	ServiceDate  string          `json:"serviceDate,omitempty"`
	Hours        decimal.Decimal `json:"hours"`
	Kilometers   decimal.Decimal `json:"kilometers"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Description  string          `json:"description,omitempty"`
	ExpenseUID   *string         `json:"expenseUid,omitempty"`
}

type CreateResultDTO struct {
	TimeLog TimeLogDTO `json:"timeLog"`
	Warning *string    `json:"warning,omitempty"`
}

type TimeLogHandler struct {
	service TimeLogService
}

func NewTimeLogHandler(service TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{service: service}
}

func (h *TimeLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new time log")
	w.Header().Set("Content-Type", "application/json")

	var dto TimeLogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Create(r.Context(), TimeLog{
		ClientID:     dto.ClientID,
		StaffID:      dto.StaffID,
		AllocationID: dto.AllocationID,
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		Kilometers:   dto.Kilometers,
		Description:  dto.Description,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := CreateResultDTO{TimeLog: timeLogToDTO(result.TimeLog)}
	if result.Warning != nil {
		message := result.Warning.String()
		response.Warning = &message
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// List serves logs for either a staff member or a client over a date range.
func (h *TimeLogHandler) List(w http.ResponseWriter, r *http.Request) {
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

	var timeLogs []TimeLog
	switch {
	case r.URL.Query().Get("staffId") != "":
		staffID, err := strconv.Atoi(r.URL.Query().Get("staffId"))
		if err != nil {
			http.Error(w, "invalid staffId", http.StatusBadRequest)
			return
		}
		timeLogs, err = h.service.GetByStaff(r.Context(), staffID, from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	case r.URL.Query().Get("clientId") != "":
		clientID, err := strconv.Atoi(r.URL.Query().Get("clientId"))
		if err != nil {
			http.Error(w, "invalid clientId", http.StatusBadRequest)
			return
		}
		timeLogs, err = h.service.GetByClient(r.Context(), clientID, from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	default:
		http.Error(w, "staffId or clientId query parameter is required", http.StatusBadRequest)
		return
	}

	dtos := make([]TimeLogDTO, 0, len(timeLogs))
	for _, timeLog := range timeLogs {
		dtos = append(dtos, timeLogToDTO(timeLog))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *TimeLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTimeLogNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Time log not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func timeLogToDTO(timeLog TimeLog) TimeLogDTO {
	return TimeLogDTO{
		ID:           timeLog.ID,
		ClientID:     timeLog.ClientID,
		StaffID:      timeLog.StaffID,
		AllocationID: timeLog.AllocationID,
		StartTime:    timeLog.StartTime,
		EndTime:      timeLog.EndTime,
		ServiceDate:  timeLog.ServiceDate.Format("2006-01-02"),
		Hours:        timeLog.Hours,
		Kilometers:   timeLog.Kilometers,
		HourlyRate:   timeLog.HourlyRate,
		TotalCost:    timeLog.TotalCost,
		Description:  timeLog.Description,
		ExpenseUID:   timeLog.ExpenseUID,
	}
}
