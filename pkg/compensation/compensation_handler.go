package compensation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/curaflow/curaflow/pkg/staff"
)

type BucketLineDTO struct {
	Hours  decimal.Decimal `json:"hours"`
	Amount decimal.Decimal `json:"amount"`
}

type UnbillableLogDTO struct {
	TimeLogID int    `json:"timeLogId"`
	Reason    string `json:"reason"`
}

type BreakdownDTO struct {
	Regular           BucketLineDTO      `json:"regular"`
	Weekend           BucketLineDTO      `json:"weekend"`
	Holiday           BucketLineDTO      `json:"holiday"`
	Overtime          BucketLineDTO      `json:"overtime"`
	Kilometers        decimal.Decimal    `json:"kilometers"`
	MileageAmount     decimal.Decimal    `json:"mileageAmount"`
	TotalCompensation decimal.Decimal    `json:"totalCompensation"`
	BillableLogs      int                `json:"billableLogs"`
	UnbillableLogs    []UnbillableLogDTO `json:"unbillableLogs,omitempty"`
}

type ChargeDTO struct {
	AllocationID *int            `json:"allocationId,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseUID   *string         `json:"expenseUid,omitempty"`
}

type CompensationDTO struct {
	UID         string       `json:"uid"`
	StaffID     int          `json:"staffId"`
	PeriodStart string       `json:"periodStart"`
	PeriodEnd   string       `json:"periodEnd"`
	Status      string       `json:"status"`
	Breakdown   BreakdownDTO `json:"breakdown"`
	Charges     []ChargeDTO  `json:"charges,omitempty"`
}

type CreateCompensationDTO struct {
	StaffID     int    `json:"staffId"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

type SubmitResultDTO struct {
	Compensation CompensationDTO `json:"compensation"`
	Warnings     []string        `json:"warnings,omitempty"`
}

type CompensationHandler struct {
	service   CompensationService
	staffRepo staff.StaffRepo
	renderer  CompensationRenderer
}

func NewCompensationHandler(service CompensationService, staffRepo staff.StaffRepo, renderer CompensationRenderer) *CompensationHandler {
	return &CompensationHandler{service: service, staffRepo: staffRepo, renderer: renderer}
}

func (h *CompensationHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new compensation")
	w.Header().Set("Content-Type", "application/json")

	var dto CreateCompensationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	periodStart, err := time.Parse("2006-01-02", dto.PeriodStart)
	if err != nil {
		http.Error(w, "invalid period start", http.StatusBadRequest)
		return
	}
	periodEnd, err := time.Parse("2006-01-02", dto.PeriodEnd)
	if err != nil {
		http.Error(w, "invalid period end", http.StatusBadRequest)
		return
	}

	comp, err := h.service.Create(r.Context(), dto.StaffID, periodStart, periodEnd)
	if err != nil {
		if errors.Is(err, ErrPeriodOverlap) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(compensationToDTO(comp)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *CompensationHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var compensations []Compensation
	var err error
	if staffParam := r.URL.Query().Get("staffId"); staffParam != "" {
		staffID, convErr := strconv.Atoi(staffParam)
		if convErr != nil {
			http.Error(w, "invalid staffId", http.StatusBadRequest)
			return
		}
		compensations, err = h.service.GetByStaff(r.Context(), staffID)
	} else {
		compensations, err = h.service.GetAll(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]CompensationDTO, 0, len(compensations))
	for _, comp := range compensations {
		dtos = append(dtos, compensationToDTO(comp))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *CompensationHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	comp, err := h.service.Get(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		if errors.Is(err, ErrCompensationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(compensationToDTO(comp)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *CompensationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dtos []ChargeDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	charges := make([]Charge, 0, len(dtos))
	for _, dto := range dtos {
		charges = append(charges, Charge{AllocationID: dto.AllocationID, Amount: dto.Amount})
	}

	result, err := h.service.Submit(r.Context(), mux.Vars(r)["uid"], charges)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	response := SubmitResultDTO{Compensation: compensationToDTO(result.Compensation)}
	for _, warning := range result.Warnings {
		response.Warnings = append(response.Warnings, warning.String())
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *CompensationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *CompensationHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkPaid)
}

func (h *CompensationHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, uid string) (Compensation, error)) {
	w.Header().Set("Content-Type", "application/json")

	comp, err := apply(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(compensationToDTO(comp)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *CompensationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["uid"]); err != nil {
		if errors.Is(err, ErrCompensationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompensationHandler) Export(w http.ResponseWriter, r *http.Request) {
	comp, err := h.service.Get(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		if errors.Is(err, ErrCompensationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	staffMember, err := h.staffRepo.Get(r.Context(), comp.StaffID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rendered, err := h.renderer.RenderCompensation(comp, staffMember)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=compensation-"+comp.UID+".csv")
	if _, err := w.Write([]byte(rendered)); err != nil {
		log.Errorf("Error writing csv response: %v", err)
	}
}

func writeTransitionError(w http.ResponseWriter, err error) {
	var transitionErr *InvalidTransitionError
	var mismatchErr *ChargeMismatchError
	switch {
	case errors.Is(err, ErrCompensationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &transitionErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &mismatchErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func compensationToDTO(comp Compensation) CompensationDTO {
	breakdown := BreakdownDTO{
		Regular:           BucketLineDTO(comp.Breakdown.Regular),
		Weekend:           BucketLineDTO(comp.Breakdown.Weekend),
		Holiday:           BucketLineDTO(comp.Breakdown.Holiday),
		Overtime:          BucketLineDTO(comp.Breakdown.Overtime),
		Kilometers:        comp.Breakdown.Kilometers,
		MileageAmount:     comp.Breakdown.MileageAmount,
		TotalCompensation: comp.Breakdown.TotalCompensation,
		BillableLogs:      comp.Breakdown.BillableLogs,
	}
	for _, unbillable := range comp.Breakdown.UnbillableLogs {
		breakdown.UnbillableLogs = append(breakdown.UnbillableLogs, UnbillableLogDTO(unbillable))
	}

	dto := CompensationDTO{
		UID:         comp.UID,
		StaffID:     comp.StaffID,
		PeriodStart: comp.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   comp.PeriodEnd.Format("2006-01-02"),
		Status:      string(comp.Status),
		Breakdown:   breakdown,
	}
	for _, charge := range comp.Charges {
		dto.Charges = append(dto.Charges, ChargeDTO{
			AllocationID: charge.AllocationID,
			Amount:       charge.Amount,
			ExpenseUID:   charge.ExpenseUID,
		})
	}
	return dto
}
