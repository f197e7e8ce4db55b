package google

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	importer *HolidayImporter
}

func NewHandler(importer *HolidayImporter) *Handler {
	return &Handler{importer: importer}
}

func (h *Handler) ImportHolidays(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	imported, err := h.importer.ImportYear(r.Context(), year)
	if err != nil {
		if errors.Is(err, ErrImportNotConfigured) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Errorf("holiday import failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]int{"imported": imported}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
