package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"todocal/internal/models"
)

// YearData holds the year view: one summary per month.
type YearData struct {
	Year   int                   `json:"year"`
	Months []models.MonthSummary `json:"months"`
	Stats  models.Stats          `json:"stats"`
}

// MonthData holds the month view: tasks grouped by day.
type MonthData struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Days  []models.DayGroup `json:"days"`
	Stats models.Stats      `json:"stats"`
}

// CalendarYear returns per-month totals for a year.
func (h *Handlers) CalendarYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}

	list, err := h.store.ListTasks(r.Context(), models.TaskFilter{Year: year})
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, YearData{
		Year:   year,
		Months: models.MonthSummaries(list.Tasks, year),
		Stats:  list.Stats,
	})
}

// CalendarMonth returns a month's tasks grouped by day.
func (h *Handlers) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	list, err := h.store.ListTasks(r.Context(), models.TaskFilter{Year: year, Month: month})
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, MonthData{
		Year:  year,
		Month: month,
		Days:  models.DayGroups(list.Tasks, year, month),
		Stats: list.Stats,
	})
}
