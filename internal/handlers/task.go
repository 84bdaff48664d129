package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"todocal/internal/models"
	"todocal/internal/schedule"
)

// ListTasks returns tasks after carrying overdue ones over to today.
// Optional query parameters: year, month, day (with year and month) and
// include_done (default true).
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.store.ListTasks(r.Context(), filter)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func parseTaskFilter(r *http.Request) (models.TaskFilter, error) {
	q := r.URL.Query()
	var filter models.TaskFilter

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 || year > 9999 {
			return filter, errors.New("invalid year")
		}
		filter.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return filter, errors.New("month must be between 1 and 12")
		}
		filter.Month = month
	}
	if v := q.Get("day"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil || filter.Year == 0 || filter.Month == 0 {
			return filter, errors.New("day requires year and month")
		}
		date := fmt.Sprintf("%04d-%02d-%02d", filter.Year, filter.Month, day)
		if _, ok := schedule.ParseDate(date); !ok {
			return filter, errors.New("invalid day")
		}
		filter.Date = date
	}
	if v := q.Get("include_done"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("invalid include_done")
		}
		filter.HideDone = !include
	}

	return filter, nil
}

// Backlog returns open P3 tasks in sort_order.
func (h *Handlers) Backlog(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.Backlog(r.Context())
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// GetTask returns a single task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// CreateTask creates a new task.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	f, ok := readFields(w, r)
	if !ok {
		return
	}

	task, err := h.store.CreateTask(r.Context(), f)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to an existing task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	f, ok := readFields(w, r)
	if !ok {
		return
	}

	task, err := h.store.UpdateTask(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondOK(w)
}

// ReorderTasks sets sort_order from the position of each id in the list.
func (h *Handlers) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	ids, ok := readIDs(w, r)
	if !ok {
		return
	}

	if err := h.store.ReorderTasks(r.Context(), ids); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondOK(w)
}

// ClearDone deletes every completed task.
func (h *Handlers) ClearDone(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.store.ClearDone(r.Context())
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

// AddSubtask appends a subtask to a task.
func (h *Handlers) AddSubtask(w http.ResponseWriter, r *http.Request) {
	f, ok := readFields(w, r)
	if !ok {
		return
	}

	st, err := h.store.AddSubtask(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, st)
}

// UpdateSubtask applies a partial {title, done} update to a subtask.
func (h *Handlers) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	f, ok := readFields(w, r)
	if !ok {
		return
	}

	st, err := h.store.UpdateSubtask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sid"), f)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, st)
}

// DeleteSubtask deletes a subtask.
func (h *Handlers) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSubtask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sid")); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondOK(w)
}

// ReorderSubtasks reorders a task's subtasks and returns the full list.
func (h *Handlers) ReorderSubtasks(w http.ResponseWriter, r *http.Request) {
	ids, ok := readIDs(w, r)
	if !ok {
		return
	}

	subtasks, err := h.store.ReorderSubtasks(r.Context(), chi.URLParam(r, "id"), ids)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, subtasks)
}
