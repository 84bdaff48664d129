package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"todocal/internal/models"
)

// ListProjects returns every project, or only those matching ?status=.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	var status models.Status
	if v := r.URL.Query().Get("status"); v != "" {
		s, ok := models.ParseStatus(v)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status = s
	}

	projects, err := h.store.ListProjects(r.Context(), status)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// GetProject returns a single project with its entries.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// CreateProject creates a new project.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	f, ok := readFields(w, r)
	if !ok {
		return
	}

	project, err := h.store.CreateProject(r.Context(), f)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// UpdateProject applies a partial update to an existing project.
func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	f, ok := readFields(w, r)
	if !ok {
		return
	}

	project, err := h.store.UpdateProject(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// DeleteProject deletes a project and its entries.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondOK(w)
}

// AddEntry appends a log entry to a project.
func (h *Handlers) AddEntry(w http.ResponseWriter, r *http.Request) {
	f, ok := readFields(w, r)
	if !ok {
		return
	}

	entry, err := h.store.AddEntry(r.Context(), chi.URLParam(r, "id"), f)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// DeleteEntry deletes a project log entry.
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteEntry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eid")); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondOK(w)
}
