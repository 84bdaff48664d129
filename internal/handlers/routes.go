package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the API router.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(Recoverer(h.logger))
	r.Use(SameOrigin)
	r.Use(middleware.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Task routes
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/backlog", h.Backlog)
		r.Post("/reorder", h.ReorderTasks)
		r.Post("/clear-done", h.ClearDone)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTask)
			r.Put("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)

			r.Post("/subtasks", h.AddSubtask)
			r.Post("/subtasks/reorder", h.ReorderSubtasks)
			r.Put("/subtasks/{sid}", h.UpdateSubtask)
			r.Delete("/subtasks/{sid}", h.DeleteSubtask)
		})
	})

	// Project routes
	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProject)
			r.Put("/", h.UpdateProject)
			r.Delete("/", h.DeleteProject)

			r.Post("/entries", h.AddEntry)
			r.Delete("/entries/{eid}", h.DeleteEntry)
		})
	})

	// Calendar routes
	r.Get("/api/calendar/{year}", h.CalendarYear)
	r.Get("/api/calendar/{year}/{month}", h.CalendarMonth)

	return r
}
