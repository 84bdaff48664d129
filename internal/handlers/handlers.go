package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"todocal/internal/models"
	"todocal/internal/store"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store  *store.Store
	logger *log.Logger
}

// New creates a new Handlers instance. A nil logger discards output.
func New(s *store.Store, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handlers{
		store:  s,
		logger: logger,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// respondJSON writes v with the given status code.
func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Detail: message})
}

func respondOK(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

// respondStoreError maps store errors onto status codes.
func (h *Handlers) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("internal server error", "method", r.Method, "path", r.URL.Path, "err", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// readBody reads the request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return data, true
}

// readFields decodes a partial entity payload. An empty body reads as {}.
func readFields(w http.ResponseWriter, r *http.Request) (models.Fields, bool) {
	data, ok := readBody(w, r)
	if !ok {
		return nil, false
	}
	f, err := models.ParseFields(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return f, true
}

// readIDs decodes an {"ids": [...]} reorder payload.
func readIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	data, ok := readBody(w, r)
	if !ok {
		return nil, false
	}
	ids, err := models.ParseIDList(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return ids, true
}
