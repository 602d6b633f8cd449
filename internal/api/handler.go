// Package api provides HTTP handlers for the tabtime API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/tabtime/internal/ingest"
	"github.com/ashureev/tabtime/internal/shared"
	"github.com/ashureev/tabtime/internal/store"
)

// ClientSource lists the connected browsers.
type ClientSource interface {
	Snapshot() []ingest.ClientStatus
}

// Handler provides common handler utilities.
type Handler struct {
	repo    store.Repository
	clients ClientSource
	loc     *time.Location
	now     func() time.Time
}

// NewHandler creates a new Handler with common dependencies. Report windows
// are computed in loc.
func NewHandler(repo store.Repository, clients ClientSource, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		repo:    repo,
		clients: clients,
		loc:     loc,
		now:     time.Now,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// storageError maps a repository failure to a response. Lock contention
// past the busy timeout is reported as temporary.
func storageError(w http.ResponseWriter, err error, op string) {
	if shared.IsTransient(err) {
		slog.Warn("Storage busy", "op", op, "error", err)
		Error(w, http.StatusServiceUnavailable, "storage_busy")
		return
	}
	slog.Error("Storage failure", "op", op, "error", err)
	Error(w, http.StatusInternalServerError, "storage_error")
}
