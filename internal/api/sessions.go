package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SessionsHandler exposes the raw session log.
type SessionsHandler struct {
	*Handler
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(base *Handler) *SessionsHandler {
	return &SessionsHandler{Handler: base}
}

// RegisterRoutes registers session log routes.
func (h *SessionsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/sessions", h.List)
	r.Delete("/api/sessions", h.Clear)
}

// List returns every stored record in insertion order.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.ListRecords(r.Context())
	if err != nil {
		storageError(w, err, "list_records")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(records),
		"sessions": records,
	})
}

// Clear deletes every stored record. The caller must pass confirm=true.
func (h *SessionsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		Error(w, http.StatusBadRequest, "confirmation_required")
		return
	}

	deleted, err := h.repo.Clear(r.Context())
	if err != nil {
		storageError(w, err, "clear")
		return
	}

	slog.Info("Session log cleared", "deleted", deleted)
	JSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
	})
}
