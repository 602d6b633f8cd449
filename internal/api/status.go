package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthTimeout = 2 * time.Second

// StatusHandler reports tracker and storage health.
type StatusHandler struct {
	*Handler
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(base *Handler) *StatusHandler {
	return &StatusHandler{Handler: base}
}

// RegisterRoutes registers status routes.
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/tracker", h.Tracker)
	r.Get("/api/health", h.Health)
}

// Tracker returns the in-progress session of each connected browser.
func (h *StatusHandler) Tracker(w http.ResponseWriter, _ *http.Request) {
	clients := h.clients.Snapshot()
	JSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(clients),
		"clients": clients,
	})
}

// Health pings storage.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "error", err)
		JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
