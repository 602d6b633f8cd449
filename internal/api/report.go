package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/tabtime/internal/report"
	"github.com/go-chi/chi/v5"
)

// ReportHandler serves aggregated totals and CSV exports.
type ReportHandler struct {
	*Handler
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *Handler) *ReportHandler {
	return &ReportHandler{Handler: base}
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/report", h.GetReport)
	r.Get("/api/export", h.Export)
}

type reportRow struct {
	Domain    string `json:"domain"`
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
}

type reportResponse struct {
	Filter       report.FilterName `json:"filter"`
	From         time.Time         `json:"from"`
	To           time.Time         `json:"to"`
	TotalSeconds int64             `json:"total_seconds"`
	Total        string            `json:"total"`
	Rows         []reportRow       `json:"rows"`
}

// GetReport returns per-domain totals for the requested window.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	filter, window, ok := h.window(w, r)
	if !ok {
		return
	}

	totals, ok := h.totals(w, r, window)
	if !ok {
		return
	}

	resp := reportResponse{
		Filter:       filter.Name,
		From:         window.From.In(h.loc),
		To:           window.To.In(h.loc),
		TotalSeconds: totals.Sum(),
		Total:        report.FormatTime(totals.Sum()),
		Rows:         make([]reportRow, 0, len(totals)),
	}
	for _, row := range totals.Rows() {
		resp.Rows = append(resp.Rows, reportRow{
			Domain:    row.Label(),
			Seconds:   row.Seconds,
			Formatted: report.FormatTime(row.Seconds),
		})
	}
	JSON(w, http.StatusOK, resp)
}

// Export returns the window's totals as a CSV attachment.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	_, window, ok := h.window(w, r)
	if !ok {
		return
	}

	totals, ok := h.totals(w, r, window)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, totals); err != nil {
		slog.Error("Failed to render CSV export", "error", err)
		Error(w, http.StatusInternalServerError, "export_failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ExportFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("Failed to write CSV export", "error", err)
	}
}

// window resolves the filter query parameters. It writes a 400 and reports
// false when they are unusable.
func (h *ReportHandler) window(w http.ResponseWriter, r *http.Request) (report.Filter, report.Window, bool) {
	q := r.URL.Query()
	filter, err := report.NewFilter(q.Get("filter"), q.Get("from"), q.Get("to"), h.loc)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return report.Filter{}, report.Window{}, false
	}

	window, err := report.Resolve(filter, h.now(), h.loc)
	if err != nil {
		if errors.Is(err, report.ErrMissingRange) {
			// Shown to the user as is.
			Error(w, http.StatusBadRequest, err.Error())
		} else {
			Error(w, http.StatusBadRequest, fmt.Sprintf("invalid filter: %v", err))
		}
		return report.Filter{}, report.Window{}, false
	}
	return filter, window, true
}

func (h *ReportHandler) totals(w http.ResponseWriter, r *http.Request, window report.Window) (report.Totals, bool) {
	records, err := h.repo.ListRecords(r.Context())
	if err != nil {
		storageError(w, err, "list_records")
		return nil, false
	}
	return report.Aggregate(records, window.FromMillis(), window.ToMillis()), true
}
