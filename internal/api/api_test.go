//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ashureev/tabtime/internal/domain"
	"github.com/ashureev/tabtime/internal/ingest"
	"github.com/ashureev/tabtime/internal/store"
	"github.com/ashureev/tabtime/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

type staticClients []ingest.ClientStatus

func (s staticClients) Snapshot() []ingest.ClientStatus { return s }

func at(day, hour int) int64 {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func newTestRouter(t *testing.T, repo store.Repository, clients ClientSource) http.Handler {
	t.Helper()
	base := NewHandler(repo, clients, time.UTC)
	base.now = func() time.Time { return testNow }

	r := chi.NewRouter()
	NewReportHandler(base).RegisterRoutes(r)
	NewSessionsHandler(base).RegisterRoutes(r)
	NewStatusHandler(base).RegisterRoutes(r)
	return r
}

func newSeededRouter(t *testing.T) (http.Handler, *store.SQLiteStore) {
	t.Helper()
	repo, err := store.NewSQLite(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	for _, rec := range []domain.SessionRecord{
		{Domain: "a.com", Start: at(10, 9), End: at(10, 9) + 120_000},
		{Domain: "b.com", Start: at(10, 10), End: at(10, 10) + 30_500},
		{Domain: "a.com", Start: at(9, 20), End: at(9, 20) + 60_000},
		{Domain: "", Start: at(1, 12), End: at(1, 12) + 10_000},
	} {
		require.NoError(t, repo.AppendRecord(ctx, rec))
	}
	return newTestRouter(t, repo, staticClients{}), repo
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) reportResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp reportResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestGetReportFilters(t *testing.T) {
	h, _ := newSeededRouter(t)

	tests := []struct {
		name  string
		query string
		want  []reportRow
	}{
		{
			name:  "default is today",
			query: "",
			want: []reportRow{
				{Domain: "a.com", Seconds: 120, Formatted: "0d 0h 2m 0s"},
				{Domain: "b.com", Seconds: 30, Formatted: "0d 0h 0m 30s"},
			},
		},
		{
			name:  "past24",
			query: "?filter=past24",
			want: []reportRow{
				{Domain: "a.com", Seconds: 180, Formatted: "0d 0h 3m 0s"},
				{Domain: "b.com", Seconds: 30, Formatted: "0d 0h 0m 30s"},
			},
		},
		{
			name:  "all includes the null domain",
			query: "?filter=all",
			want: []reportRow{
				{Domain: "a.com", Seconds: 180, Formatted: "0d 0h 3m 0s"},
				{Domain: "b.com", Seconds: 30, Formatted: "0d 0h 0m 30s"},
				{Domain: "null", Seconds: 10, Formatted: "0d 0h 0m 10s"},
			},
		},
		{
			name:  "custom",
			query: "?filter=custom&from=2024-03-09T00:00&to=2024-03-09T23:59",
			want: []reportRow{
				{Domain: "a.com", Seconds: 60, Formatted: "0d 0h 1m 0s"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeReport(t, get(t, h, "/api/report"+tt.query))
			assert.Equal(t, tt.want, resp.Rows)

			var sum int64
			for _, row := range tt.want {
				sum += row.Seconds
			}
			assert.Equal(t, sum, resp.TotalSeconds)
		})
	}
}

func TestGetReportTodayBounds(t *testing.T) {
	h, _ := newSeededRouter(t)

	resp := decodeReport(t, get(t, h, "/api/report?filter=today"))
	assert.Equal(t, "today", string(resp.Filter))
	assert.True(t, resp.From.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, resp.To.Equal(testNow))
	assert.Equal(t, "0d 0h 2m 30s", resp.Total)
}

func TestGetReportEmptyWindow(t *testing.T) {
	h, _ := newSeededRouter(t)

	resp := decodeReport(t, get(t, h, "/api/report?filter=custom&from=2023-01-01T00:00&to=2023-01-02T00:00"))
	assert.Empty(t, resp.Rows)
	assert.NotNil(t, resp.Rows)
	assert.Zero(t, resp.TotalSeconds)
}

func TestGetReportBadRequests(t *testing.T) {
	h, _ := newSeededRouter(t)

	t.Run("custom without bounds", func(t *testing.T) {
		w := get(t, h, "/api/report?filter=custom&from=2024-03-09T00:00")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Please select both From and To times for custom range.", body["error"])
	})

	t.Run("unknown filter", func(t *testing.T) {
		w := get(t, h, "/api/report?filter=lastweek")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unparseable bound", func(t *testing.T) {
		w := get(t, h, "/api/report?filter=custom&from=yesterday&to=today")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExport(t *testing.T) {
	h, _ := newSeededRouter(t)

	w := get(t, h, "/api/export?filter=all")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="time_tracker_data.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Domain,Time Spent (seconds)\na.com,180\nb.com,30\nnull,10\n", w.Body.String())
}

func TestExportEmpty(t *testing.T) {
	repo, err := store.NewSQLite(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	h := newTestRouter(t, repo, staticClients{})

	w := get(t, h, "/api/export")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Domain,Time Spent (seconds)\n", w.Body.String())
}

func TestSessionsListAndClear(t *testing.T) {
	h, repo := newSeededRouter(t)

	w := get(t, h, "/api/sessions")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count    int                    `json:"count"`
		Sessions []domain.SessionRecord `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, 4, list.Count)
	require.Len(t, list.Sessions, 4)
	assert.Equal(t, "a.com", list.Sessions[0].Domain)
	assert.NotEmpty(t, list.Sessions[0].ID)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	recs, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 4)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions?"+url.Values{"confirm": {"true"}}.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":4}`, w.Body.String())

	resp := decodeReport(t, get(t, h, "/api/report?filter=all"))
	assert.Empty(t, resp.Rows)
}

func TestStorageFailures(t *testing.T) {
	h := newTestRouter(t, &failingRepo{err: errors.New("database is locked")}, staticClients{})

	for _, target := range []string{"/api/report", "/api/export", "/api/sessions", "/api/health"} {
		w := get(t, h, target)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
	}
}

func TestTracker(t *testing.T) {
	started := time.UnixMilli(1_700_000_000_000).UTC()
	clients := staticClients{{
		ClientID:    "laptop",
		ConnectedAt: started,
		LastSeen:    started,
		Tracking:    &tracker.State{TabID: 3, Domain: "go.dev", Start: started},
	}}
	h := newTestRouter(t, &failingRepo{}, clients)

	w := get(t, h, "/api/tracker")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count   int                   `json:"count"`
		Clients []ingest.ClientStatus `json:"clients"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Clients, 1)
	require.NotNil(t, body.Clients[0].Tracking)
	assert.Equal(t, "go.dev", body.Clients[0].Tracking.Domain)
}

func TestHealth(t *testing.T) {
	repo, err := store.NewSQLite(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	w := get(t, newTestRouter(t, repo, staticClients{}), "/api/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
