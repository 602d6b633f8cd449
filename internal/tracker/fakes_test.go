package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ashureev/tabtime/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []domain.SessionRecord
	err     error
}

func (r *fakeRecorder) AppendRecord(_ context.Context, rec domain.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRecorder) all() []domain.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SessionRecord, len(r.records))
	copy(out, r.records)
	return out
}

var errNoTab = errors.New("no tab with id")

type fakeHost struct {
	mu      sync.Mutex
	tabs    map[int]domain.Tab
	active  map[int]int // windowID -> tabID
	focused  domain.Window
	calls    []string
	queryErr error
}

func newFakeHost() *fakeHost {
	return &fakeHost{tabs: map[int]domain.Tab{}, active: map[int]int{}}
}

func (h *fakeHost) addTab(tab domain.Tab) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tabs[tab.ID] = tab
	if tab.Active {
		h.active[tab.WindowID] = tab.ID
	}
}

func (h *fakeHost) GetTab(_ context.Context, tabID int) (domain.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, "tabs.get")
	tab, ok := h.tabs[tabID]
	if !ok {
		return domain.Tab{}, errNoTab
	}
	return tab, nil
}

func (h *fakeHost) QueryActiveTab(_ context.Context, windowID int) (domain.Tab, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, "tabs.query")
	if h.queryErr != nil {
		return domain.Tab{}, false, h.queryErr
	}
	id, ok := h.active[windowID]
	if !ok {
		return domain.Tab{}, false, nil
	}
	return h.tabs[id], true, nil
}

func (h *fakeHost) GetLastFocusedWindow(_ context.Context) (domain.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, "windows.getLastFocused")
	return h.focused, nil
}
