// Package tracker turns browser tab, focus and idle signals into closed
// per-domain session records.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/tabtime/internal/domain"
)

// Recorder persists closed sessions.
type Recorder interface {
	AppendRecord(ctx context.Context, rec domain.SessionRecord) error
}

// Host answers the browser queries the tracker needs while handling events.
type Host interface {
	// GetTab looks a tab up by id.
	GetTab(ctx context.Context, tabID int) (domain.Tab, error)

	// QueryActiveTab returns the active tab of a window. The boolean is
	// false when the window has no active tab.
	QueryActiveTab(ctx context.Context, windowID int) (domain.Tab, bool, error)

	// GetLastFocusedWindow returns the most recently focused window with
	// its tabs populated.
	GetLastFocusedWindow(ctx context.Context) (domain.Window, error)
}

// State is the in-progress session. TabID, Domain and Start are set and
// cleared together.
type State struct {
	TabID  int       `json:"tab_id"`
	Domain string    `json:"domain"`
	Start  time.Time `json:"start"`
}

// Tracker holds at most one in-progress session. Event handlers must be
// called sequentially (see Dispatcher); Snapshot is safe from any goroutine.
type Tracker struct {
	recorder Recorder
	host     Host
	clock    Clock
	logger   *slog.Logger

	mu      sync.Mutex
	current *State
}

// New creates a tracker in the not-tracking state.
func New(recorder Recorder, host Host, clock Clock, logger *slog.Logger) *Tracker {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		recorder: recorder,
		host:     host,
		clock:    clock,
		logger:   logger,
	}
}

// Snapshot returns a copy of the in-progress session, if any.
func (t *Tracker) Snapshot() (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return State{}, false
	}
	return *t.current, true
}

// Start begins tracking tabID at url. Non-http(s) URLs are ignored and leave
// the state untouched. A URL whose domain cannot be derived still opens a
// session, but Stop will not persist it.
func (t *Tracker) Start(tabID int, url string) {
	if !domain.IsTrackable(url) {
		return
	}
	base, ok := domain.BaseDomain(url)
	if !ok {
		t.logger.Debug("unparseable url, domain unknown", "tab_id", tabID)
	}

	t.mu.Lock()
	t.current = &State{TabID: tabID, Domain: base, Start: t.clock.Now()}
	t.mu.Unlock()

	t.logger.Debug("tracking started", "tab_id", tabID, "domain", base)
}

// Stop closes the in-progress session. Sessions longer than
// domain.MinSessionLength with a known domain are appended to the recorder.
// The state is always cleared, even when the append fails.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	cur := t.current
	t.current = nil
	now := t.clock.Now()
	t.mu.Unlock()

	if cur == nil || cur.Domain == "" {
		return nil
	}

	rec := domain.SessionRecord{
		Domain: cur.Domain,
		Start:  cur.Start.UnixMilli(),
		End:    now.UnixMilli(),
	}
	if !rec.Persistable() {
		t.logger.Debug("session too short, discarded", "domain", cur.Domain, "elapsed", rec.Duration())
		return nil
	}

	if err := t.recorder.AppendRecord(ctx, rec); err != nil {
		return fmt.Errorf("record session for %s: %w", cur.Domain, err)
	}
	t.logger.Info("session recorded", "domain", rec.Domain, "duration", rec.Duration())
	return nil
}

// Handle routes an event to its handler.
func (t *Tracker) Handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventTabActivated:
		return t.HandleTabActivated(ctx, ev.TabID)
	case EventWindowFocusChanged:
		return t.HandleWindowFocusChanged(ctx, ev.WindowID)
	case EventTabUpdated:
		return t.HandleTabUpdated(ctx, ev.TabID, ev.URL)
	case EventIdleStateChanged:
		return t.HandleIdleStateChanged(ctx, ev.State)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
}

// HandleTabActivated switches tracking to the newly active tab.
func (t *Tracker) HandleTabActivated(ctx context.Context, tabID int) error {
	stopErr := t.Stop(ctx)

	tab, err := t.host.GetTab(ctx, tabID)
	if err != nil {
		return errors.Join(stopErr, fmt.Errorf("get tab %d: %w", tabID, err))
	}
	t.Start(tab.ID, tab.URL)
	return stopErr
}

// HandleWindowFocusChanged stops tracking when focus leaves the browser and
// otherwise switches to the active tab of the focused window.
func (t *Tracker) HandleWindowFocusChanged(ctx context.Context, windowID int) error {
	if windowID == domain.WindowIDNone {
		return t.Stop(ctx)
	}

	tab, found, err := t.host.QueryActiveTab(ctx, windowID)
	if err != nil {
		return fmt.Errorf("query active tab of window %d: %w", windowID, err)
	}
	if !found {
		return nil
	}

	stopErr := t.Stop(ctx)
	t.Start(tab.ID, tab.URL)
	return stopErr
}

// HandleTabUpdated restarts the session when the tracked tab navigates.
// Updates to other tabs, or without a URL change, are ignored.
func (t *Tracker) HandleTabUpdated(ctx context.Context, tabID int, url string) error {
	if url == "" {
		return nil
	}
	t.mu.Lock()
	tracked := t.current != nil && t.current.TabID == tabID
	t.mu.Unlock()
	if !tracked {
		return nil
	}

	stopErr := t.Stop(ctx)
	t.Start(tabID, url)
	return stopErr
}

// HandleIdleStateChanged stops tracking when the user goes idle or locks the
// screen, and resumes on the focused window's active tab when they return.
func (t *Tracker) HandleIdleStateChanged(ctx context.Context, state domain.IdleState) error {
	stopErr := t.Stop(ctx)
	if state != domain.IdleStateActive {
		return stopErr
	}

	win, err := t.host.GetLastFocusedWindow(ctx)
	if err != nil {
		return errors.Join(stopErr, fmt.Errorf("get last focused window: %w", err))
	}
	if !win.Focused {
		return stopErr
	}
	if tab, ok := win.ActiveTab(); ok {
		t.Start(tab.ID, tab.URL)
	}
	return stopErr
}
