package tracker

import (
	"errors"
	"fmt"

	"github.com/ashureev/tabtime/internal/domain"
)

// ErrUnknownEvent is returned for events whose kind the tracker does not handle.
var ErrUnknownEvent = errors.New("unknown event kind")

// EventKind names a browser signal the tracker reacts to.
type EventKind string

const (
	EventTabActivated       EventKind = "tab_activated"
	EventWindowFocusChanged EventKind = "window_focus_changed"
	EventTabUpdated         EventKind = "tab_updated"
	EventIdleStateChanged   EventKind = "idle_state_changed"
)

// Event is a single browser signal. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	TabID    int
	WindowID int
	URL      string
	State    domain.IdleState
}

// TabActivated builds an active-tab-changed event.
func TabActivated(tabID int) Event {
	return Event{Kind: EventTabActivated, TabID: tabID}
}

// WindowFocusChanged builds a window-focus-changed event. Pass
// domain.WindowIDNone when no window has focus.
func WindowFocusChanged(windowID int) Event {
	return Event{Kind: EventWindowFocusChanged, WindowID: windowID}
}

// TabUpdated builds a tab-URL-updated event.
func TabUpdated(tabID int, url string) Event {
	return Event{Kind: EventTabUpdated, TabID: tabID, URL: url}
}

// IdleStateChanged builds an idle-state-changed event.
func IdleStateChanged(state domain.IdleState) Event {
	return Event{Kind: EventIdleStateChanged, State: state}
}

func (e Event) String() string {
	switch e.Kind {
	case EventTabActivated:
		return fmt.Sprintf("%s(tab=%d)", e.Kind, e.TabID)
	case EventWindowFocusChanged:
		return fmt.Sprintf("%s(window=%d)", e.Kind, e.WindowID)
	case EventTabUpdated:
		return fmt.Sprintf("%s(tab=%d)", e.Kind, e.TabID)
	case EventIdleStateChanged:
		return fmt.Sprintf("%s(%s)", e.Kind, e.State)
	default:
		return string(e.Kind)
	}
}
