// Package ingest receives browser signals over a WebSocket, drives one
// tracker per connected browser and answers the tracker's host queries
// through the same socket.
package ingest

import (
	"errors"
	"fmt"

	"github.com/ashureev/tabtime/internal/domain"
	"github.com/ashureev/tabtime/internal/tracker"
)

// ErrBadMessage is returned for inbound messages that cannot become events.
var ErrBadMessage = errors.New("malformed message")

// Message types on the wire. Any inbound message counts as activity for the
// stale-client sweeper, so an extension sitting on one page must send ping
// more often than CLIENT_TTL or its session is cut and its connection closed.
const (
	TypePing  = "ping"
	TypePong  = "pong"
	TypeQuery = "query"
	TypeReply = "reply"
	TypeError = "error"
)

// Host query operations, named after the browser APIs that answer them.
const (
	OpGetTab               = "tabs.get"
	OpQueryTabs            = "tabs.query"
	OpGetLastFocusedWindow = "windows.getLastFocused"
)

// inboundMessage is anything the extension sends: an event, a ping or a
// reply to a host query.
type inboundMessage struct {
	Type string `json:"type"`

	// events
	TabID    *int   `json:"tabId,omitempty"`
	WindowID *int   `json:"windowId,omitempty"`
	URL      string `json:"url,omitempty"`
	State    string `json:"state,omitempty"`

	// replies
	ID     uint64         `json:"id,omitempty"`
	Tab    *domain.Tab    `json:"tab,omitempty"`
	Tabs   []domain.Tab   `json:"tabs,omitempty"`
	Window *domain.Window `json:"window,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// queryMessage asks the extension to run a browser API call.
type queryMessage struct {
	Type     string `json:"type"`
	ID       uint64 `json:"id"`
	Op       string `json:"op"`
	TabID    *int   `json:"tabId,omitempty"`
	WindowID *int   `json:"windowId,omitempty"`
	Active   bool   `json:"active,omitempty"`
	Populate bool   `json:"populate,omitempty"`
}

// errorMessage tells the extension a message was rejected.
type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// event converts an inbound event message into a tracker event.
func (m inboundMessage) event() (tracker.Event, error) {
	switch tracker.EventKind(m.Type) {
	case tracker.EventTabActivated:
		if m.TabID == nil {
			return tracker.Event{}, fmt.Errorf("%w: %s without tabId", ErrBadMessage, m.Type)
		}
		return tracker.TabActivated(*m.TabID), nil
	case tracker.EventWindowFocusChanged:
		if m.WindowID == nil {
			return tracker.Event{}, fmt.Errorf("%w: %s without windowId", ErrBadMessage, m.Type)
		}
		return tracker.WindowFocusChanged(*m.WindowID), nil
	case tracker.EventTabUpdated:
		if m.TabID == nil {
			return tracker.Event{}, fmt.Errorf("%w: %s without tabId", ErrBadMessage, m.Type)
		}
		return tracker.TabUpdated(*m.TabID, m.URL), nil
	case tracker.EventIdleStateChanged:
		if m.State == "" {
			return tracker.Event{}, fmt.Errorf("%w: %s without state", ErrBadMessage, m.Type)
		}
		return tracker.IdleStateChanged(domain.IdleState(m.State)), nil
	default:
		return tracker.Event{}, fmt.Errorf("%w: unknown type %q", ErrBadMessage, m.Type)
	}
}
