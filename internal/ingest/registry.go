package ingest

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashureev/tabtime/internal/tracker"
	"github.com/coder/websocket"
)

// Client is one connected browser with its own tracker.
type Client struct {
	ID          string
	ConnectedAt time.Time

	conn       *websocket.Conn
	host       *Host
	dispatcher *tracker.Dispatcher
	cancel     context.CancelFunc
	lastSeen   atomic.Int64
}

// ClientStatus is a read-only view of a connected browser.
type ClientStatus struct {
	ClientID    string         `json:"client_id"`
	ConnectedAt time.Time      `json:"connected_at"`
	LastSeen    time.Time      `json:"last_seen"`
	Tracking    *tracker.State `json:"tracking"`
	QueueLen    int            `json:"queue_len"`
}

// Touch records activity on the connection.
func (c *Client) Touch(now time.Time) {
	c.lastSeen.Store(now.UnixMilli())
}

// LastSeen returns the time of the last message from the browser.
func (c *Client) LastSeen() time.Time {
	return time.UnixMilli(c.lastSeen.Load())
}

// Close ends the connection. The handler serving it then flushes the
// in-progress session.
func (c *Client) Close(reason string) {
	if c.cancel != nil {
		c.cancel()
	}
	if c.host != nil {
		c.host.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, reason)
	}
}

// Status returns a snapshot of the client.
func (c *Client) Status() ClientStatus {
	st := ClientStatus{
		ClientID:    c.ID,
		ConnectedAt: c.ConnectedAt,
		LastSeen:    c.LastSeen(),
	}
	if c.dispatcher != nil {
		if state, ok := c.dispatcher.Tracker().Snapshot(); ok {
			st.Tracking = &state
		}
		st.QueueLen = c.dispatcher.QueueLen()
	}
	return st
}

// Registry tracks the connected browsers, one per client id.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]*Client),
	}
}

// Get returns the client connected under id.
func (r *Registry) Get(id string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[id]
}

// Register adds c, closing any earlier connection under the same id.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	existing, exists := r.active[c.ID]
	r.active[c.ID] = c
	r.mu.Unlock()

	if exists && existing != c {
		existing.Close("connection replaced")
		slog.Info("Browser connection replaced", "client_id", c.ID)
	}
	slog.Info("Browser connection registered", "client_id", c.ID)
}

// Unregister removes c if it is still the current connection for its id.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, exists := r.active[c.ID]; exists && current == c {
		delete(r.active, c.ID)
		slog.Info("Browser connection unregistered", "client_id", c.ID)
	}
}

// Len returns the number of connected browsers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// Snapshot lists the connected browsers ordered by client id.
func (r *Registry) Snapshot() []ClientStatus {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.active))
	for _, c := range r.active {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	out := make([]ClientStatus, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// Stale returns the clients silent since before cutoff.
func (r *Registry) Stale(cutoff time.Time) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []*Client
	for _, c := range r.active {
		if c.LastSeen().Before(cutoff) {
			stale = append(stale, c)
		}
	}
	return stale
}

// CloseAll closes every connection, e.g. on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := r.active
	r.active = make(map[string]*Client)
	r.mu.Unlock()

	for id, c := range clients {
		c.Close("server shutting down")
		slog.Info("Browser connection closed", "client_id", id)
	}
}
