package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashureev/tabtime/internal/domain"
	"github.com/ashureev/tabtime/internal/tracker"
)

var (
	// ErrHostClosed is returned for queries pending or issued after the
	// browser connection went away.
	ErrHostClosed = errors.New("browser connection closed")
	// ErrHostQuery is returned when the browser answered with an error.
	ErrHostQuery = errors.New("browser query failed")
)

// SendFunc writes one text frame to the browser.
type SendFunc func(ctx context.Context, data []byte) error

// Host implements tracker.Host by sending queries to the extension and
// waiting for the matching reply.
type Host struct {
	send    SendFunc
	timeout time.Duration
	nextID  atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan inboundMessage
	closed  bool
	done    chan struct{}
}

// NewHost creates a host that gives each query up to timeout for a reply.
func NewHost(send SendFunc, timeout time.Duration) *Host {
	return &Host{
		send:    send,
		timeout: timeout,
		pending: make(map[uint64]chan inboundMessage),
		done:    make(chan struct{}),
	}
}

// GetTab implements tracker.Host.
func (h *Host) GetTab(ctx context.Context, tabID int) (domain.Tab, error) {
	reply, err := h.call(ctx, queryMessage{Op: OpGetTab, TabID: &tabID})
	if err != nil {
		return domain.Tab{}, err
	}
	if reply.Tab == nil {
		return domain.Tab{}, fmt.Errorf("%w: %s returned no tab", ErrHostQuery, OpGetTab)
	}
	return *reply.Tab, nil
}

// QueryActiveTab implements tracker.Host.
func (h *Host) QueryActiveTab(ctx context.Context, windowID int) (domain.Tab, bool, error) {
	reply, err := h.call(ctx, queryMessage{Op: OpQueryTabs, WindowID: &windowID, Active: true})
	if err != nil {
		return domain.Tab{}, false, err
	}
	if len(reply.Tabs) == 0 {
		return domain.Tab{}, false, nil
	}
	return reply.Tabs[0], true, nil
}

// GetLastFocusedWindow implements tracker.Host. A reply without a window
// yields an unfocused zero window.
func (h *Host) GetLastFocusedWindow(ctx context.Context) (domain.Window, error) {
	reply, err := h.call(ctx, queryMessage{Op: OpGetLastFocusedWindow, Populate: true})
	if err != nil {
		return domain.Window{}, err
	}
	if reply.Window == nil {
		return domain.Window{}, nil
	}
	return *reply.Window, nil
}

func (h *Host) call(ctx context.Context, q queryMessage) (inboundMessage, error) {
	q.Type = TypeQuery
	q.ID = h.nextID.Add(1)
	ch := make(chan inboundMessage, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return inboundMessage{}, ErrHostClosed
	}
	h.pending[q.ID] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.pending, q.ID)
		h.mu.Unlock()
	}()

	data, err := json.Marshal(q)
	if err != nil {
		return inboundMessage{}, fmt.Errorf("encode %s query: %w", q.Op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.send(ctx, data); err != nil {
		return inboundMessage{}, fmt.Errorf("send %s query: %w", q.Op, err)
	}

	select {
	case reply := <-ch:
		if reply.Error != "" {
			return inboundMessage{}, fmt.Errorf("%w: %s: %s", ErrHostQuery, q.Op, reply.Error)
		}
		return reply, nil
	case <-h.done:
		return inboundMessage{}, ErrHostClosed
	case <-ctx.Done():
		return inboundMessage{}, fmt.Errorf("%s query: %w", q.Op, ctx.Err())
	}
}

// Resolve delivers a reply to the query waiting for it. It reports false
// for replies nobody is waiting for (late or unknown ids).
func (h *Host) Resolve(reply inboundMessage) bool {
	h.mu.Lock()
	ch, ok := h.pending[reply.ID]
	if ok {
		delete(h.pending, reply.ID)
	}
	h.mu.Unlock()
	if !ok {
		return false
	}
	ch <- reply
	return true
}

// Close fails all pending and future queries with ErrHostClosed.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

var _ tracker.Host = (*Host)(nil)
