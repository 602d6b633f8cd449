package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ashureev/tabtime/internal/identity"
	"github.com/ashureev/tabtime/internal/middleware"
	"github.com/ashureev/tabtime/internal/tracker"
	"github.com/coder/websocket"
)

const (
	readLimit    = 1 << 20
	writeTimeout = 5 * time.Second
)

// Options configures the WebSocket handler.
type Options struct {
	AllowedOrigins   []string
	HostQueryTimeout time.Duration
	EventQueueSize   int
	Clock            tracker.Clock
}

// WebSocketHandler accepts browser extension connections and runs a tracker
// for each one.
type WebSocketHandler struct {
	recorder tracker.Recorder
	registry *Registry
	opts     Options
	sessions sync.WaitGroup
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(recorder tracker.Recorder, registry *Registry, opts Options) *WebSocketHandler {
	if opts.HostQueryTimeout <= 0 {
		opts.HostQueryTimeout = 5 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = tracker.SystemClock{}
	}
	return &WebSocketHandler{
		recorder: recorder,
		registry: registry,
		opts:     opts,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := identity.ClientIDFromContext(r.Context())
	slog.Info("WebSocket connection request", "client_id", clientID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "client_id", clientID)
		return
	}
	h.sessions.Add(1)
	defer h.sessions.Done()
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "client_id", clientID)
		}
	}()
	ws.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger := slog.Default().With("client_id", clientID)
	host := NewHost(func(ctx context.Context, data []byte) error {
		return ws.Write(ctx, websocket.MessageText, data)
	}, h.opts.HostQueryTimeout)
	defer host.Close()

	t := tracker.New(h.recorder, host, h.opts.Clock, logger)
	// Queued events must still be persisted after the socket closes.
	dispatcher := tracker.NewDispatcher(context.WithoutCancel(ctx), t, h.opts.EventQueueSize, logger)

	client := &Client{
		ID:          clientID,
		ConnectedAt: time.Now(),
		conn:        ws,
		host:        host,
		dispatcher:  dispatcher,
		cancel:      cancel,
	}
	client.Touch(client.ConnectedAt)

	h.registry.Register(client)
	defer h.registry.Unregister(client)

	h.readLoop(ctx, ws, client)

	// Fail in-flight queries first so the flush does not wait on them.
	host.Close()
	dispatcher.Close()
	slog.Info("Browser session ended", "client_id", clientID)
}

// Wait blocks until every connection being served has flushed its
// in-progress session, or ctx is done.
func (h *WebSocketHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || middleware.OriginAllowed(h.opts.AllowedOrigins, origin) {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.opts.AllowedOrigins)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, client *Client) {
	slog.Debug("Starting read loop", "client_id", client.ID)
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			switch {
			case websocket.CloseStatus(err) != -1:
				slog.Debug("WebSocket closed by client", "client_id", client.ID)
			case errors.Is(err, context.Canceled):
				slog.Debug("WebSocket read cancelled", "client_id", client.ID)
			default:
				slog.Warn("WebSocket read error", "error", err, "client_id", client.ID)
			}
			return
		}
		client.Touch(time.Now())

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Warn("Dropping undecodable message", "error", err, "client_id", client.ID)
			h.writeJSON(ctx, ws, errorMessage{Type: TypeError, Error: "invalid json"})
			continue
		}

		switch msg.Type {
		case TypeReply:
			if !client.host.Resolve(msg) {
				slog.Debug("Reply without pending query", "id", msg.ID, "client_id", client.ID)
			}
		case TypePing:
			h.writeJSON(ctx, ws, map[string]string{"type": TypePong})
		default:
			ev, err := msg.event()
			if err != nil {
				slog.Warn("Rejected message", "error", err, "client_id", client.ID)
				h.writeJSON(ctx, ws, errorMessage{Type: TypeError, Error: err.Error()})
				continue
			}
			if err := client.dispatcher.Submit(ctx, ev); err != nil {
				slog.Debug("Event not queued", "error", err, "event", ev.String(), "client_id", client.ID)
				return
			}
		}
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode message", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err)
	}
}
