package ingest

import (
	"context"
	"log/slog"
	"time"
)

const defaultSweepInterval = time.Minute

// StartSweeper runs a background goroutine that periodically closes
// browser connections silent for longer than ttl, so a half-open socket
// cannot keep a session running forever.
func StartSweeper(ctx context.Context, registry *Registry, ttl, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Stale client sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case now := <-ticker.C:
				sweepStaleClients(registry, ttl, now)
			case <-ctx.Done():
				slog.Info("Stale client sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepStaleClients(registry *Registry, ttl time.Duration, now time.Time) int {
	stale := registry.Stale(now.Add(-ttl))
	if len(stale) == 0 {
		return 0
	}

	slog.Info("Sweeper found stale clients", "count", len(stale))
	for _, c := range stale {
		slog.Info("Closing stale client",
			"client_id", c.ID,
			"last_seen", c.LastSeen(),
			"idle_for", now.Sub(c.LastSeen()).Round(time.Second))
		registry.Unregister(c)
		c.Close("idle timeout")
	}
	return len(stale)
}
