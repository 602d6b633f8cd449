package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrDispatcherClosed is returned by Submit after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

const (
	defaultQueueSize = 64
	flushTimeout     = 5 * time.Second
)

// Dispatcher feeds events to a Tracker one at a time from a single worker
// goroutine, so handlers never overlap. Events are never dropped: Submit
// blocks while the queue is full.
type Dispatcher struct {
	tracker *Tracker
	events  chan Event
	ctx     context.Context
	done    chan struct{}
	logger  *slog.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewDispatcher starts a worker delivering events to t. Handlers run with
// ctx; cancelling it does not stop the worker, only Close does.
func NewDispatcher(ctx context.Context, t *Tracker, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		tracker: t,
		events:  make(chan Event, queueSize),
		ctx:     ctx,
		done:    make(chan struct{}),
		logger:  logger,
	}
	go d.run()
	return d
}

// Tracker returns the tracker the dispatcher drives.
func (d *Dispatcher) Tracker() *Tracker {
	return d.tracker
}

// Submit queues ev for handling.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for ev := range d.events {
		start := time.Now()
		if err := d.tracker.Handle(d.ctx, ev); err != nil {
			d.logger.Warn("event handling failed", "event", ev.String(), "error", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			d.logger.Warn("slow event handling", "event", ev.String(), "duration_ms", elapsed.Milliseconds())
		}
	}

	// Persist whatever was in progress when the source went away.
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), flushTimeout)
	defer cancel()
	if err := d.tracker.Stop(flushCtx); err != nil {
		d.logger.Error("final session flush failed", "error", err)
	}
}

// Close stops accepting events, waits for the queued ones to be handled and
// closes the in-progress session. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.events)
		d.mu.Unlock()
	})
	<-d.done
}

// QueueLen returns the number of events waiting to be handled.
func (d *Dispatcher) QueueLen() int {
	return len(d.events)
}

// QueueCap returns the queue capacity.
func (d *Dispatcher) QueueCap() int {
	return cap(d.events)
}
