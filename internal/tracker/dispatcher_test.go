package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/ashureev/tabtime/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_HandlesEventsInOrder(t *testing.T) {
	tr, _, _, host := newTestTracker()
	host.addTab(domain.Tab{ID: 1, WindowID: 1, URL: "https://a.com", Active: true})
	host.focused = domain.Window{ID: 1, Focused: true, Tabs: []domain.Tab{{ID: 1, URL: "https://a.com", Active: true}}}

	d := NewDispatcher(context.Background(), tr, 4, nil)
	ctx := context.Background()
	require.NoError(t, d.Submit(ctx, TabActivated(1)))
	require.NoError(t, d.Submit(ctx, WindowFocusChanged(1)))
	require.NoError(t, d.Submit(ctx, IdleStateChanged(domain.IdleStateActive)))
	d.Close()

	assert.Equal(t, []string{"tabs.get", "tabs.query", "windows.getLastFocused"}, host.calls)
}

func TestDispatcher_CloseFlushesOpenSession(t *testing.T) {
	tr, clock, rec, host := newTestTracker()
	host.addTab(domain.Tab{ID: 1, WindowID: 1, URL: "https://a.com"})

	d := NewDispatcher(context.Background(), tr, 0, nil)
	require.NoError(t, d.Submit(context.Background(), TabActivated(1)))

	require.Eventually(t, func() bool {
		_, ok := tr.Snapshot()
		return ok
	}, time.Second, 5*time.Millisecond)

	clock.Advance(30 * time.Second)
	d.Close()

	records := rec.all()
	require.Len(t, records, 1)
	assert.Equal(t, "a.com", records[0].Domain)
	assert.Equal(t, int64(30_000), records[0].End-records[0].Start)
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	tr, _, _, _ := newTestTracker()
	d := NewDispatcher(context.Background(), tr, 1, nil)
	d.Close()
	d.Close()

	err := d.Submit(context.Background(), TabActivated(1))
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestDispatcher_CancelledParentStillFlushes(t *testing.T) {
	tr, clock, rec, _ := newTestTracker()
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDispatcher(ctx, tr, 1, nil)
	tr.Start(3, "https://a.com")
	clock.Advance(2 * time.Second)
	cancel()
	d.Close()

	assert.Len(t, rec.all(), 1)
}

func TestDispatcher_Queue(t *testing.T) {
	tr, _, _, _ := newTestTracker()
	d := NewDispatcher(context.Background(), tr, 8, nil)
	defer d.Close()

	assert.Equal(t, 8, d.QueueCap())
	assert.Zero(t, d.QueueLen())
	assert.Same(t, tr, d.Tracker())
}
