// Package analytics records what happens in cancellation sessions and
// summarises it. Delivery is best effort: the flow never waits on, or fails
// because of, a tracker.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cancelflow/internal/logging"
	"github.com/aretw0/cancelflow/pkg/domain"
)

// Tracker is an append-only event log.
type Tracker interface {
	Track(ctx context.Context, e domain.Event) error
	Events(ctx context.Context) ([]domain.Event, error)
}

// MemoryTracker keeps events in memory, up to an optional cap.
type MemoryTracker struct {
	mu     sync.Mutex
	events []domain.Event
	limit  int
}

// NewMemoryTracker creates a tracker. A limit <= 0 keeps everything;
// otherwise the oldest events are dropped first.
func NewMemoryTracker(limit int) *MemoryTracker {
	return &MemoryTracker{limit: limit}
}

// Track appends e.
func (t *MemoryTracker) Track(ctx context.Context, e domain.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
	if t.limit > 0 && len(t.events) > t.limit {
		t.events = append([]domain.Event(nil), t.events[len(t.events)-t.limit:]...)
	}
	return nil
}

// Events returns a copy of the recorded events, oldest first.
func (t *MemoryTracker) Events(ctx context.Context) ([]domain.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Event(nil), t.events...), nil
}

// Clear drops every event.
func (t *MemoryTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}

// Hooks adapts a tracker to lifecycle hooks. Append failures are logged and dropped.
func Hooks(tracker Tracker, logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	track := func(ctx context.Context, e *domain.Event) {
		ev := *e
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now()
		}
		if err := tracker.Track(ctx, ev); err != nil {
			logger.Warn("failed to track event", "type", ev.Type, "step", ev.StepID, "err", err)
		}
	}
	return domain.LifecycleHooks{
		OnStepView: track,
		OnSelect:   track,
		OnComplete: track,
		OnReset:    track,
	}
}
