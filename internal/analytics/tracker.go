package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
)

// SessionSource is the slice of the session store the tracker needs: a
// snapshot of the current list plus change notifications.
type SessionSource interface {
	CurrentSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error)
	OnSessionsChanged(fn func())
}

// Snapshot is one immutable recomputation result. Consumers read whole
// snapshots; there is no incremental update path.
type Snapshot struct {
	Sessions   []models.WorkoutSession `json:"-"`
	Metrics    models.ProgressMetrics  `json:"metrics"`
	Weekly     []models.WeeklyProgress `json:"weekly"`
	ComputedAt time.Time               `json:"computed_at"`
}

// Tracker bridges session store change notifications to the aggregator.
// Every observed change triggers a synchronous full recompute over the
// entire session list; the latest result wins if recomputes overlap.
// Metrics live in memory only and are rebuilt from the store on start.
type Tracker struct {
	source SessionSource
	userID int
	log    *slog.Logger
	now    func() time.Time

	gen atomic.Uint64

	mu      sync.RWMutex
	applied uint64
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker over the given source for one user.
func NewTracker(source SessionSource, userID int, log *slog.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		source: source,
		userID: userID,
		log:    log,
		now:    time.Now,
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start registers for store change notifications and runs the initial
// computation.
func (t *Tracker) Start(ctx context.Context) error {
	t.source.OnSessionsChanged(func() {
		if err := t.Refresh(context.Background()); err != nil {
			t.log.Error("metrics recompute failed", "error", err)
		}
	})
	return t.Refresh(ctx)
}

// Refresh fetches the current session snapshot, recomputes all metrics,
// and publishes the result to subscribers. If a newer refresh published
// while this one was fetching, its result is kept and this one dropped
// (last write wins; a dropped recompute has no side effects).
func (t *Tracker) Refresh(ctx context.Context) error {
	gen := t.gen.Add(1)

	sessions, err := t.source.CurrentSessions(ctx, t.userID)
	if err != nil {
		return fmt.Errorf("fetching sessions: %w", err)
	}

	now := t.now()
	snap := Snapshot{
		Sessions:   sessions,
		Metrics:    ComputeMetrics(sessions, now),
		Weekly:     WeeklySeries(sessions, now),
		ComputedAt: now,
	}

	t.mu.Lock()
	if gen <= t.applied {
		t.mu.Unlock()
		return nil
	}
	t.applied = gen
	t.snap = snap
	subs := make([]func(Snapshot), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	// Deliver outside the lock so subscribers may read the tracker.
	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// Snapshot returns the most recently published computation result.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// Metrics returns the current aggregate counters.
func (t *Tracker) Metrics() models.ProgressMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Metrics
}

// Subscribe registers a callback for future snapshot publishes and
// returns a cancel function. Delivery is synchronous with the recompute
// that produced the snapshot.
func (t *Tracker) Subscribe(fn func(Snapshot)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}
