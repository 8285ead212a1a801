package analytics

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
)

// fakeSource is an in-memory SessionSource with injectable failures.
type fakeSource struct {
	sessions  []models.WorkoutSession
	err       error
	callbacks []func()
	fetches   int
}

func (f *fakeSource) CurrentSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions, nil
}

func (f *fakeSource) OnSessionsChanged(fn func()) {
	f.callbacks = append(f.callbacks, fn)
}

func (f *fakeSource) notify() {
	for _, fn := range f.callbacks {
		fn()
	}
}

func testTracker(src *fakeSource) *Tracker {
	return NewTracker(src, 1, slog.Default(), WithClock(func() time.Time { return testNow }))
}

// TestTrackerStart verifies Start runs the initial computation and
// registers for change notifications.
func TestTrackerStart(t *testing.T) {
	src := &fakeSource{sessions: []models.WorkoutSession{
		completedAt(testNow.Add(-2*time.Hour), time.Hour,
			models.SessionExercise{Name: "Squat", Sets: sets([2]float64{100, 5})}),
	}}
	tr := testTracker(src)

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(src.callbacks) != 1 {
		t.Fatalf("registered callbacks = %d, want 1", len(src.callbacks))
	}

	m := tr.Metrics()
	if m.TotalWorkouts != 1 || m.VolumeThisWeek != 500 {
		t.Errorf("initial metrics = %+v, want 1 workout / 500 volume", m)
	}
	if !tr.Snapshot().ComputedAt.Equal(testNow) {
		t.Errorf("ComputedAt = %v, want %v", tr.Snapshot().ComputedAt, testNow)
	}
}

// TestTrackerRecomputesOnChange verifies a store change notification
// triggers a synchronous full recompute.
func TestTrackerRecomputesOnChange(t *testing.T) {
	src := &fakeSource{}
	tr := testTracker(src)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tr.Metrics().TotalWorkouts != 0 {
		t.Fatalf("TotalWorkouts before change = %d, want 0", tr.Metrics().TotalWorkouts)
	}

	src.sessions = []models.WorkoutSession{
		completedAt(testNow.Add(-time.Hour), time.Hour),
	}
	src.notify()

	if tr.Metrics().TotalWorkouts != 1 {
		t.Errorf("TotalWorkouts after change = %d, want 1", tr.Metrics().TotalWorkouts)
	}
	if src.fetches != 2 {
		t.Errorf("fetches = %d, want 2 (start + change)", src.fetches)
	}
}

// TestTrackerSubscribe verifies snapshot delivery to subscribers and that
// cancel stops further delivery.
func TestTrackerSubscribe(t *testing.T) {
	src := &fakeSource{}
	tr := testTracker(src)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var got []Snapshot
	cancel := tr.Subscribe(func(s Snapshot) { got = append(got, s) })

	src.sessions = []models.WorkoutSession{completedAt(testNow.Add(-time.Hour), time.Hour)}
	src.notify()
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}
	if got[0].Metrics.TotalWorkouts != 1 {
		t.Errorf("delivered snapshot workouts = %d, want 1", got[0].Metrics.TotalWorkouts)
	}

	cancel()
	src.notify()
	if len(got) != 1 {
		t.Errorf("deliveries after cancel = %d, want still 1", len(got))
	}
}

// TestTrackerFetchErrorKeepsSnapshot verifies a failed refresh surfaces
// the error and leaves the previous snapshot in place.
func TestTrackerFetchErrorKeepsSnapshot(t *testing.T) {
	src := &fakeSource{sessions: []models.WorkoutSession{
		completedAt(testNow.Add(-time.Hour), time.Hour),
	}}
	tr := testTracker(src)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	src.err = errors.New("connection reset")
	if err := tr.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh with failing source returned nil error")
	}

	if tr.Metrics().TotalWorkouts != 1 {
		t.Errorf("TotalWorkouts after failed refresh = %d, want previous value 1", tr.Metrics().TotalWorkouts)
	}
}

// TestTrackerStartFetchError verifies Start propagates an initial fetch
// failure.
func TestTrackerStartFetchError(t *testing.T) {
	src := &fakeSource{err: errors.New("no such table")}
	tr := testTracker(src)
	if err := tr.Start(context.Background()); err == nil {
		t.Fatal("Start with failing source returned nil error")
	}
}
