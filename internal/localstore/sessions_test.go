package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/colinchu27/lyft-up-sub000/internal/storage"
	"github.com/google/uuid"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSession(start time.Time) models.WorkoutSession {
	end := start.Add(time.Hour)
	return models.WorkoutSession{
		ID:          uuid.New(),
		UserID:      1,
		RoutineName: "Push Day",
		StartTime:   start,
		EndTime:     &end,
		IsCompleted: true,
		Exercises: []models.SessionExercise{
			{
				Name: "Bench Press",
				Sets: []models.WorkoutSet{
					{SetNumber: 1, Weight: 100, Reps: 8, IsCompleted: true},
					{SetNumber: 2, Weight: 110, Reps: 5, IsCompleted: true, Notes: "felt heavy"},
				},
			},
			{
				Name: "Overhead Press",
				Sets: []models.WorkoutSet{
					{SetNumber: 1, Weight: 60, Reps: 10, IsCompleted: true},
				},
			},
		},
	}
}

// TestInsertAndGetRoundTrip verifies a full session survives storage,
// exercises and sets in order.
func TestInsertAndGetRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	want := sampleSession(time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC))

	inserted, err := db.InsertSession(ctx, want)
	if err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	if !inserted {
		t.Fatal("InsertSession reported inserted=false for a fresh ID")
	}

	got, err := db.GetSession(ctx, want.ID, 1)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.ID != want.ID || got.RoutineName != want.RoutineName || !got.IsCompleted {
		t.Errorf("session = %+v, want %+v", got, want)
	}
	if !got.StartTime.Equal(want.StartTime) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, want.StartTime)
	}
	if got.EndTime == nil || !got.EndTime.Equal(*want.EndTime) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, want.EndTime)
	}
	if !reflect.DeepEqual(got.Exercises, want.Exercises) {
		t.Errorf("exercises:\ngot  %+v\nwant %+v", got.Exercises, want.Exercises)
	}
}

// TestInsertDuplicate verifies the second insert of the same ID is a
// no-op reporting inserted=false.
func TestInsertDuplicate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := sampleSession(time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC))

	if _, err := db.InsertSession(ctx, s); err != nil {
		t.Fatal(err)
	}
	inserted, err := db.InsertSession(ctx, s)
	if err != nil {
		t.Fatalf("duplicate InsertSession: %v", err)
	}
	if inserted {
		t.Error("duplicate insert reported inserted=true")
	}

	sessions, err := db.CurrentSessions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Errorf("CurrentSessions = %d rows, want 1", len(sessions))
	}
}

// TestQuerySessionsWindow verifies the [start, end) range filter and
// ascending order.
func TestQuerySessionsWindow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for d := 0; d < 5; d++ {
		s := sampleSession(base.AddDate(0, 0, d))
		ids = append(ids, s.ID)
		if _, err := db.InsertSession(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.QuerySessions(ctx, base.AddDate(0, 0, 1), base.AddDate(0, 0, 4), 1)
	if err != nil {
		t.Fatalf("QuerySessions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (end exclusive)", len(got))
	}
	for i, s := range got {
		if s.ID != ids[i+1] {
			t.Errorf("row %d = %v, want %v (ascending by start)", i, s.ID, ids[i+1])
		}
	}
}

// TestCompleteSession verifies the completion update and the not-found
// case.
func TestCompleteSession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC)
	open := models.WorkoutSession{
		ID:          uuid.New(),
		UserID:      1,
		RoutineName: "Legs",
		StartTime:   start,
	}
	if _, err := db.InsertSession(ctx, open); err != nil {
		t.Fatal(err)
	}

	endTime := start.Add(50 * time.Minute)
	if err := db.CompleteSession(ctx, open.ID, endTime, 1); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	got, err := db.GetSession(ctx, open.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCompleted {
		t.Error("session not marked completed")
	}
	if got.EndTime == nil || !got.EndTime.Equal(endTime) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, endTime)
	}

	err = db.CompleteSession(ctx, uuid.New(), endTime, 1)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown ID: err = %v, want ErrNotFound", err)
	}

	err = db.CompleteSession(ctx, open.ID, endTime, 99)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("wrong user: err = %v, want ErrNotFound", err)
	}
}

// TestDeleteSessionCascades verifies the delete removes child rows and
// subsequent lookups fail with ErrNotFound.
func TestDeleteSessionCascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := sampleSession(time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC))

	if _, err := db.InsertSession(ctx, s); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteSession(ctx, s.ID, 1); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	if _, err := db.GetSession(ctx, s.ID, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetSession after delete: err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteSession(ctx, s.ID, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}

	var count int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM session_sets WHERE session_id = ?`, s.ID.String()).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("orphaned set rows = %d, want 0", count)
	}
}

// TestOnSessionsChanged verifies mutations notify and reads do not.
func TestOnSessionsChanged(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var notified int
	db.OnSessionsChanged(func() { notified++ })

	s := sampleSession(time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC))
	if _, err := db.InsertSession(ctx, s); err != nil {
		t.Fatal(err)
	}
	if notified != 1 {
		t.Errorf("notifications after insert = %d, want 1", notified)
	}

	if _, err := db.CurrentSessions(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if notified != 1 {
		t.Errorf("read notified: count = %d, want still 1", notified)
	}

	if err := db.CompleteSession(ctx, s.ID, s.StartTime.Add(time.Hour), 1); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteSession(ctx, s.ID, 1); err != nil {
		t.Fatal(err)
	}
	if notified != 3 {
		t.Errorf("notifications after complete+delete = %d, want 3", notified)
	}

	// Failed mutations stay silent.
	db.DeleteSession(ctx, uuid.New(), 1)
	if notified != 3 {
		t.Errorf("failed delete notified: count = %d, want still 3", notified)
	}
}

// TestProfileUpsert verifies save, overwrite, and the not-found read.
func TestProfileUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.GetProfile(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetProfile before save: err = %v, want ErrNotFound", err)
	}

	last := time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC)
	p := models.Profile{
		UserID:            1,
		TotalWorkouts:     12,
		TotalWeightLifted: 54321.5,
		LastWorkoutDate:   &last,
		UpdatedAt:         time.Date(2025, 3, 19, 15, 0, 0, 0, time.UTC),
	}
	if err := db.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := db.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.TotalWorkouts != 12 || got.TotalWeightLifted != 54321.5 {
		t.Errorf("profile = %+v, want %+v", got, p)
	}
	if got.LastWorkoutDate == nil || !got.LastWorkoutDate.Equal(last) {
		t.Errorf("LastWorkoutDate = %v, want %v", got.LastWorkoutDate, last)
	}

	p.TotalWorkouts = 13
	if err := db.SaveProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetProfile(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalWorkouts != 13 {
		t.Errorf("TotalWorkouts after upsert = %d, want 13", got.TotalWorkouts)
	}
}
