package importer

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/google/uuid"
)

// recordingStore remembers what was inserted and can simulate duplicates.
type recordingStore struct {
	inserted []models.WorkoutSession
	seen     map[uuid.UUID]bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{seen: make(map[uuid.UUID]bool)}
}

func (r *recordingStore) InsertSession(ctx context.Context, s models.WorkoutSession) (bool, error) {
	if r.seen[s.ID] {
		return false, nil
	}
	r.seen[s.ID] = true
	r.inserted = append(r.inserted, s)
	return true, nil
}

func writeExport(t *testing.T, export Export) string {
	t.Helper()
	data, err := json.Marshal(export)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func session(start time.Time) models.WorkoutSession {
	end := start.Add(time.Hour)
	return models.WorkoutSession{
		ID:          uuid.New(),
		UserID:      1,
		RoutineName: "Push Day",
		StartTime:   start,
		EndTime:     &end,
		IsCompleted: true,
	}
}

// TestImport verifies counting of inserted, duplicate, and invalid
// records, and that invalid rows are skipped rather than fatal.
func TestImport(t *testing.T) {
	now := time.Date(2025, 3, 19, 15, 0, 0, 0, time.UTC)
	good := session(now.AddDate(0, 0, -1))
	dup := session(now.AddDate(0, 0, -2))

	badEnd := session(now.AddDate(0, 0, -3))
	earlier := badEnd.StartTime.Add(-time.Hour)
	badEnd.EndTime = &earlier

	noStart := models.WorkoutSession{ID: uuid.New(), RoutineName: "Mystery"}

	store := newRecordingStore()
	imp := New(store, slog.Default(), false)

	stats, err := imp.Import(context.Background(), writeExport(t, Export{
		Sessions: []models.WorkoutSession{good, dup, dup, badEnd, noStart},
	}))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if stats.SessionsRead != 5 {
		t.Errorf("SessionsRead = %d, want 5", stats.SessionsRead)
	}
	if stats.SessionsInserted != 2 {
		t.Errorf("SessionsInserted = %d, want 2", stats.SessionsInserted)
	}
	if stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", stats.Duplicates)
	}
	if stats.Invalid != 2 {
		t.Errorf("Invalid = %d, want 2", stats.Invalid)
	}
	if len(store.inserted) != 2 {
		t.Errorf("store holds %d sessions, want 2", len(store.inserted))
	}
}

// TestImportFillsDefaults verifies missing IDs and user IDs are assigned
// before insert.
func TestImportFillsDefaults(t *testing.T) {
	s := session(time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC))
	s.ID = uuid.Nil
	s.UserID = 0

	store := newRecordingStore()
	imp := New(store, slog.Default(), false)

	stats, err := imp.Import(context.Background(), writeExport(t, Export{Sessions: []models.WorkoutSession{s}}))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsInserted != 1 {
		t.Fatalf("SessionsInserted = %d, want 1", stats.SessionsInserted)
	}
	got := store.inserted[0]
	if got.ID == uuid.Nil {
		t.Error("ID was not assigned")
	}
	if got.UserID != 1 {
		t.Errorf("UserID = %d, want default 1", got.UserID)
	}
}

// TestImportDryRun verifies dry-run counts but never touches the store.
func TestImportDryRun(t *testing.T) {
	store := newRecordingStore()
	imp := New(store, slog.Default(), true)

	stats, err := imp.Import(context.Background(), writeExport(t, Export{
		Sessions: []models.WorkoutSession{
			session(time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC)),
			session(time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)),
		},
	}))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsInserted != 2 {
		t.Errorf("SessionsInserted = %d, want 2", stats.SessionsInserted)
	}
	if len(store.inserted) != 0 {
		t.Errorf("dry run wrote %d sessions to the store", len(store.inserted))
	}
}

// TestImportMissingFile verifies a readable error for a bad path.
func TestImportMissingFile(t *testing.T) {
	imp := New(newRecordingStore(), slog.Default(), false)
	if _, err := imp.Import(context.Background(), "/nonexistent/export.json"); err == nil {
		t.Fatal("Import of missing file succeeded")
	}
}

// TestImportMalformedJSON verifies parse failures are reported, not
// swallowed.
func TestImportMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	imp := New(newRecordingStore(), slog.Default(), false)
	if _, err := imp.Import(context.Background(), path); err == nil {
		t.Fatal("Import of malformed JSON succeeded")
	}
}
