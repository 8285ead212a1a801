// Package importer bulk-loads workout session exports into a store.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/google/uuid"
)

// Store is the insert surface the importer needs.
type Store interface {
	InsertSession(ctx context.Context, s models.WorkoutSession) (bool, error)
}

// Export is the on-disk shape of a session export file.
type Export struct {
	Sessions []models.WorkoutSession `json:"sessions"`
}

// Stats summarizes one import run.
type Stats struct {
	SessionsRead     int
	SessionsInserted int
	Duplicates       int
	Invalid          int
}

// Importer reads a JSON export and inserts its sessions.
type Importer struct {
	store  Store
	log    *slog.Logger
	dryRun bool
}

// New creates an Importer. With dryRun set, nothing is written.
func New(store Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// Import loads the export file at path. Invalid records (missing start
// time, end before start) are counted and skipped, not fatal — bad data
// entry upstream should not block the rest of the file.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	stats := &Stats{}

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("reading export file: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return stats, fmt.Errorf("parsing export file: %w", err)
	}

	stats.SessionsRead = len(export.Sessions)

	for _, session := range export.Sessions {
		if session.StartTime.IsZero() {
			imp.log.Warn("skipping session without start time", "routine", session.RoutineName)
			stats.Invalid++
			continue
		}
		if session.EndTime != nil && session.EndTime.Before(session.StartTime) {
			imp.log.Warn("skipping session with end before start",
				"routine", session.RoutineName, "start", session.StartTime)
			stats.Invalid++
			continue
		}
		if session.ID == uuid.Nil {
			session.ID = uuid.New()
		}
		if session.UserID == 0 {
			session.UserID = 1
		}

		if imp.dryRun {
			stats.SessionsInserted++
			continue
		}

		inserted, err := imp.store.InsertSession(ctx, session)
		if err != nil {
			return stats, fmt.Errorf("inserting session %s: %w", session.ID, err)
		}
		if inserted {
			stats.SessionsInserted++
		} else {
			stats.Duplicates++
		}
	}

	return stats, nil
}
