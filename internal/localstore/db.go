// Package localstore is a single-file SQLite session store for running
// without Postgres. It implements the same repository surface as the
// storage package.
package localstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database holding sessions and profiles. Session
// mutations fire the callbacks registered with OnSessionsChanged.
type DB struct {
	db *sql.DB

	mu       sync.Mutex
	onChange []func()
}

// Open opens (or creates) the SQLite database at the given path and
// ensures the schema exists.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id           TEXT PRIMARY KEY,
			user_id      INTEGER NOT NULL,
			routine_name TEXT NOT NULL,
			start_time   INTEGER NOT NULL,
			end_time     INTEGER,
			is_completed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON sessions (user_id, start_time)`,
		`CREATE TABLE IF NOT EXISTS session_exercises (
			session_id TEXT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			name       TEXT NOT NULL,
			PRIMARY KEY (session_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS session_sets (
			session_id        TEXT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
			exercise_position INTEGER NOT NULL,
			set_number        INTEGER NOT NULL,
			weight            REAL NOT NULL DEFAULT 0,
			reps              INTEGER NOT NULL DEFAULT 0,
			is_completed      INTEGER NOT NULL DEFAULT 0,
			notes             TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (session_id, exercise_position, set_number)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id             INTEGER PRIMARY KEY,
			total_workouts      INTEGER NOT NULL DEFAULT 0,
			total_weight_lifted REAL NOT NULL DEFAULT 0,
			last_workout_date   INTEGER,
			updated_at          INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (s *DB) Close() error {
	return s.db.Close()
}

// OnSessionsChanged registers a callback invoked after every session
// mutation (insert, complete, delete).
func (s *DB) OnSessionsChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *DB) notifySessionsChanged() {
	s.mu.Lock()
	callbacks := make([]func(), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
