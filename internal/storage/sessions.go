package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertSession inserts a session with its exercises and sets in one
// transaction. Returns true if inserted, false if the session ID already
// exists (idempotent re-ingest).
func (db *DB) InsertSession(ctx context.Context, s models.WorkoutSession) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, routine_name, start_time, end_time, is_completed)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT DO NOTHING`,
		s.ID, s.UserID, s.RoutineName, s.StartTime, s.EndTime, s.IsCompleted)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := insertExercises(ctx, tx, s); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing session insert: %w", err)
	}

	db.notifySessionsChanged()
	return true, nil
}

func insertExercises(ctx context.Context, tx pgx.Tx, s models.WorkoutSession) error {
	if len(s.Exercises) == 0 {
		return nil
	}

	query := `INSERT INTO session_exercises (session_id, position, name) VALUES `
	args := make([]any, 0, len(s.Exercises)*3)
	valueStrings := make([]string, 0, len(s.Exercises))

	for i, ex := range s.Exercises {
		base := i * 3
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d)", base+1, base+2, base+3))
		args = append(args, s.ID, i, ex.Name)
	}

	if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
		return fmt.Errorf("inserting session exercises: %w", err)
	}

	return insertSets(ctx, tx, s)
}

func insertSets(ctx context.Context, tx pgx.Tx, s models.WorkoutSession) error {
	var total int
	for _, ex := range s.Exercises {
		total += len(ex.Sets)
	}
	if total == 0 {
		return nil
	}

	query := `INSERT INTO session_sets (session_id, exercise_position, set_number, weight, reps, is_completed, notes) VALUES `
	args := make([]any, 0, total*7)
	valueStrings := make([]string, 0, total)

	for pos, ex := range s.Exercises {
		for _, set := range ex.Sets {
			base := len(args)
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			))
			args = append(args, s.ID, pos, set.SetNumber, set.Weight, set.Reps, set.IsCompleted, set.Notes)
		}
	}

	if _, err := tx.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
		return fmt.Errorf("inserting session sets: %w", err)
	}
	return nil
}

// CompleteSession marks a session completed with the given end time.
func (db *DB) CompleteSession(ctx context.Context, id uuid.UUID, endTime time.Time, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET end_time = $1, is_completed = TRUE
		 WHERE id = $2 AND user_id = $3`,
		endTime, id, userID)
	if err != nil {
		return fmt.Errorf("completing session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	db.notifySessionsChanged()
	return nil
}

// DeleteSession removes a session and, via cascade, its exercises and sets.
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	db.notifySessionsChanged()
	return nil
}

// CurrentSessions returns every session for a user, ordered by start time.
func (db *DB) CurrentSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error) {
	return db.querySessions(ctx,
		`SELECT id, user_id, routine_name, start_time, end_time, is_completed
		 FROM sessions
		 WHERE user_id = $1
		 ORDER BY start_time ASC`, userID)
}

// QuerySessions retrieves sessions whose start time falls in [start, end).
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error) {
	return db.querySessions(ctx,
		`SELECT id, user_id, routine_name, start_time, end_time, is_completed
		 FROM sessions
		 WHERE start_time >= $1 AND start_time < $2 AND user_id = $3
		 ORDER BY start_time ASC`, start, end, userID)
}

// GetSession retrieves a single session with all exercises and sets.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID, userID int) (*models.WorkoutSession, error) {
	sessions, err := db.querySessions(ctx,
		`SELECT id, user_id, routine_name, start_time, end_time, is_completed
		 FROM sessions
		 WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}
	return &sessions[0], nil
}

func (db *DB) querySessions(ctx context.Context, query string, args ...any) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WorkoutSession
	for rows.Next() {
		var s models.WorkoutSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.RoutineName, &s.StartTime, &s.EndTime, &s.IsCompleted); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachExercises(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// attachExercises loads exercises and sets for the given sessions and
// assembles the nested structure in position order.
func (db *DB) attachExercises(ctx context.Context, sessions []models.WorkoutSession) error {
	if len(sessions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	type exerciseKey struct {
		session  uuid.UUID
		position int
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT session_id, exercise_position, set_number, weight, reps, is_completed, notes
		 FROM session_sets
		 WHERE session_id = ANY($1)
		 ORDER BY session_id, exercise_position, set_number`, ids)
	if err != nil {
		return fmt.Errorf("querying session sets: %w", err)
	}
	defer setRows.Close()

	setsByExercise := make(map[exerciseKey][]models.WorkoutSet)
	for setRows.Next() {
		var key exerciseKey
		var set models.WorkoutSet
		if err := setRows.Scan(&key.session, &key.position, &set.SetNumber, &set.Weight, &set.Reps, &set.IsCompleted, &set.Notes); err != nil {
			return fmt.Errorf("scanning session set: %w", err)
		}
		setsByExercise[key] = append(setsByExercise[key], set)
	}
	if err := setRows.Err(); err != nil {
		return err
	}

	exRows, err := db.Pool.Query(ctx,
		`SELECT session_id, position, name
		 FROM session_exercises
		 WHERE session_id = ANY($1)
		 ORDER BY session_id, position`, ids)
	if err != nil {
		return fmt.Errorf("querying session exercises: %w", err)
	}
	defer exRows.Close()

	bySession := make(map[uuid.UUID][]models.SessionExercise)
	for exRows.Next() {
		var key exerciseKey
		var name string
		if err := exRows.Scan(&key.session, &key.position, &name); err != nil {
			return fmt.Errorf("scanning session exercise: %w", err)
		}
		bySession[key.session] = append(bySession[key.session], models.SessionExercise{
			Name: name,
			Sets: setsByExercise[key],
		})
	}
	if err := exRows.Err(); err != nil {
		return err
	}

	for i := range sessions {
		sessions[i].Exercises = bySession[sessions[i].ID]
	}
	return nil
}
