package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/colinchu27/lyft-up-sub000/internal/storage"
	"github.com/google/uuid"
)

// Timestamps are stored as unix nanoseconds so range queries stay plain
// integer comparisons.

func encodeTime(t time.Time) int64 {
	return t.UnixNano()
}

func decodeTime(n int64) time.Time {
	return time.Unix(0, n)
}

// InsertSession inserts a session with its exercises and sets in one
// transaction. Returns true if inserted, false if the ID already exists.
func (s *DB) InsertSession(ctx context.Context, session models.WorkoutSession) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var endTime *int64
	if session.EndTime != nil {
		n := encodeTime(*session.EndTime)
		endTime = &n
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, user_id, routine_name, start_time, end_time, is_completed)
		 VALUES (?,?,?,?,?,?)`,
		session.ID.String(), session.UserID, session.RoutineName,
		encodeTime(session.StartTime), endTime, session.IsCompleted)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, nil
	}

	for pos, ex := range session.Exercises {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_exercises (session_id, position, name) VALUES (?,?,?)`,
			session.ID.String(), pos, ex.Name); err != nil {
			return false, fmt.Errorf("inserting session exercise: %w", err)
		}
		for _, set := range ex.Sets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_sets (session_id, exercise_position, set_number, weight, reps, is_completed, notes)
				 VALUES (?,?,?,?,?,?,?)`,
				session.ID.String(), pos, set.SetNumber, set.Weight, set.Reps, set.IsCompleted, set.Notes); err != nil {
				return false, fmt.Errorf("inserting session set: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing session insert: %w", err)
	}

	s.notifySessionsChanged()
	return true, nil
}

// CompleteSession marks a session completed with the given end time.
func (s *DB) CompleteSession(ctx context.Context, id uuid.UUID, endTime time.Time, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET end_time = ?, is_completed = 1
		 WHERE id = ? AND user_id = ?`,
		encodeTime(endTime), id.String(), userID)
	if err != nil {
		return fmt.Errorf("completing session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return storage.ErrNotFound
	}

	s.notifySessionsChanged()
	return nil
}

// DeleteSession removes a session and, via cascade, its exercises and sets.
func (s *DB) DeleteSession(ctx context.Context, id uuid.UUID, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ? AND user_id = ?`, id.String(), userID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return storage.ErrNotFound
	}

	s.notifySessionsChanged()
	return nil
}

// CurrentSessions returns every session for a user, ordered by start time.
func (s *DB) CurrentSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error) {
	return s.querySessions(ctx,
		`SELECT id, user_id, routine_name, start_time, end_time, is_completed
		 FROM sessions
		 WHERE user_id = ?
		 ORDER BY start_time ASC`, userID)
}

// QuerySessions retrieves sessions whose start time falls in [start, end).
func (s *DB) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error) {
	return s.querySessions(ctx,
		`SELECT id, user_id, routine_name, start_time, end_time, is_completed
		 FROM sessions
		 WHERE start_time >= ? AND start_time < ? AND user_id = ?
		 ORDER BY start_time ASC`, encodeTime(start), encodeTime(end), userID)
}

// GetSession retrieves a single session with all exercises and sets.
func (s *DB) GetSession(ctx context.Context, id uuid.UUID, userID int) (*models.WorkoutSession, error) {
	sessions, err := s.querySessions(ctx,
		`SELECT id, user_id, routine_name, start_time, end_time, is_completed
		 FROM sessions
		 WHERE id = ? AND user_id = ?`, id.String(), userID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, storage.ErrNotFound
	}
	return &sessions[0], nil
}

func (s *DB) querySessions(ctx context.Context, query string, args ...any) ([]models.WorkoutSession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WorkoutSession
	for rows.Next() {
		var (
			idStr     string
			session   models.WorkoutSession
			startTime int64
			endTime   sql.NullInt64
		)
		if err := rows.Scan(&idStr, &session.UserID, &session.RoutineName, &startTime, &endTime, &session.IsCompleted); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		session.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parsing session id %q: %w", idStr, err)
		}
		session.StartTime = decodeTime(startTime)
		if endTime.Valid {
			t := decodeTime(endTime.Int64)
			session.EndTime = &t
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		if err := s.attachExercises(ctx, &sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *DB) attachExercises(ctx context.Context, session *models.WorkoutSession) error {
	exRows, err := s.db.QueryContext(ctx,
		`SELECT position, name FROM session_exercises
		 WHERE session_id = ? ORDER BY position`, session.ID.String())
	if err != nil {
		return fmt.Errorf("querying session exercises: %w", err)
	}
	defer exRows.Close()

	positions := make(map[int]int) // table position -> slice index
	for exRows.Next() {
		var pos int
		var name string
		if err := exRows.Scan(&pos, &name); err != nil {
			return fmt.Errorf("scanning session exercise: %w", err)
		}
		positions[pos] = len(session.Exercises)
		session.Exercises = append(session.Exercises, models.SessionExercise{Name: name})
	}
	if err := exRows.Err(); err != nil {
		return err
	}

	setRows, err := s.db.QueryContext(ctx,
		`SELECT exercise_position, set_number, weight, reps, is_completed, notes
		 FROM session_sets
		 WHERE session_id = ? ORDER BY exercise_position, set_number`, session.ID.String())
	if err != nil {
		return fmt.Errorf("querying session sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var pos int
		var set models.WorkoutSet
		if err := setRows.Scan(&pos, &set.SetNumber, &set.Weight, &set.Reps, &set.IsCompleted, &set.Notes); err != nil {
			return fmt.Errorf("scanning session set: %w", err)
		}
		if i, ok := positions[pos]; ok {
			session.Exercises[i].Sets = append(session.Exercises[i].Sets, set)
		}
	}
	return setRows.Err()
}

// GetProfile retrieves the denormalized counters for a user.
func (s *DB) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, total_workouts, total_weight_lifted, last_workout_date, updated_at
		 FROM profiles WHERE user_id = ?`, userID)

	var (
		p           models.Profile
		lastWorkout sql.NullInt64
		updatedAt   int64
	)
	err := row.Scan(&p.UserID, &p.TotalWorkouts, &p.TotalWeightLifted, &lastWorkout, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	if lastWorkout.Valid {
		t := decodeTime(lastWorkout.Int64)
		p.LastWorkoutDate = &t
	}
	p.UpdatedAt = decodeTime(updatedAt)
	return &p, nil
}

// SaveProfile upserts the profile counters for a user.
func (s *DB) SaveProfile(ctx context.Context, p models.Profile) error {
	var lastWorkout *int64
	if p.LastWorkoutDate != nil {
		n := encodeTime(*p.LastWorkoutDate)
		lastWorkout = &n
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, total_workouts, total_weight_lifted, last_workout_date, updated_at)
		 VALUES (?,?,?,?,?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   total_workouts = excluded.total_workouts,
		   total_weight_lifted = excluded.total_weight_lifted,
		   last_workout_date = excluded.last_workout_date,
		   updated_at = excluded.updated_at`,
		p.UserID, p.TotalWorkouts, p.TotalWeightLifted, lastWorkout, encodeTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
