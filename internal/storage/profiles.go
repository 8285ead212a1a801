package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetProfile retrieves the denormalized counters for a user.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT user_id, total_workouts, total_weight_lifted, last_workout_date, updated_at
		 FROM profiles
		 WHERE user_id = $1`, userID)

	var p models.Profile
	err := row.Scan(&p.UserID, &p.TotalWorkouts, &p.TotalWeightLifted, &p.LastWorkoutDate, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// SaveProfile upserts the profile counters for a user.
func (db *DB) SaveProfile(ctx context.Context, p models.Profile) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO profiles (user_id, total_workouts, total_weight_lifted, last_workout_date, updated_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id) DO UPDATE SET
		   total_workouts = EXCLUDED.total_workouts,
		   total_weight_lifted = EXCLUDED.total_weight_lifted,
		   last_workout_date = EXCLUDED.last_workout_date,
		   updated_at = EXCLUDED.updated_at`,
		p.UserID, p.TotalWorkouts, p.TotalWeightLifted, p.LastWorkoutDate, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
