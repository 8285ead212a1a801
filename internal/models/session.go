package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is one workout instance, in progress or completed.
// A session counts toward analytics only when IsCompleted is true;
// completion is never inferred from EndTime being set.
type WorkoutSession struct {
	ID          uuid.UUID         `json:"id"`
	UserID      int               `json:"user_id"`
	RoutineName string            `json:"routine_name"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
	IsCompleted bool              `json:"is_completed"`
	Exercises   []SessionExercise `json:"exercises"`
}

// Duration returns EndTime - StartTime. Sessions without an end time
// report ok=false and are excluded from duration averages.
func (s WorkoutSession) Duration() (d time.Duration, ok bool) {
	if s.EndTime == nil {
		return 0, false
	}
	return s.EndTime.Sub(s.StartTime), true
}

// TotalVolume sums set volumes across all exercises in the session.
func (s WorkoutSession) TotalVolume() float64 {
	var total float64
	for _, ex := range s.Exercises {
		total += ex.TotalVolume()
	}
	return total
}

// SessionExercise is one exercise performed within a session. Name is the
// exercise identity and matches case-insensitively across sessions.
type SessionExercise struct {
	Name string       `json:"name"`
	Sets []WorkoutSet `json:"sets"`
}

// TotalVolume sums set volumes for this exercise.
func (e SessionExercise) TotalVolume() float64 {
	var total float64
	for _, set := range e.Sets {
		total += set.Volume()
	}
	return total
}

// MaxWeight returns the heaviest weight across this exercise's sets.
func (e SessionExercise) MaxWeight() float64 {
	var max float64
	for _, set := range e.Sets {
		if set.Weight > max {
			max = set.Weight
		}
	}
	return max
}

// MaxReps returns the highest rep count across this exercise's sets.
func (e SessionExercise) MaxReps() int {
	var max int
	for _, set := range e.Sets {
		if set.Reps > max {
			max = set.Reps
		}
	}
	return max
}

// WorkoutSet is one set of an exercise.
type WorkoutSet struct {
	SetNumber   int     `json:"set_number"`
	Weight      float64 `json:"weight"`
	Reps        int     `json:"reps"`
	IsCompleted bool    `json:"is_completed"`
	Notes       string  `json:"notes,omitempty"`
}

// Volume is weight x reps, the atomic unit all aggregate volumes build on.
func (s WorkoutSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// Profile holds the denormalized per-user counters kept alongside the raw
// sessions. The analytics engine computes its own numbers independently;
// the recalculate operation forces these back in sync.
type Profile struct {
	UserID            int        `json:"user_id"`
	TotalWorkouts     int        `json:"total_workouts"`
	TotalWeightLifted float64    `json:"total_weight_lifted"`
	LastWorkoutDate   *time.Time `json:"last_workout_date,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
