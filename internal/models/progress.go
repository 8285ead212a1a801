package models

import "time"

// ExerciseProgress is one derived row per (exercise, session) pair. It is
// regenerated on every aggregation pass and never stored.
type ExerciseProgress struct {
	ExerciseName string    `json:"exercise_name"`
	Date         time.Time `json:"date"`
	MaxWeight    float64   `json:"max_weight"`
	MaxReps      int       `json:"max_reps"`
	TotalVolume  float64   `json:"total_volume"`
	Sets         int       `json:"sets"`
}

// ProgressMetrics holds the aggregate counters recomputed wholesale from
// the session list on every change. The zero value is the correct result
// for an empty session list.
type ProgressMetrics struct {
	WorkoutsThisWeek  int                `json:"workouts_this_week"`
	WorkoutsThisMonth int                `json:"workouts_this_month"`
	CurrentStreak     int                `json:"current_streak_days"`
	AvgDurationSec    float64            `json:"avg_duration_sec"`
	VolumeThisWeek    float64            `json:"volume_this_week"`
	VolumeThisMonth   float64            `json:"volume_this_month"`
	TotalWorkouts     int                `json:"total_workouts"`
	ExerciseProgress  []ExerciseProgress `json:"exercise_progress,omitempty"`
}

// WeeklyProgress is one ISO-week bucket of the trailing chart series.
// Weeks with no sessions still appear with zero values.
type WeeklyProgress struct {
	WeekStart      time.Time `json:"week_start"`
	Workouts       int       `json:"workouts"`
	TotalVolume    float64   `json:"total_volume"`
	AvgDurationSec float64   `json:"avg_duration_sec"`
}

// PersonalRecord is the all-time heaviest recorded session-exercise
// pairing for a given exercise.
type PersonalRecord struct {
	ExerciseName string    `json:"exercise_name"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	Date         time.Time `json:"date"`
}

// ChartPoint is one display-ready point of a chart series.
type ChartPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Label string    `json:"label"`
}
