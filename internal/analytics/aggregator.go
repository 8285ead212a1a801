// Package analytics turns raw workout sessions into derived progress
// metrics: rolling window counts, day streaks, per-exercise progress rows,
// and the trailing weekly chart series.
//
// Every function here is a pure transform over an in-memory snapshot; the
// wall clock is always an explicit parameter so results are deterministic
// under test. All calendar-day and week bucketing uses now.Location() —
// mixing UTC and local day boundaries would silently corrupt streaks.
package analytics

import (
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
)

const (
	weekWindowDays  = 7
	monthWindowDays = 30

	// SeriesWeeks is the length of the trailing weekly series, current
	// week included.
	SeriesWeeks = 12
)

// ComputeMetrics aggregates the full session list into ProgressMetrics in
// one pass. Sessions not marked completed are excluded from every metric.
// An empty input yields the zero value.
func ComputeMetrics(sessions []models.WorkoutSession, now time.Time) models.ProgressMetrics {
	completed := completedSessions(sessions)
	return models.ProgressMetrics{
		WorkoutsThisWeek:  countInWindow(completed, now, weekWindowDays),
		WorkoutsThisMonth: countInWindow(completed, now, monthWindowDays),
		CurrentStreak:     CurrentStreak(sessions, now),
		AvgDurationSec:    avgDurationSec(completed),
		VolumeThisWeek:    volumeInWindow(completed, now, weekWindowDays),
		VolumeThisMonth:   volumeInWindow(completed, now, monthWindowDays),
		TotalWorkouts:     len(completed),
		ExerciseProgress:  ProgressRows(sessions),
	}
}

// CurrentStreak counts consecutive calendar days with at least one
// completed session, walking backward from today. If today has no
// completed session the anchor shifts back one day before counting, so a
// streak is not broken by the current, possibly unfinished, day. That
// grace applies only to today: an anchor landing on an empty yesterday
// yields 0 even when older days have sessions.
func CurrentStreak(sessions []models.WorkoutSession, now time.Time) int {
	loc := now.Location()
	active := make(map[civilDay]bool)
	for _, s := range sessions {
		if s.IsCompleted {
			active[dayOf(s.StartTime, loc)] = true
		}
	}
	if len(active) == 0 {
		return 0
	}

	y, m, d := now.In(loc).Date()
	anchor := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if !active[dayOf(anchor, loc)] {
		anchor = anchor.AddDate(0, 0, -1)
	}

	streak := 0
	for day := anchor; active[dayOf(day, loc)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// ProgressRows emits one ExerciseProgress row per (exercise, session)
// pair across all completed sessions. Emission follows session order then
// exercise order within the session; sorting is the caller's concern.
func ProgressRows(sessions []models.WorkoutSession) []models.ExerciseProgress {
	var rows []models.ExerciseProgress
	for _, s := range sessions {
		if !s.IsCompleted {
			continue
		}
		for _, ex := range s.Exercises {
			rows = append(rows, models.ExerciseProgress{
				ExerciseName: ex.Name,
				Date:         s.StartTime,
				MaxWeight:    ex.MaxWeight(),
				MaxReps:      ex.MaxReps(),
				TotalVolume:  ex.TotalVolume(),
				Sets:         len(ex.Sets),
			})
		}
	}
	return rows
}

// WeeklySeries buckets completed sessions that have an end time into the
// ISO week (Monday start) containing their start time, for the trailing
// SeriesWeeks weeks including the current one. The series is dense —
// weeks without sessions appear with zero values — and sorted ascending
// by week start.
func WeeklySeries(sessions []models.WorkoutSession, now time.Time) []models.WeeklyProgress {
	loc := now.Location()
	current := weekStart(now.In(loc))

	series := make([]models.WeeklyProgress, SeriesWeeks)
	index := make(map[time.Time]*models.WeeklyProgress, SeriesWeeks)
	for i := range series {
		start := current.AddDate(0, 0, -7*(SeriesWeeks-1-i))
		series[i].WeekStart = start
		index[start] = &series[i]
	}

	durations := make(map[time.Time]time.Duration)
	for _, s := range sessions {
		if !s.IsCompleted || s.EndTime == nil {
			continue
		}
		start := weekStart(s.StartTime.In(loc))
		bucket, ok := index[start]
		if !ok {
			continue
		}
		bucket.Workouts++
		bucket.TotalVolume += s.TotalVolume()
		durations[start] += s.EndTime.Sub(s.StartTime)
	}

	for start, total := range durations {
		bucket := index[start]
		bucket.AvgDurationSec = total.Seconds() / float64(bucket.Workouts)
	}
	return series
}

func completedSessions(sessions []models.WorkoutSession) []models.WorkoutSession {
	var completed []models.WorkoutSession
	for _, s := range sessions {
		if s.IsCompleted {
			completed = append(completed, s)
		}
	}
	return completed
}

// countInWindow counts sessions with StartTime in [now - days, now]. The
// cutoff instant itself is included.
func countInWindow(sessions []models.WorkoutSession, now time.Time, days int) int {
	count := 0
	for _, s := range sessions {
		if inWindow(s.StartTime, now, days) {
			count++
		}
	}
	return count
}

func volumeInWindow(sessions []models.WorkoutSession, now time.Time, days int) float64 {
	var total float64
	for _, s := range sessions {
		if inWindow(s.StartTime, now, days) {
			total += s.TotalVolume()
		}
	}
	return total
}

func inWindow(t, now time.Time, days int) bool {
	cutoff := now.AddDate(0, 0, -days)
	return !t.Before(cutoff) && !t.After(now)
}

// avgDurationSec is the mean duration over sessions that have an end
// time; sessions without one are excluded from numerator and denominator.
func avgDurationSec(sessions []models.WorkoutSession) float64 {
	var total time.Duration
	count := 0
	for _, s := range sessions {
		if d, ok := s.Duration(); ok {
			total += d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total.Seconds() / float64(count)
}

// civilDay identifies a calendar day in a fixed location. Two timestamps
// are the same day when their local date components match, not when they
// fall within 24 hours of each other.
type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time, loc *time.Location) civilDay {
	y, m, d := t.In(loc).Date()
	return civilDay{y, m, d}
}

// weekStart returns the Monday 00:00 of the ISO week containing t, in t's
// location.
func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
