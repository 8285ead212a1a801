package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/models"
)

// ChartMetric selects which weekly value a chart series carries.
type ChartMetric string

const (
	ChartVolume   ChartMetric = "volume"
	ChartDuration ChartMetric = "duration"
)

// ParseChartMetric validates a metric name from an API parameter.
func ParseChartMetric(s string) (ChartMetric, error) {
	switch ChartMetric(s) {
	case ChartVolume, ChartDuration:
		return ChartMetric(s), nil
	default:
		return "", fmt.Errorf("unknown chart metric %q", s)
	}
}

// ExerciseHistory returns the progress rows for one exercise within the
// trailing window, sorted ascending by date. Exercise names match
// case-insensitively.
func ExerciseHistory(sessions []models.WorkoutSession, name string, days int, now time.Time) []models.ExerciseProgress {
	cutoff := now.AddDate(0, 0, -days)
	var rows []models.ExerciseProgress
	for _, row := range ProgressRows(sessions) {
		if strings.EqualFold(row.ExerciseName, name) && !row.Date.Before(cutoff) {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// PersonalRecord finds the all-time maximum weight for an exercise across
// every completed session, unwindowed. Ties keep the first row in
// emission order.
func PersonalRecord(sessions []models.WorkoutSession, name string) (models.PersonalRecord, bool) {
	var best models.ExerciseProgress
	found := false
	for _, row := range ProgressRows(sessions) {
		if !strings.EqualFold(row.ExerciseName, name) {
			continue
		}
		if !found || row.MaxWeight > best.MaxWeight {
			best = row
			found = true
		}
	}
	if !found {
		return models.PersonalRecord{}, false
	}
	return models.PersonalRecord{
		ExerciseName: best.ExerciseName,
		Weight:       best.MaxWeight,
		Reps:         best.MaxReps,
		Date:         best.Date,
	}, true
}

// ChartSeries maps the weekly series onto display-ready points, keeping
// weeks whose start falls within the trailing window.
func ChartSeries(sessions []models.WorkoutSession, metric ChartMetric, days int, now time.Time) []models.ChartPoint {
	cutoff := now.AddDate(0, 0, -days)
	var points []models.ChartPoint
	for _, week := range WeeklySeries(sessions, now) {
		if week.WeekStart.Before(cutoff) {
			continue
		}
		value := week.TotalVolume
		if metric == ChartDuration {
			value = week.AvgDurationSec
		}
		points = append(points, models.ChartPoint{
			Date:  week.WeekStart,
			Value: value,
			Label: week.WeekStart.Format("Jan 2"),
		})
	}
	return points
}

// TotalVolumeAllTime sums every set volume over every completed session.
func TotalVolumeAllTime(sessions []models.WorkoutSession) float64 {
	var total float64
	for _, s := range sessions {
		if s.IsCompleted {
			total += s.TotalVolume()
		}
	}
	return total
}

// LastWorkout returns the completed session with the latest start time.
func LastWorkout(sessions []models.WorkoutSession) (models.WorkoutSession, bool) {
	var last models.WorkoutSession
	found := false
	for _, s := range sessions {
		if !s.IsCompleted {
			continue
		}
		if !found || s.StartTime.After(last.StartTime) {
			last = s
			found = true
		}
	}
	return last, found
}
