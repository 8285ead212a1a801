package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/analytics"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func daysParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

// --- Tool definitions ---

var toolGetProgressMetrics = mcp.NewTool("get_progress_metrics",
	mcp.WithDescription("Aggregate progress metrics computed from all completed workout sessions: workouts and volume this week/month, current day streak, average session duration, total workouts, and per-exercise progress rows."),
)

var toolGetWeeklySeries = mcp.NewTool("get_weekly_series",
	mcp.WithDescription("Trailing 12-week training series, one entry per ISO week (dense — weeks without workouts appear with zeros): workout count, total volume, and average duration per week."),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Per-session progress rows for one exercise (max weight, max reps, total volume, set count), sorted by date. Exercise names match case-insensitively."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. 'Bench Press')")),
	mcp.WithString("days", mcp.Description("Trailing window in days. Defaults to 90.")),
)

var toolGetPersonalRecord = mcp.NewTool("get_personal_record",
	mcp.WithDescription("All-time personal record (max weight with its reps and date) for one exercise."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Raw workout sessions in a time range, including exercises and sets."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("All-time training totals: completed workouts, lifetime volume, current streak, and the most recent workout."),
)

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Denormalized profile counters (total workouts, total weight lifted, last workout date). May lag the computed metrics until a recalculation runs."),
)

// --- Tool handlers ---

func (h *handlers) getProgressMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.CurrentSessions(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_progress_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(analytics.ComputeMetrics(sessions, time.Now()))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeeklySeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.CurrentSessions(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_weekly_series", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(analytics.WeeklySeries(sessions, time.Now()))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	days := daysParam(req.GetString("days", ""), 90)
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.CurrentSessions(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	rows := analytics.ExerciseHistory(sessions, exercise, days, time.Now())
	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.CurrentSessions(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_personal_record", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	record, ok := analytics.PersonalRecord(sessions, exercise)
	if !ok {
		return mcp.NewToolResultError("no completed sessions include exercise " + exercise), nil
	}

	result, err := mcp.NewToolResultJSON(record)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.QuerySessions(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.CurrentSessions(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	now := time.Now()
	metrics := analytics.ComputeMetrics(sessions, now)
	stats := map[string]any{
		"total_workouts":      metrics.TotalWorkouts,
		"total_volume":        analytics.TotalVolumeAllTime(sessions),
		"current_streak_days": metrics.CurrentStreak,
	}
	if last, ok := analytics.LastWorkout(sessions); ok {
		stats["last_workout"] = map[string]any{
			"date":  last.StartTime,
			"title": last.RoutineName,
		}
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	profile, err := h.ds.GetProfile(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(profile)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
