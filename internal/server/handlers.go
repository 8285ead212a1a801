package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/analytics"
	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/colinchu27/lyft-up-sub000/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var session models.WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.UserID == 0 {
		session.UserID = defaultUserID
	}
	if session.StartTime.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_time is required"})
		return
	}
	if session.EndTime != nil && session.EndTime.Before(session.StartTime) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_time precedes start_time"})
		return
	}

	inserted, err := s.store.InsertSession(r.Context(), session)
	if err != nil {
		s.log.Error("session insert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": session.ID, "inserted": inserted})
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	// Body is optional; end_time defaults to now.
	var body struct {
		EndTime *time.Time `json:"end_time"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}
	endTime := s.now()
	if body.EndTime != nil {
		endTime = *body.EndTime
	}

	err := s.store.CompleteSession(r.Context(), id, endTime, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "completed": true})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	err := s.store.DeleteSession(r.Context(), id, defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r, s.now)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.store.QuerySessions(r.Context(), start, end, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	session, err := s.store.GetSession(r.Context(), id, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Metrics())
}

func (s *Server) handleWeeklySeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot().Weekly)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	metric, err := analytics.ParseChartMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	days := intQueryParam(r, "days", analytics.SeriesWeeks*7)

	points := analytics.ChartSeries(s.tracker.Snapshot().Sessions, metric, days, s.now())
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	days := intQueryParam(r, "days", 90)

	rows := analytics.ExerciseHistory(s.tracker.Snapshot().Sessions, name, days, s.now())
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleExerciseRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	record, ok := analytics.PersonalRecord(s.tracker.Snapshot().Sessions, name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no record for exercise"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// TrainingStats is the all-time summary served by /api/v1/stats.
type TrainingStats struct {
	TotalWorkouts int                 `json:"total_workouts"`
	TotalVolume   float64             `json:"total_volume"`
	CurrentStreak int                 `json:"current_streak_days"`
	LastWorkout   *LastWorkoutSummary `json:"last_workout,omitempty"`
}

// LastWorkoutSummary identifies the most recent completed session.
type LastWorkoutSummary struct {
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	stats := TrainingStats{
		TotalWorkouts: snap.Metrics.TotalWorkouts,
		TotalVolume:   analytics.TotalVolumeAllTime(snap.Sessions),
		CurrentStreak: snap.Metrics.CurrentStreak,
	}
	if last, ok := analytics.LastWorkout(snap.Sessions); ok {
		stats.LastWorkout = &LastWorkoutSummary{Date: last.StartTime, Title: last.RoutineName}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(r.Context(), defaultUserID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleRecalculateProfile forces the denormalized profile counters back
// in sync with what the aggregator computes from raw sessions.
func (s *Server) handleRecalculateProfile(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.CurrentSessions(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	now := s.now()
	metrics := analytics.ComputeMetrics(sessions, now)
	profile := models.Profile{
		UserID:            defaultUserID,
		TotalWorkouts:     metrics.TotalWorkouts,
		TotalWeightLifted: analytics.TotalVolumeAllTime(sessions),
		UpdatedAt:         now,
	}
	if last, ok := analytics.LastWorkout(sessions); ok {
		t := last.StartTime
		profile.LastWorkoutDate = &t
	}

	if err := s.store.SaveProfile(r.Context(), profile); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func parseTimeRange(r *http.Request, now func() time.Time) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = now()
		return
	}

	end, err = time.Parse(time.RFC3339, endStr)
	if err != nil {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// End of day for date-only
		end = end.Add(24 * time.Hour)
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
