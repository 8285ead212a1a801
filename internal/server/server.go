package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/analytics"
	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// defaultUserID scopes all requests until multi-user auth exists.
const defaultUserID = 1

// Store is the session/profile repository surface the handlers need.
// Both storage.DB (Postgres) and localstore.DB (SQLite) satisfy it.
type Store interface {
	CurrentSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error)
	QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error)
	GetSession(ctx context.Context, id uuid.UUID, userID int) (*models.WorkoutSession, error)
	InsertSession(ctx context.Context, s models.WorkoutSession) (bool, error)
	CompleteSession(ctx context.Context, id uuid.UUID, endTime time.Time, userID int) error
	DeleteSession(ctx context.Context, id uuid.UUID, userID int) error
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
	SaveProfile(ctx context.Context, p models.Profile) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Store
	tracker *analytics.Tracker
	log     *slog.Logger
	apiKey  string
	router  chi.Router
	now     func() time.Time
}

// New creates a new Server with all routes configured.
func New(store Store, tracker *analytics.Tracker, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		tracker: tracker,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/sessions", s.handleCreateSession)
		r.Post("/api/v1/sessions/{id}/complete", s.handleCompleteSession)
		r.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)
		r.Post("/api/v1/profile/recalculate", s.handleRecalculateProfile)
	})

	// Read endpoints
	s.router.Get("/api/v1/sessions", s.handleQuerySessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/metrics", s.handleMetrics)
	s.router.Get("/api/v1/metrics/weekly", s.handleWeeklySeries)
	s.router.Get("/api/v1/chart", s.handleChart)
	s.router.Get("/api/v1/exercises/{name}/history", s.handleExerciseHistory)
	s.router.Get("/api/v1/exercises/{name}/record", s.handleExerciseRecord)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/profile", s.handleProfile)
}
