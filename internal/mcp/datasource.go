package mcp

import (
	"context"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/localstore"
	"github.com/colinchu27/lyft-up-sub000/internal/models"
	"github.com/colinchu27/lyft-up-sub000/internal/storage"
)

// DataSource abstracts the session data layer for MCP tools. The Postgres
// store, the SQLite local store, and HTTPClient (remote via REST API) all
// satisfy this interface. Derived metrics are computed here, on top of the
// raw sessions, so every backend yields identical analytics.
type DataSource interface {
	CurrentSessions(ctx context.Context, userID int) ([]models.WorkoutSession, error)
	QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error)
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
}

// Compile-time checks: all backends satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*localstore.DB)(nil)
	_ DataSource = (*HTTPClient)(nil)
)
