package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a pgxpool.Pool and provides session and profile repository
// methods. Session mutations fire the callbacks registered with
// OnSessionsChanged.
type DB struct {
	Pool *pgxpool.Pool

	mu       sync.Mutex
	onChange []func()
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// OnSessionsChanged registers a callback invoked after every session
// mutation (insert, complete, delete).
func (db *DB) OnSessionsChanged(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.onChange = append(db.onChange, fn)
}

func (db *DB) notifySessionsChanged() {
	db.mu.Lock()
	callbacks := make([]func(), len(db.onChange))
	copy(callbacks, db.onChange)
	db.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
