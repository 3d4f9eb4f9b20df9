// Package sqlite implements the persistence repositories on SQLite using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/example/baby-pool/internal/persistence"
	"github.com/example/baby-pool/internal/persistence/sqlite/migrations"
)

const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	_ persistence.SettingRepository = (*Storage)(nil)
	_ persistence.GuessRepository   = (*Storage)(nil)
	_ persistence.SessionRepository = (*Storage)(nil)
)

// Storage implements every persistence repository on one *sql.DB.
type Storage struct {
	db     *sql.DB
	retry  RetryConfig
	now    func() time.Time
	logger *slog.Logger
}

// Option customises a Storage.
type Option func(*Storage)

// WithLogger sets the logger used for migration progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetry overrides the busy retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(s *Storage) { s.retry = cfg }
}

// Open connects to the SQLite database described by dsn. The pool is limited
// to one connection so writes are serialized.
func Open(dsn string, opts ...Option) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite (%s): %w", pragma, err)
		}
	}

	return New(db, opts...), nil
}

// New wraps an existing database handle.
func New(db *sql.DB, opts ...Option) *Storage {
	s := &Storage{
		db:     db,
		retry:  DefaultRetryConfig(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying handle.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// newProvider is a seam for tests.
var newProvider = func(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectSQLite3, db, fsys)
}

// Migrate applies every pending embedded migration.
func (s *Storage) Migrate(ctx context.Context) error {
	provider, err := newProvider(s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	before, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		s.logger.InfoContext(ctx, "migration applied",
			"version", res.Source.Version,
			"path", res.Source.Path,
			"duration", res.Duration,
		)
	}

	after, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	s.logger.InfoContext(ctx, "database schema ready", "from_version", before, "to_version", after, "applied", len(results))
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, value)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}
