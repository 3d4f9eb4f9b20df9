package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/baby-pool/internal/persistence"
	"github.com/example/baby-pool/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a migrated temporary
// SQLite database.
type SQLiteHarness struct {
	Storage  *sqlite.Storage
	Settings persistence.SettingRepository
	Guesses  persistence.GuessRepository
	Sessions persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a database file under tb.TempDir.
// Close is also registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dsn := "file:" + filepath.Join(tb.TempDir(), "pool.db")
	storage, err := sqlite.Open(dsn)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:  storage,
		Settings: storage,
		Guesses:  storage,
		Sessions: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedSettings stores every key of fixture.
func (h *SQLiteHarness) SeedSettings(tb testing.TB, fixture SettingsFixture) {
	tb.Helper()
	for _, row := range fixture.Persistence() {
		if err := h.Settings.PutSetting(context.Background(), row); err != nil {
			tb.Fatalf("failed to seed setting %s: %v", row.Key, err)
		}
	}
}
