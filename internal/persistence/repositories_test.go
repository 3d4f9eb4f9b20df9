package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/baby-pool/internal/persistence"
	"github.com/example/baby-pool/internal/testfixtures"
)

func TestSettingRepository(t *testing.T) {
	t.Parallel()

	t.Run("seeds and overwrites settings", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		harness.SeedSettings(t, testfixtures.NewSettingsFixture())

		rows, err := harness.Settings.ListSettings(ctx)
		if err != nil {
			t.Fatalf("ListSettings failed: %v", err)
		}
		if len(rows) != 7 {
			t.Fatalf("expected 7 settings, got %d", len(rows))
		}

		if err := harness.Settings.PutSetting(ctx, persistence.Setting{Key: "due_date", Value: "2026-01-05"}); err != nil {
			t.Fatalf("PutSetting failed: %v", err)
		}
		due, err := harness.Settings.GetSetting(ctx, "due_date")
		if err != nil {
			t.Fatalf("GetSetting failed: %v", err)
		}
		if due.Value != "2026-01-05" {
			t.Fatalf("expected overwritten due date, got %q", due.Value)
		}
	})

	t.Run("insert missing keeps operator edits", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		edited := testfixtures.NewSettingsFixture(testfixtures.WithSetting("site_title", "Team Stork"))
		if err := harness.Settings.PutSetting(ctx, persistence.Setting{Key: "site_title", Value: "Team Stork"}); err != nil {
			t.Fatalf("PutSetting failed: %v", err)
		}

		added, err := harness.Settings.InsertMissingSettings(ctx, testfixtures.NewSettingsFixture().Persistence())
		if err != nil {
			t.Fatalf("InsertMissingSettings failed: %v", err)
		}
		if added != len(edited.Values)-1 {
			t.Fatalf("expected %d inserted, got %d", len(edited.Values)-1, added)
		}

		title, err := harness.Settings.GetSetting(ctx, "site_title")
		if err != nil {
			t.Fatalf("GetSetting failed: %v", err)
		}
		if title.Value != "Team Stork" {
			t.Fatalf("seed overwrote edited title: %q", title.Value)
		}

		again, err := harness.Settings.InsertMissingSettings(ctx, testfixtures.NewSettingsFixture().Persistence())
		if err != nil {
			t.Fatalf("second InsertMissingSettings failed: %v", err)
		}
		if again != 0 {
			t.Fatalf("expected idempotent seeding, got %d inserted", again)
		}
	})
}

func TestGuessRepository(t *testing.T) {
	t.Parallel()

	t.Run("lists newest first", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		base := testfixtures.ReferenceTime()

		var ids []int64
		for i, name := range []string{"Alice", "Bob", "Cara"} {
			guess := testfixtures.NewGuessFixture(
				testfixtures.WithGuessName(name),
				testfixtures.WithGuessCreatedAt(base.Add(time.Duration(i)*time.Hour)),
			).Persistence()
			stored, err := harness.Guesses.CreateGuess(ctx, guess)
			if err != nil {
				t.Fatalf("CreateGuess %s failed: %v", name, err)
			}
			ids = append(ids, stored.ID)
		}

		list, err := harness.Guesses.ListGuesses(ctx)
		if err != nil {
			t.Fatalf("ListGuesses failed: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 guesses, got %d", len(list))
		}
		if list[0].Name != "Cara" || list[2].Name != "Alice" {
			t.Fatalf("unexpected order: %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
		}
		if list[0].ID != ids[2] {
			t.Fatalf("expected newest ID %d first, got %d", ids[2], list[0].ID)
		}
	})

	t.Run("round trips both time forms", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		block, err := harness.Guesses.CreateGuess(ctx, testfixtures.NewGuessFixture(
			testfixtures.WithGuessBlocks("10:00", "10:30"),
			testfixtures.WithGuessEmail("dana@example.com"),
		).Persistence())
		if err != nil {
			t.Fatalf("CreateGuess block failed: %v", err)
		}
		single, err := harness.Guesses.CreateGuess(ctx, testfixtures.NewGuessFixture(testfixtures.WithGuessTime("23:59")).Persistence())
		if err != nil {
			t.Fatalf("CreateGuess single failed: %v", err)
		}

		gotBlock, err := harness.Guesses.GetGuess(ctx, block.ID)
		if err != nil {
			t.Fatalf("GetGuess failed: %v", err)
		}
		if gotBlock.BirthTime != nil || len(gotBlock.TimeBlocks) != 2 {
			t.Fatalf("unexpected block guess %+v", gotBlock)
		}
		if gotBlock.Email == nil || *gotBlock.Email != "dana@example.com" {
			t.Fatalf("email not persisted: %+v", gotBlock)
		}

		gotSingle, err := harness.Guesses.GetGuess(ctx, single.ID)
		if err != nil {
			t.Fatalf("GetGuess failed: %v", err)
		}
		if gotSingle.BirthTime == nil || *gotSingle.BirthTime != "23:59" || gotSingle.TimeBlocks != nil {
			t.Fatalf("unexpected single guess %+v", gotSingle)
		}
		if gotSingle.Email != nil {
			t.Fatalf("expected no email, got %q", *gotSingle.Email)
		}
	})

	t.Run("missing guess", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		if _, err := harness.Guesses.GetGuess(context.Background(), 42); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)
	base := testfixtures.ReferenceTime()

	live := testfixtures.NewSessionFixture().Persistence()
	expired := testfixtures.NewSessionFixture(testfixtures.WithSessionExpiry(base.Add(-time.Second))).Persistence()
	for _, s := range []persistence.Session{live, expired} {
		if _, err := harness.Sessions.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	if _, err := harness.Sessions.CreateSession(ctx, persistence.Session{ID: "other", Token: live.Token, ExpiresAt: base}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	removed, err := harness.Sessions.DeleteExpiredSessions(ctx, base)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed session, got %d", removed)
	}

	got, err := harness.Sessions.GetSession(ctx, live.Token)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != live.ID || !got.ExpiresAt.Equal(live.ExpiresAt) {
		t.Fatalf("unexpected session %+v", got)
	}
	if _, err := harness.Sessions.GetSession(ctx, expired.Token); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected expired session to be purged, got %v", err)
	}
}
