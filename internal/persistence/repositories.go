package persistence

import (
	"context"
	"time"
)

// SettingRepository stores the key/value settings registry.
type SettingRepository interface {
	ListSettings(ctx context.Context) ([]Setting, error)
	GetSetting(ctx context.Context, key string) (Setting, error)
	PutSetting(ctx context.Context, setting Setting) error
	InsertMissingSettings(ctx context.Context, settings []Setting) (int, error)
}

// GuessRepository appends and lists guesses.
type GuessRepository interface {
	CreateGuess(ctx context.Context, guess Guess) (Guess, error)
	GetGuess(ctx context.Context, id int64) (Guess, error)
	ListGuesses(ctx context.Context) ([]Guess, error)
}

// SessionRepository stores site sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}
