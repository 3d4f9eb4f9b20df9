package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService guards the pool behind the shared site password.
type AuthService struct {
	settings       SettingsProvider
	sessions       SessionRepository
	verifyPassword PasswordVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(settings SettingsProvider, sessions SessionRepository, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(settings, sessions, verify, nil, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(settings SettingsProvider, sessions SessionRepository, verify PasswordVerifier, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if tokenGenerator == nil {
		tokenGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		settings:       settings,
		sessions:       sessions,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate checks the shared password and issues a new session.
// Existing sessions are left untouched.
func (s *AuthService) Authenticate(ctx context.Context, password string) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.settings == nil || s.sessions == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"session_id", result.Session.ID,
			"expires_at", result.Session.ExpiresAt,
		).InfoContext(ctx, "authentication succeeded")
	}()

	if password == "" {
		err = ErrInvalidCredentials
		return
	}

	var settings Settings
	settings, err = s.settings.Snapshot(ctx)
	if err != nil {
		return
	}
	if settings.PasswordHash == "" {
		err = fmt.Errorf("site password is not configured: %w", ErrInvalidCredentials)
		return
	}
	if verr := s.verifyPassword(settings.PasswordHash, password); verr != nil {
		if !errors.Is(verr, ErrInvalidCredentials) {
			logger.ErrorContext(ctx, "stored site password hash is unusable", "error", verr)
		}
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	session := Session{
		ID:        s.idGenerator(),
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		err = fmt.Errorf("token generator returned an empty token")
		return
	}

	session, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return
	}

	result = AuthenticateResult{Session: session}
	return
}

// IsValid reports whether token names a session that has not yet expired.
// Lookup failures count as invalid.
func (s *AuthService) IsValid(ctx context.Context, token string) bool {
	if s == nil || s.sessions == nil {
		return false
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return false
	}

	session, err := s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "IsValid").ErrorContext(ctx, "session lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
		return false
	}
	return session.Token == trimmed && session.ExpiresAt.After(s.now())
}

// PurgeExpired deletes every session whose expiry has passed.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.sessions == nil {
		return 0, fmt.Errorf("auth service not configured")
	}
	removed, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	logger := s.loggerWith(ctx, "PurgeExpired")
	if err != nil {
		logger.ErrorContext(ctx, "failed to purge expired sessions", "error", err, "error_kind", ErrorKind(err))
		return 0, err
	}
	logger.InfoContext(ctx, "expired sessions purged", "removed", removed)
	return removed, nil
}
