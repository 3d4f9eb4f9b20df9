package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/example/baby-pool/internal/persistence"
)

// CreateSession stores a new session.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	session.Token = strings.TrimSpace(session.Token)
	if session.ID == "" || session.Token == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	session.CreatedAt = session.CreatedAt.UTC()
	session.ExpiresAt = session.ExpiresAt.UTC()

	err := withRetry(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sessions (id, token, created_at, expires_at) VALUES (?, ?, ?, ?)`,
			session.ID, session.Token, formatTime(session.CreatedAt), formatTime(session.ExpiresAt),
		)
		return err
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// GetSession looks a session up by its token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var (
		session              persistence.Session
		createdAt, expiresAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, created_at, expires_at FROM sessions WHERE token = ?`, token,
	).Scan(&session.ID, &session.Token, &createdAt, &expiresAt)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// DeleteExpiredSessions removes sessions that expired on or before reference
// and reports how many were removed.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	var removed int64
	err := withRetry(ctx, s.retry, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
