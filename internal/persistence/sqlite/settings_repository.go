package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/baby-pool/internal/persistence"
)

// ListSettings returns every stored setting ordered by key.
func (s *Storage) ListSettings(ctx context.Context) ([]persistence.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var settings []persistence.Setting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return settings, nil
}

// GetSetting returns one setting or persistence.ErrNotFound.
func (s *Storage) GetSetting(ctx context.Context, key string) (persistence.Setting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, strings.TrimSpace(key))
	setting, err := scanSetting(row)
	if err != nil {
		return persistence.Setting{}, err
	}
	return setting, nil
}

// PutSetting inserts or replaces a setting.
func (s *Storage) PutSetting(ctx context.Context, setting persistence.Setting) error {
	key := strings.TrimSpace(setting.Key)
	if key == "" {
		return persistence.ErrConstraintViolation
	}
	updatedAt := setting.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}

	return withRetry(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, setting.Value, formatTime(updatedAt),
		)
		return err
	})
}

// InsertMissingSettings stores the given settings whose keys are not yet
// present and reports how many were inserted. Existing values are kept.
func (s *Storage) InsertMissingSettings(ctx context.Context, settings []persistence.Setting) (int, error) {
	inserted := 0
	err := withRetry(ctx, s.retry, func() error {
		inserted = 0
		return withTransaction(ctx, s.db, func(tx *sql.Tx) error {
			for _, setting := range settings {
				key := strings.TrimSpace(setting.Key)
				if key == "" {
					return persistence.ErrConstraintViolation
				}
				updatedAt := setting.UpdatedAt
				if updatedAt.IsZero() {
					updatedAt = s.now()
				}
				res, err := tx.ExecContext(ctx,
					`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
					key, setting.Value, formatTime(updatedAt),
				)
				if err != nil {
					return err
				}
				n, err := res.RowsAffected()
				if err != nil {
					return fmt.Errorf("rows affected: %w", err)
				}
				inserted += int(n)
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSetting(row rowScanner) (persistence.Setting, error) {
	var (
		setting   persistence.Setting
		updatedAt string
	)
	if err := row.Scan(&setting.Key, &setting.Value, &updatedAt); err != nil {
		return persistence.Setting{}, mapError(err)
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return persistence.Setting{}, err
	}
	setting.UpdatedAt = t
	return setting, nil
}
