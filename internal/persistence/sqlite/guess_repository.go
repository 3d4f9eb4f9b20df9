package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/baby-pool/internal/persistence"
)

const guessColumns = `id, name, email, gender, birth_date, birth_time, time_blocks, weight_lbs, weight_oz, weight_kg, created_at`

// CreateGuess appends a guess and returns it with its assigned ID.
func (s *Storage) CreateGuess(ctx context.Context, guess persistence.Guess) (persistence.Guess, error) {
	if strings.TrimSpace(guess.Name) == "" || guess.BirthDate == "" {
		return persistence.Guess{}, persistence.ErrConstraintViolation
	}
	if (guess.BirthTime == nil) == (len(guess.TimeBlocks) == 0) {
		return persistence.Guess{}, fmt.Errorf("%w: exactly one of birth time and time blocks must be set", persistence.ErrConstraintViolation)
	}

	var blocks sql.NullString
	if len(guess.TimeBlocks) > 0 {
		raw, err := json.Marshal(guess.TimeBlocks)
		if err != nil {
			return persistence.Guess{}, fmt.Errorf("encode time blocks: %w", err)
		}
		blocks = sql.NullString{String: string(raw), Valid: true}
	}

	if guess.CreatedAt.IsZero() {
		guess.CreatedAt = s.now()
	}
	guess.CreatedAt = guess.CreatedAt.UTC()

	err := withRetry(ctx, s.retry, func() error {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO guesses (name, email, gender, birth_date, birth_time, time_blocks, weight_lbs, weight_oz, weight_kg, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			guess.Name,
			nullString(guess.Email),
			guess.Gender,
			guess.BirthDate,
			nullString(guess.BirthTime),
			blocks,
			guess.WeightPounds,
			guess.WeightOunces,
			guess.WeightKilograms,
			formatTime(guess.CreatedAt),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		guess.ID = id
		return nil
	})
	if err != nil {
		return persistence.Guess{}, err
	}
	return cloneGuess(guess), nil
}

// GetGuess returns one guess by ID.
func (s *Storage) GetGuess(ctx context.Context, id int64) (persistence.Guess, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+guessColumns+` FROM guesses WHERE id = ?`, id)
	return scanGuess(row)
}

// ListGuesses returns every guess, newest first.
func (s *Storage) ListGuesses(ctx context.Context) ([]persistence.Guess, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+guessColumns+` FROM guesses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	guesses := make([]persistence.Guess, 0)
	for rows.Next() {
		guess, err := scanGuess(rows)
		if err != nil {
			return nil, err
		}
		guesses = append(guesses, guess)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return guesses, nil
}

func scanGuess(row rowScanner) (persistence.Guess, error) {
	var (
		guess     persistence.Guess
		email     sql.NullString
		birthTime sql.NullString
		blocks    sql.NullString
		createdAt string
	)
	err := row.Scan(
		&guess.ID,
		&guess.Name,
		&email,
		&guess.Gender,
		&guess.BirthDate,
		&birthTime,
		&blocks,
		&guess.WeightPounds,
		&guess.WeightOunces,
		&guess.WeightKilograms,
		&createdAt,
	)
	if err != nil {
		return persistence.Guess{}, mapError(err)
	}

	if email.Valid {
		guess.Email = &email.String
	}
	if birthTime.Valid {
		guess.BirthTime = &birthTime.String
	}
	if blocks.Valid {
		if err := json.Unmarshal([]byte(blocks.String), &guess.TimeBlocks); err != nil {
			return persistence.Guess{}, fmt.Errorf("decode time blocks of guess %d: %w", guess.ID, err)
		}
	}
	if guess.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Guess{}, err
	}
	return guess, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func cloneGuess(guess persistence.Guess) persistence.Guess {
	clone := guess
	if guess.Email != nil {
		email := *guess.Email
		clone.Email = &email
	}
	if guess.BirthTime != nil {
		bt := *guess.BirthTime
		clone.BirthTime = &bt
	}
	if guess.TimeBlocks != nil {
		clone.TimeBlocks = append([]string(nil), guess.TimeBlocks...)
	}
	return clone
}
