package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/baby-pool/internal/application"
	"github.com/example/baby-pool/internal/persistence"
	"github.com/example/baby-pool/internal/slots"
	"github.com/example/baby-pool/internal/weight"
)

// mapNotFound translates the storage sentinel so services can test for
// application.ErrNotFound without importing persistence.
func mapNotFound(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	}
	return err
}

type settingsRepositoryAdapter struct {
	repo persistence.SettingRepository
}

func newSettingsRepositoryAdapter(repo persistence.SettingRepository) *settingsRepositoryAdapter {
	return &settingsRepositoryAdapter{repo: repo}
}

func (a *settingsRepositoryAdapter) ListSettings(ctx context.Context) (map[string]string, error) {
	stored, err := a.repo.ListSettings(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}
	values := make(map[string]string, len(stored))
	for _, s := range stored {
		values[s.Key] = s.Value
	}
	return values, nil
}

func (a *settingsRepositoryAdapter) GetSetting(ctx context.Context, key string) (string, error) {
	stored, err := a.repo.GetSetting(ctx, key)
	if err != nil {
		return "", mapNotFound(err)
	}
	return stored.Value, nil
}

func (a *settingsRepositoryAdapter) PutSetting(ctx context.Context, key, value string, updatedAt time.Time) error {
	return mapNotFound(a.repo.PutSetting(ctx, persistence.Setting{Key: key, Value: value, UpdatedAt: updatedAt}))
}

func (a *settingsRepositoryAdapter) InsertMissingSettings(ctx context.Context, values map[string]string, updatedAt time.Time) (int, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]persistence.Setting, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, persistence.Setting{Key: k, Value: values[k], UpdatedAt: updatedAt})
	}
	added, err := a.repo.InsertMissingSettings(ctx, rows)
	return added, mapNotFound(err)
}

type guessRepositoryAdapter struct {
	repo persistence.GuessRepository
}

func newGuessRepositoryAdapter(repo persistence.GuessRepository) *guessRepositoryAdapter {
	return &guessRepositoryAdapter{repo: repo}
}

func (a *guessRepositoryAdapter) CreateGuess(ctx context.Context, guess application.Guess) (application.Guess, error) {
	stored, err := a.repo.CreateGuess(ctx, toPersistenceGuess(guess))
	if err != nil {
		return application.Guess{}, mapNotFound(err)
	}
	return toApplicationGuess(stored)
}

func (a *guessRepositoryAdapter) GetGuess(ctx context.Context, id int64) (application.Guess, error) {
	stored, err := a.repo.GetGuess(ctx, id)
	if err != nil {
		return application.Guess{}, mapNotFound(err)
	}
	return toApplicationGuess(stored)
}

func (a *guessRepositoryAdapter) ListGuesses(ctx context.Context) ([]application.Guess, error) {
	stored, err := a.repo.ListGuesses(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}
	out := make([]application.Guess, 0, len(stored))
	for _, g := range stored {
		converted, err := toApplicationGuess(g)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func toPersistenceGuess(g application.Guess) persistence.Guess {
	out := persistence.Guess{
		ID:              g.ID,
		Name:            g.Name,
		Gender:          string(g.Gender),
		BirthDate:       g.BirthDate.String(),
		WeightPounds:    g.Weight.Pounds,
		WeightOunces:    g.Weight.Ounces,
		WeightKilograms: g.Weight.Kilograms,
		CreatedAt:       g.CreatedAt,
	}
	if email := strings.TrimSpace(g.Email); email != "" {
		out.Email = &email
	}
	if t, ok := g.Time.SingleTime(); ok {
		s := t.String()
		out.BirthTime = &s
	} else {
		out.TimeBlocks = g.Time.Strings()
	}
	return out
}

func toApplicationGuess(g persistence.Guess) (application.Guess, error) {
	date, err := slots.ParseDate(g.BirthDate)
	if err != nil {
		return application.Guess{}, fmt.Errorf("decode guess %d: %w", g.ID, err)
	}

	var spec slots.TimeSpec
	if g.BirthTime != nil {
		tod, err := slots.ParseTimeOfDay(*g.BirthTime)
		if err != nil {
			return application.Guess{}, fmt.Errorf("decode guess %d: %w", g.ID, err)
		}
		spec = slots.Single(tod)
	} else {
		times := make([]slots.TimeOfDay, 0, len(g.TimeBlocks))
		for _, raw := range g.TimeBlocks {
			tod, err := slots.ParseTimeOfDay(raw)
			if err != nil {
				return application.Guess{}, fmt.Errorf("decode guess %d: %w", g.ID, err)
			}
			times = append(times, tod)
		}
		spec, err = slots.Block(times...)
		if err != nil {
			return application.Guess{}, fmt.Errorf("decode guess %d: %w", g.ID, err)
		}
	}

	out := application.Guess{
		ID:        g.ID,
		Name:      g.Name,
		Gender:    application.Gender(g.Gender),
		BirthDate: date,
		Time:      spec,
		Weight: weight.Weight{
			Pounds:    g.WeightPounds,
			Ounces:    g.WeightOunces,
			Kilograms: g.WeightKilograms,
		},
		CreatedAt: g.CreatedAt,
	}
	if g.Email != nil {
		out.Email = *g.Email
	}
	return out, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, persistence.Session{
		ID:        session.ID,
		Token:     session.Token,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return application.Session{}, mapNotFound(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapNotFound(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	removed, err := a.repo.DeleteExpiredSessions(ctx, reference)
	return removed, mapNotFound(err)
}

func toApplicationSession(s persistence.Session) application.Session {
	return application.Session{ID: s.ID, Token: s.Token, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt}
}
