package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/baby-pool/internal/slots"
)

// GuessRepository persists guesses. CreateGuess assigns the id; ListGuesses
// returns the most recently created first.
type GuessRepository interface {
	CreateGuess(ctx context.Context, guess Guess) (Guess, error)
	GetGuess(ctx context.Context, id int64) (Guess, error)
	ListGuesses(ctx context.Context) ([]Guess, error)
}

// GuessService validates and stores predictions.
type GuessService struct {
	guesses  GuessRepository
	settings SettingsProvider
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger

	// writeMu serialises the duplicate check with the insert that follows it.
	writeMu sync.Mutex
}

// NewGuessService constructs a GuessService.
func NewGuessService(guesses GuessRepository, settings SettingsProvider, now func() time.Time, loc *time.Location) *GuessService {
	return NewGuessServiceWithLogger(guesses, settings, now, loc, nil)
}

// NewGuessServiceWithLogger constructs a GuessService with a specified logger.
// loc decides which calendar day "today" is.
func NewGuessServiceWithLogger(guesses GuessRepository, settings SettingsProvider, now func() time.Time, loc *time.Location, logger *slog.Logger) *GuessService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &GuessService{
		guesses:  guesses,
		settings: settings,
		now:      now,
		location: loc,
		logger:   defaultLogger(logger),
	}
}

func (s *GuessService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GuessService", operation, attrs...)
}

// Submit validates input and stores it as a new guess. Nothing is written
// when validation fails.
func (s *GuessService) Submit(ctx context.Context, input GuessInput) (result SubmitResult, err error) {
	if s == nil || s.guesses == nil || s.settings == nil {
		err = fmt.Errorf("guess service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Submit")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "guess rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "guess stored", "guess_id", result.ID, "duplicates", len(result.Duplicates))
	}()

	var settings Settings
	settings, err = s.settings.Snapshot(ctx)
	if err != nil {
		return
	}

	now := s.now()
	var guess Guess
	guess, err = validateGuess(input, settings, slots.Today(now, s.location))
	if err != nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var duplicates []int64
	duplicates, err = s.findDuplicates(ctx, guess)
	if err != nil {
		return
	}
	if len(duplicates) > 0 && settings.DuplicatePolicy == DuplicatesReject {
		err = invalidf(FieldBirthDate, ReasonDuplicate, "already predicted by guess %d", duplicates[0])
		return
	}

	guess.CreatedAt = now.UTC()
	var stored Guess
	stored, err = s.guesses.CreateGuess(ctx, guess)
	if err != nil {
		err = fmt.Errorf("store guess: %w", err)
		return
	}

	result = SubmitResult{ID: stored.ID, IsBlock: guess.Time.IsBlock(), Duplicates: duplicates}
	return
}

// List returns every guess, newest first.
func (s *GuessService) List(ctx context.Context) ([]Guess, error) {
	if s == nil || s.guesses == nil {
		return nil, fmt.Errorf("guess service not configured")
	}
	guesses, err := s.guesses.ListGuesses(ctx)
	if err != nil {
		s.loggerWith(ctx, "List").ErrorContext(ctx, "failed to list guesses", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return guesses, nil
}

// Get returns one guess or an error matching ErrNotFound.
func (s *GuessService) Get(ctx context.Context, id int64) (Guess, error) {
	if s == nil || s.guesses == nil {
		return Guess{}, fmt.Errorf("guess service not configured")
	}
	guess, err := s.guesses.GetGuess(ctx, id)
	if err != nil {
		return Guess{}, fmt.Errorf("get guess %d: %w", id, err)
	}
	return guess, nil
}

// findDuplicates returns ids of stored guesses on the same date with the same
// gender sharing at least one time.
func (s *GuessService) findDuplicates(ctx context.Context, candidate Guess) ([]int64, error) {
	existing, err := s.guesses.ListGuesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guesses: %w", err)
	}
	var ids []int64
	for _, g := range existing {
		if g.BirthDate == candidate.BirthDate && g.Gender == candidate.Gender && g.Time.Overlaps(candidate.Time) {
			ids = append(ids, g.ID)
		}
	}
	return ids, nil
}
