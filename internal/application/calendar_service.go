package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/baby-pool/internal/calendar"
)

// CalendarService projects stored guesses into calendar events.
type CalendarService struct {
	guesses   GuessRepository
	projector *calendar.Projector
	logger    *slog.Logger
}

// NewCalendarService constructs a CalendarService placing events in loc.
func NewCalendarService(guesses GuessRepository, loc *time.Location) *CalendarService {
	return NewCalendarServiceWithLogger(guesses, loc, nil)
}

// NewCalendarServiceWithLogger constructs a CalendarService with a specified logger.
func NewCalendarServiceWithLogger(guesses GuessRepository, loc *time.Location, logger *slog.Logger) *CalendarService {
	return &CalendarService{
		guesses:   guesses,
		projector: calendar.NewProjector(loc),
		logger:    defaultLogger(logger),
	}
}

// Events projects every stored guess, newest guess first.
func (s *CalendarService) Events(ctx context.Context) ([]calendar.Event, error) {
	if s == nil || s.guesses == nil {
		return nil, fmt.Errorf("calendar service not configured")
	}
	guesses, err := s.guesses.ListGuesses(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "CalendarService", "Events").ErrorContext(ctx, "failed to list guesses", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	inputs := make([]calendar.Guess, 0, len(guesses))
	for _, g := range guesses {
		inputs = append(inputs, CalendarGuess(g))
	}
	return s.projector.Project(inputs), nil
}

// CalendarGuess converts a stored guess into projector input.
func CalendarGuess(g Guess) calendar.Guess {
	return calendar.Guess{
		ID:        g.ID,
		Name:      g.Name,
		Gender:    string(g.Gender),
		BirthDate: g.BirthDate,
		Time:      g.Time,
		Weight:    g.Weight.String(),
	}
}
