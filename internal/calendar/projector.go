package calendar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/example/baby-pool/internal/slots"
)

// Guess is the projection input: the calendar-relevant part of a stored guess.
type Guess struct {
	ID        int64
	Name      string
	Gender    string
	BirthDate slots.Date
	Time      slots.TimeSpec
	Weight    string
}

// Event is one calendar-displayable entry derived from a guess.
type Event struct {
	ID      string
	GuessID int64
	Title   string
	Slot    slots.Slot
	Start   time.Time
	End     time.Time
	Source  Guess
}

// Projector expands guesses into calendar events.
type Projector struct {
	location *time.Location
}

// NewProjector constructs a Projector placing events in loc.
// If loc is nil, UTC is used.
func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	return &Projector{location: loc}
}

// Project derives events for every guess, in input order.
//
// A single-time guess yields one event identified by the guess id. A block
// guess yields one event per slot, in slot order, identified by
// "<guess id>-<HH:MM>". Every event is an instant: Start equals End.
func (p *Projector) Project(guesses []Guess) []Event {
	events := make([]Event, 0, len(guesses))
	for _, g := range guesses {
		events = append(events, p.ProjectOne(g)...)
	}
	return events
}

// ProjectOne derives the events of a single guess.
func (p *Projector) ProjectOne(g Guess) []Event {
	times := g.Time.Times()
	if len(times) == 0 {
		return nil
	}

	title := titleFor(g)
	baseID := strconv.FormatInt(g.ID, 10)
	events := make([]Event, 0, len(times))
	for _, tod := range times {
		id := baseID
		if g.Time.IsBlock() {
			id = baseID + "-" + tod.String()
		}
		at := p.Combine(g.BirthDate, tod)
		events = append(events, Event{
			ID:      id,
			GuessID: g.ID,
			Title:   title,
			Slot:    slots.Slot{Date: g.BirthDate, Time: tod},
			Start:   at,
			End:     at,
			Source:  g,
		})
	}
	return events
}

// Combine places a time of day on a date in the projector's location.
func (p *Projector) Combine(date slots.Date, tod slots.TimeOfDay) time.Time {
	return time.Date(date.Year, date.Month, date.Day, tod.Hour, tod.Minute, 0, 0, p.location)
}

func titleFor(g Guess) string {
	if g.Weight == "" {
		return fmt.Sprintf("%s (%s)", g.Name, g.Gender)
	}
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.Gender, g.Weight)
}
