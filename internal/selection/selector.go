// Package selection implements the interactive slot picker a participant uses
// to build a guess before submitting it.
//
// A Selector is owned by one participant session and is not safe for
// concurrent use.
package selection

import (
	"fmt"
	"sort"

	"github.com/example/baby-pool/internal/calendar"
	"github.com/example/baby-pool/internal/slots"
)

// State is the selector's lifecycle state.
type State int

const (
	// StateEmpty holds no slots.
	StateEmpty State = iota
	// StateSelecting holds at least one slot.
	StateSelecting
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSelecting:
		return "selecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome describes an accepted toggle.
type Outcome int

const (
	// Added means the slot joined the selection.
	Added Outcome = iota + 1
	// Removed means the slot left the selection.
	Removed
)

// Confirmation is the selection handed to the submission path.
type Confirmation struct {
	Date    slots.Date        `json:"date"`
	Times   []slots.TimeOfDay `json:"times"`
	IsBlock bool              `json:"isBlock"`
}

// TimeSpec converts the confirmed times into the tagged representation.
func (c Confirmation) TimeSpec() (slots.TimeSpec, error) {
	return slots.Block(c.Times...)
}

// Selector accumulates slots on a single date up to the maximum block.
type Selector struct {
	rules    slots.Rules
	today    slots.Date
	snapshot []calendar.Event
	selected []slots.Slot
}

// New constructs an empty Selector. snapshot is the calendar as fetched for
// this session and is only read.
func New(rules slots.Rules, today slots.Date, snapshot []calendar.Event) *Selector {
	return &Selector{rules: rules, today: today, snapshot: snapshot}
}

// State reports whether any slot is selected.
func (s *Selector) State() State {
	if len(s.selected) == 0 {
		return StateEmpty
	}
	return StateSelecting
}

// Slots returns the selected slots in selection order.
func (s *Selector) Slots() []slots.Slot {
	return append([]slots.Slot(nil), s.selected...)
}

// Toggle removes slot when present and adds it otherwise. A rejected toggle
// leaves the selection unchanged.
func (s *Selector) Toggle(slot slots.Slot) (Outcome, error) {
	if idx := s.indexOf(slot); idx >= 0 {
		s.selected = append(s.selected[:idx], s.selected[idx+1:]...)
		return Removed, nil
	}

	if err := s.rules.CheckSlot(slot, s.today); err != nil {
		return 0, err
	}
	if len(s.selected) > 0 && s.selected[0].Date != slot.Date {
		return 0, fmt.Errorf("%w: %s already selected, got %s", slots.ErrMultiDateSelection, s.selected[0].Date, slot.Date)
	}
	if err := s.rules.CheckSlotCount(len(s.selected) + 1); err != nil {
		return 0, err
	}

	s.selected = append(s.selected, slot)
	return Added, nil
}

// Clear drops every selected slot.
func (s *Selector) Clear() {
	s.selected = nil
}

// Confirm emits the selection and resets to empty. A failed confirmation
// leaves the selection untouched.
func (s *Selector) Confirm() (Confirmation, error) {
	if len(s.selected) == 0 {
		return Confirmation{}, slots.ErrEmptySelection
	}

	date := s.selected[0].Date
	for _, slot := range s.selected[1:] {
		if slot.Date != date {
			return Confirmation{}, slots.ErrMultiDateSelection
		}
	}

	times := make([]slots.TimeOfDay, 0, len(s.selected))
	for _, slot := range s.selected {
		times = append(times, slot.Time)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	s.selected = nil
	return Confirmation{Date: date, Times: times, IsBlock: len(times) > 1}, nil
}

// Occupancy returns the ids of guesses in the snapshot that already cover slot.
func (s *Selector) Occupancy(slot slots.Slot) []int64 {
	var ids []int64
	for _, ev := range s.snapshot {
		if ev.Slot == slot {
			ids = append(ids, ev.GuessID)
		}
	}
	return ids
}

// Grid lists the selectable times of day.
func (s *Selector) Grid() []slots.TimeOfDay {
	return s.rules.DaySlots()
}

// Dates lists the selectable dates.
func (s *Selector) Dates() []slots.Date {
	return s.rules.Dates(s.today)
}

func (s *Selector) indexOf(slot slots.Slot) int {
	for i, have := range s.selected {
		if have == slot {
			return i
		}
	}
	return -1
}
