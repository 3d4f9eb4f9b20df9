// Package slots defines the calendar grid shared by slot selection, guess
// validation and event projection: dates, times of day, the single-or-block
// time representation and the rules bounding what can be picked.
package slots

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDateOutOfRange is returned for dates before today or after the due date.
	ErrDateOutOfRange = errors.New("slots: date outside selectable range")
	// ErrMisalignedTime is returned for times that are not on the granularity grid.
	ErrMisalignedTime = errors.New("slots: time not aligned to slot granularity")
	// ErrMultiDateSelection is returned when slots from more than one date are combined.
	ErrMultiDateSelection = errors.New("slots: selection spans multiple dates")
	// ErrEmptySelection is returned when a time representation has no times.
	ErrEmptySelection = errors.New("slots: no time selected")
	// ErrDuplicateTime is returned when a block repeats a time of day.
	ErrDuplicateTime = errors.New("slots: duplicate time in block")
)

// DurationCeilingError reports that a selection would exceed the maximum block.
type DurationCeilingError struct {
	MaxMinutes int
	MaxSlots   int
}

func (e *DurationCeilingError) Error() string {
	return fmt.Sprintf("slots: selection exceeds maximum block of %d minutes (%d slots)", e.MaxMinutes, e.MaxSlots)
}

// Slot is one cell of the calendar grid.
type Slot struct {
	Date Date
	Time TimeOfDay
}

// ParseSlot parses "YYYY-MM-DDTHH:MM" or "YYYY-MM-DD HH:MM".
func ParseSlot(value string) (Slot, error) {
	sep := strings.IndexAny(value, "T ")
	if sep < 0 {
		return Slot{}, fmt.Errorf("parse slot %q: expected date and time", value)
	}
	date, err := ParseDate(value[:sep])
	if err != nil {
		return Slot{}, err
	}
	tod, err := ParseTimeOfDay(value[sep+1:])
	if err != nil {
		return Slot{}, err
	}
	return Slot{Date: date, Time: tod}, nil
}

func (s Slot) String() string {
	return s.Date.String() + "T" + s.Time.String()
}

// TimeSpec is either a single time of day or a block of several distinct
// times on one date. The zero value is empty and invalid.
type TimeSpec struct {
	times []TimeOfDay
}

// Single returns a TimeSpec holding exactly one time.
func Single(t TimeOfDay) TimeSpec {
	return TimeSpec{times: []TimeOfDay{t}}
}

// Block builds a TimeSpec from distinct times, sorted ascending. A block of one
// time collapses to Single.
func Block(times ...TimeOfDay) (TimeSpec, error) {
	if len(times) == 0 {
		return TimeSpec{}, ErrEmptySelection
	}
	sorted := append([]TimeOfDay(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return TimeSpec{}, fmt.Errorf("%w: %s", ErrDuplicateTime, sorted[i])
		}
	}
	return TimeSpec{times: sorted}, nil
}

// IsZero reports whether s holds no time.
func (s TimeSpec) IsZero() bool { return len(s.times) == 0 }

// IsBlock reports whether s covers more than one slot.
func (s TimeSpec) IsBlock() bool { return len(s.times) > 1 }

// Len returns the number of slots covered.
func (s TimeSpec) Len() int { return len(s.times) }

// Times returns a copy of the times in ascending order.
func (s TimeSpec) Times() []TimeOfDay {
	return append([]TimeOfDay(nil), s.times...)
}

// SingleTime returns the time of a single-time spec.
func (s TimeSpec) SingleTime() (TimeOfDay, bool) {
	if len(s.times) != 1 {
		return TimeOfDay{}, false
	}
	return s.times[0], true
}

// Contains reports whether t is one of the covered times.
func (s TimeSpec) Contains(t TimeOfDay) bool {
	for _, have := range s.times {
		if have == t {
			return true
		}
	}
	return false
}

// Overlaps reports whether s and other share at least one time.
func (s TimeSpec) Overlaps(other TimeSpec) bool {
	for _, t := range other.times {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

// Strings renders each time as HH:MM.
func (s TimeSpec) Strings() []string {
	out := make([]string, 0, len(s.times))
	for _, t := range s.times {
		out = append(out, t.String())
	}
	return out
}
