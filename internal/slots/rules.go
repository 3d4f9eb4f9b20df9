package slots

import (
	"errors"
	"fmt"
)

// Rules bound the calendar grid: slot granularity, the longest selectable
// block and the last selectable date.
type Rules struct {
	GranularityMinutes int
	MaxBlockMinutes    int
	DueDate            Date
}

// Validate checks that the rules describe a usable grid.
func (r Rules) Validate() error {
	var errs []error
	if r.GranularityMinutes <= 0 || minutesPerDay%r.GranularityMinutes != 0 {
		errs = append(errs, fmt.Errorf("granularity must divide a day evenly, got %d", r.GranularityMinutes))
	}
	if r.MaxBlockMinutes < r.GranularityMinutes {
		errs = append(errs, fmt.Errorf("maximum block %d is shorter than one slot", r.MaxBlockMinutes))
	}
	if r.DueDate.IsZero() {
		errs = append(errs, errors.New("due date is required"))
	}
	return errors.Join(errs...)
}

// MaxSlots returns how many slots fit into the maximum block.
func (r Rules) MaxSlots() int {
	if r.GranularityMinutes <= 0 {
		return 0
	}
	return r.MaxBlockMinutes / r.GranularityMinutes
}

// CheckSlotCount returns a *DurationCeilingError when count slots exceed the maximum block.
func (r Rules) CheckSlotCount(count int) error {
	if count*r.GranularityMinutes > r.MaxBlockMinutes {
		return &DurationCeilingError{MaxMinutes: r.MaxBlockMinutes, MaxSlots: r.MaxSlots()}
	}
	return nil
}

// Aligned reports whether t sits on the granularity grid.
func (r Rules) Aligned(t TimeOfDay) bool {
	return r.GranularityMinutes > 0 && t.Minutes()%r.GranularityMinutes == 0
}

// InWindow reports whether d lies within [today, due date].
func (r Rules) InWindow(d, today Date) bool {
	return !d.Before(today) && !d.After(r.DueDate)
}

// CheckSlot validates a single slot against the window and the grid.
func (r Rules) CheckSlot(s Slot, today Date) error {
	if !r.InWindow(s.Date, today) {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrDateOutOfRange, s.Date, today, r.DueDate)
	}
	if !r.Aligned(s.Time) {
		return fmt.Errorf("%w: %s", ErrMisalignedTime, s.Time)
	}
	return nil
}

// DaySlots lists every time of day on the grid, starting at midnight.
func (r Rules) DaySlots() []TimeOfDay {
	if r.GranularityMinutes <= 0 {
		return nil
	}
	out := make([]TimeOfDay, 0, minutesPerDay/r.GranularityMinutes)
	for m := 0; m < minutesPerDay; m += r.GranularityMinutes {
		out = append(out, timeFromMinutes(m))
	}
	return out
}

// Dates lists every selectable date from today through the due date.
func (r Rules) Dates(today Date) []Date {
	var out []Date
	for d := today; !d.After(r.DueDate); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}
