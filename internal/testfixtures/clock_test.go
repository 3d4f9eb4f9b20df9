package testfixtures

import (
	"testing"
	"time"

	"github.com/example/baby-pool/internal/slots"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockTodayFollowsLocation(t *testing.T) {
	clock := NewClock(time.Date(2025, time.December, 19, 23, 30, 0, 0, time.UTC))
	tokyo := time.FixedZone("JST", 9*60*60)

	if got := clock.Today(nil).String(); got != "2025-12-19" {
		t.Fatalf("expected UTC date 2025-12-19, got %s", got)
	}
	if got := clock.Today(tokyo).String(); got != "2025-12-20" {
		t.Fatalf("expected JST date 2025-12-20, got %s", got)
	}

	clock.Advance(time.Hour)
	if got := clock.Today(nil).String(); got != "2025-12-20" {
		t.Fatalf("expected midnight rollover, got %s", got)
	}
}

func TestClockMoveTo(t *testing.T) {
	clock := NewClock(time.Time{})
	due, err := slots.ParseDate(DueDate)
	if err != nil {
		t.Fatalf("parse due date: %v", err)
	}

	clock.MoveTo(due)
	want := time.Date(2025, time.December, 31, 9, 0, 0, 0, time.UTC)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected updated time %v, got %v", clock.Now(), got)
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatal("expected time.Now fallback for nil clock")
	}
}
