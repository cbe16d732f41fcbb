package reservation

import (
	"errors"
	"testing"
	"time"
)

var testPolicy = Policy{
	GracePeriod: 5 * time.Minute,
	MinDuration: 15 * time.Minute,
	MaxDuration: 30 * 24 * time.Hour,
}

func mustWindow(t *testing.T, start, end time.Time) Window {
	t.Helper()
	w := Window{Start: start.UTC(), End: end.UTC()}
	if !w.Start.Before(w.End) {
		t.Fatalf("bad test window %v..%v", start, end)
	}
	return w
}

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-03-14T"+hhmm+":00Z")
	if err != nil {
		t.Fatalf("parse %q: %v", hhmm, err)
	}
	return ts
}

func TestNewWindowRejectsInvertedBounds(t *testing.T) {
	now := at(t, "08:00")
	_, err := NewWindow(at(t, "12:00"), at(t, "10:00"), now, testPolicy)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}

	_, err = NewWindow(at(t, "12:00"), at(t, "12:00"), now, testPolicy)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for zero-length window, got %v", err)
	}
}

func TestNewWindowRejectsTooShortAndTooLong(t *testing.T) {
	now := at(t, "08:00")

	_, err := NewWindow(at(t, "10:00"), at(t, "10:05"), now, testPolicy)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for sub-minimum duration, got %v", err)
	}

	_, err = NewWindow(at(t, "10:00"), at(t, "10:00").Add(31*24*time.Hour), now, testPolicy)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for over-maximum duration, got %v", err)
	}
}

func TestNewWindowGracePeriod(t *testing.T) {
	now := at(t, "10:00")

	// within the grace period: allowed
	if _, err := NewWindow(now.Add(-4*time.Minute), now.Add(2*time.Hour), now, testPolicy); err != nil {
		t.Fatalf("start within grace period should be valid, got %v", err)
	}

	// beyond the grace period: rejected
	_, err := NewWindow(now.Add(-6*time.Minute), now.Add(2*time.Hour), now, testPolicy)
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow for past start, got %v", err)
	}
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	a := mustWindow(t, at(t, "10:00"), at(t, "14:00"))
	b := mustWindow(t, at(t, "13:00"), at(t, "15:00"))
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("[10:00,14:00) and [13:00,15:00) must overlap")
	}

	c := mustWindow(t, at(t, "10:00"), at(t, "12:00"))
	d := mustWindow(t, at(t, "12:00"), at(t, "14:00"))
	if c.Overlaps(d) || d.Overlaps(c) {
		t.Fatal("[10:00,12:00) and [12:00,14:00) must NOT overlap: end is exclusive")
	}
}

func TestDurationHoursIsFractional(t *testing.T) {
	w := mustWindow(t, at(t, "10:00"), at(t, "12:30"))
	if got := w.DurationHours(); got != 2.5 {
		t.Fatalf("expected 2.5 hours, got %v", got)
	}
}
