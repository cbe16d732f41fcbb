package reservation

import (
	"fmt"
	"time"
)

// Policy constrains acceptable booking windows.
type Policy struct {
	GracePeriod time.Duration // how far into the past a start time may drift
	MinDuration time.Duration
	MaxDuration time.Duration
}

// Window is a half-open [Start, End) interval in UTC. A reservation holds a
// space from Start inclusive to End exclusive, so back-to-back bookings on
// the same space never collide.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow validates and normalizes a booking window against the policy.
// All failures wrap ErrInvalidWindow.
func NewWindow(start, end, now time.Time, p Policy) (Window, error) {
	start = start.UTC()
	end = end.UTC()

	if !start.Before(end) {
		return Window{}, fmt.Errorf("%w: start must precede end", ErrInvalidWindow)
	}

	d := end.Sub(start)
	if p.MinDuration > 0 && d < p.MinDuration {
		return Window{}, fmt.Errorf("%w: duration below minimum of %s", ErrInvalidWindow, p.MinDuration)
	}
	if p.MaxDuration > 0 && d > p.MaxDuration {
		return Window{}, fmt.Errorf("%w: duration exceeds maximum of %s", ErrInvalidWindow, p.MaxDuration)
	}

	if start.Before(now.UTC().Add(-p.GracePeriod)) {
		return Window{}, fmt.Errorf("%w: start is in the past", ErrInvalidWindow)
	}

	return Window{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// DurationHours returns the window length in fractional hours, unrounded.
func (w Window) DurationHours() float64 {
	return w.End.Sub(w.Start).Hours()
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
