package reservation

import "math"

// Price returns the charge in pence for holding one space over the window at
// the given hourly rate. Partial hours bill proportionally; the result is
// rounded half-up at pence precision, matching currency convention (banker's
// rounding would under-charge half-penny amounts).
//
// Pure and deterministic: the price a client sees is always recomputable from
// the stored window and the rate snapshot taken at creation.
func Price(w Window, hourlyRatePence int64) int64 {
	if hourlyRatePence <= 0 {
		return 0
	}
	return int64(math.Floor(w.DurationHours()*float64(hourlyRatePence) + 0.5))
}
