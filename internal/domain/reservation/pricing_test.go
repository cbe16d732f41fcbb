package reservation

import (
	"testing"
	"time"
)

func TestPriceFourHoursAt550(t *testing.T) {
	w := mustWindow(t, at(t, "09:00"), at(t, "13:00"))
	// 4h at £5.50/hr = £22.00
	if got := Price(w, 550); got != 2200 {
		t.Fatalf("expected 2200 pence, got %d", got)
	}
}

func TestPricePartialHourBillsPrecisely(t *testing.T) {
	w := mustWindow(t, at(t, "09:00"), at(t, "11:30"))
	// 2.5h at £10.00/hr = £25.00, never truncated to whole hours
	if got := Price(w, 1000); got != 2500 {
		t.Fatalf("expected 2500 pence, got %d", got)
	}
}

func TestPriceRoundsHalfUp(t *testing.T) {
	// 30 minutes at £0.01/hr = 0.5 pence, which rounds up to 1
	w := mustWindow(t, at(t, "09:00"), at(t, "09:30"))
	if got := Price(w, 1); got != 1 {
		t.Fatalf("expected half-up rounding to 1 penny, got %d", got)
	}
}

func TestPriceDeterminism(t *testing.T) {
	w := mustWindow(t, at(t, "09:00"), at(t, "17:45"))
	first := Price(w, 775)
	for i := 0; i < 100; i++ {
		if got := Price(w, 775); got != first {
			t.Fatalf("price not deterministic: %d != %d", got, first)
		}
	}
}

func TestPriceZeroAndNegativeRate(t *testing.T) {
	w := Window{Start: at(t, "09:00"), End: at(t, "09:00").Add(3 * time.Hour)}
	if got := Price(w, 0); got != 0 {
		t.Fatalf("expected 0 for zero rate, got %d", got)
	}
	if got := Price(w, -100); got != 0 {
		t.Fatalf("expected 0 for negative rate, got %d", got)
	}
}
