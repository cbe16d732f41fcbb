package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CapacitySource reports the total space count of a garage. Returns
// ErrGarageNotFound for unknown garages.
type CapacitySource interface {
	TotalSpaces(ctx context.Context, garageID uuid.UUID) (int, error)
}

// OverlapCounter counts persisted active reservations overlapping a window.
type OverlapCounter interface {
	CountActiveOverlapping(ctx context.Context, garageID uuid.UUID, w Window) (int, error)
}

// AdmissionToken identifies one held unit of capacity between TryAdmit and
// the matching Commit or Release.
type AdmissionToken struct {
	id       uuid.UUID
	garageID uuid.UUID
}

type hold struct {
	window    Window
	createdAt time.Time
}

// Ledger serializes admission decisions per garage. A bounded-wait gate makes
// check-and-hold mutually exclusive for one garage while leaving other
// garages independent; admitted capacity is tracked as an in-flight hold
// until the reservation row lands in the store (Commit) or the caller backs
// out (Release). Holds expire after holdTTL so a caller that dies between
// admission and persistence cannot leak capacity permanently.
type Ledger struct {
	capacity  CapacitySource
	counter   OverlapCounter
	admitWait time.Duration
	holdTTL   time.Duration
	clock     func() time.Time

	mu    sync.Mutex
	gates map[uuid.UUID]chan struct{}
	holds map[uuid.UUID]map[uuid.UUID]hold
}

func NewLedger(capacity CapacitySource, counter OverlapCounter, admitWait, holdTTL time.Duration) *Ledger {
	return &Ledger{
		capacity:  capacity,
		counter:   counter,
		admitWait: admitWait,
		holdTTL:   holdTTL,
		clock:     time.Now,
		gates:     make(map[uuid.UUID]chan struct{}),
		holds:     make(map[uuid.UUID]map[uuid.UUID]hold),
	}
}

// FreeSlots returns how many spaces of the garage are free for every instant
// of the window: total spaces minus overlapping active reservations and
// in-flight holds. Never negative; a negative raw value means overbooking
// slipped past admission and is logged as an invariant violation.
func (l *Ledger) FreeSlots(ctx context.Context, garageID uuid.UUID, w Window) (int, error) {
	spaces, err := l.capacity.TotalSpaces(ctx, garageID)
	if err != nil {
		return 0, err
	}

	booked, err := l.counter.CountActiveOverlapping(ctx, garageID, w)
	if err != nil {
		return 0, err
	}

	free := spaces - booked - l.pendingOverlapping(garageID, w)
	if free < 0 {
		log.Error().
			Str("garage_id", garageID.String()).
			Int("total_spaces", spaces).
			Int("booked", booked).
			Msg("overbooking invariant violated: free slot count below zero")
		return 0, nil
	}
	return free, nil
}

// TryAdmit atomically reserves one unit of capacity for the window. Returns
// ErrNoCapacity when the garage is full (an expected outcome, not a fault)
// and ErrBusy when the garage gate could not be acquired within the bounded
// wait. The returned token must be settled with Commit or Release.
func (l *Ledger) TryAdmit(ctx context.Context, garageID uuid.UUID, w Window) (AdmissionToken, error) {
	unlock, err := l.acquire(ctx, garageID)
	if err != nil {
		return AdmissionToken{}, err
	}
	defer unlock()

	free, err := l.FreeSlots(ctx, garageID, w)
	if err != nil {
		return AdmissionToken{}, err
	}
	if free < 1 {
		return AdmissionToken{}, ErrNoCapacity
	}

	token := AdmissionToken{id: uuid.New(), garageID: garageID}
	l.mu.Lock()
	if l.holds[garageID] == nil {
		l.holds[garageID] = make(map[uuid.UUID]hold)
	}
	l.holds[garageID][token.id] = hold{window: w, createdAt: l.clock()}
	l.mu.Unlock()

	return token, nil
}

// Commit settles a token once the reservation row is persisted. Between the
// insert and the commit the unit is counted twice (row and hold), which can
// only reject a concurrent booking spuriously, never overbook.
func (l *Ledger) Commit(token AdmissionToken) {
	l.drop(token)
}

// Release is the compensating action: it returns held capacity after a
// downstream failure. Always succeeds for the in-process ledger.
func (l *Ledger) Release(token AdmissionToken) error {
	l.drop(token)
	return nil
}

func (l *Ledger) drop(token AdmissionToken) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hs, ok := l.holds[token.garageID]; ok {
		delete(hs, token.id)
	}
}

func (l *Ledger) pendingOverlapping(garageID uuid.UUID, w Window) int {
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for id, h := range l.holds[garageID] {
		if l.holdTTL > 0 && now.Sub(h.createdAt) > l.holdTTL {
			// abandoned admission, reclaim
			delete(l.holds[garageID], id)
			continue
		}
		if h.window.Overlaps(w) {
			count++
		}
	}
	return count
}

func (l *Ledger) gate(garageID uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.gates[garageID]
	if !ok {
		g = make(chan struct{}, 1)
		l.gates[garageID] = g
	}
	return g
}

func (l *Ledger) acquire(ctx context.Context, garageID uuid.UUID) (func(), error) {
	g := l.gate(garageID)

	timer := time.NewTimer(l.admitWait)
	defer timer.Stop()

	select {
	case g <- struct{}{}:
		return func() { <-g }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrBusy
	}
}
