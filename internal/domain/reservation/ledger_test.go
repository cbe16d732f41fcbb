package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memStore backs ledger and service tests: it is the reservation store, the
// capacity source, the overlap counter and the garage directory in one.
type memStore struct {
	mu         sync.Mutex
	spaces     map[uuid.UUID]int
	rates      map[uuid.UUID]int64
	rows       map[uuid.UUID]*Reservation
	failCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		spaces: make(map[uuid.UUID]int),
		rates:  make(map[uuid.UUID]int64),
		rows:   make(map[uuid.UUID]*Reservation),
	}
}

func (m *memStore) addGarage(spaces int, ratePence int64) uuid.UUID {
	id := uuid.New()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spaces[id] = spaces
	m.rates[id] = ratePence
	return id
}

func (m *memStore) TotalSpaces(_ context.Context, garageID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spaces, ok := m.spaces[garageID]
	if !ok {
		return 0, ErrGarageNotFound
	}
	return spaces, nil
}

func (m *memStore) CountActiveOverlapping(_ context.Context, garageID uuid.UUID, w Window) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, row := range m.rows {
		if row.GarageID == garageID && row.Status == StatusActive && row.Window().Overlaps(w) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *memStore) Create(_ context.Context, res *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("store unavailable")
	}
	copied := *res
	m.rows[res.ID] = &copied
	return nil
}

func (m *memStore) UpdateStatusFrom(_ context.Context, id uuid.UUID, from, to Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	return true, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Reservation
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memStore) CompleteFinished(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, row := range m.rows {
		if row.Status == StatusActive && !row.EndsAt.After(now) {
			row.Status = StatusCompleted
			count++
		}
	}
	return count, nil
}

func (m *memStore) GetGarageByID(_ context.Context, id uuid.UUID) (*GarageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spaces, ok := m.spaces[id]
	if !ok {
		return nil, nil
	}
	return &GarageInfo{ID: id, TotalSpaces: spaces, HourlyRatePence: m.rates[id]}, nil
}

// directory adapts memStore to the GarageDirectory interface.
type directory struct{ store *memStore }

func (d directory) GetByID(ctx context.Context, id uuid.UUID) (*GarageInfo, error) {
	return d.store.GetGarageByID(ctx, id)
}

// blockingCounter parks the first caller until released, keeping the garage
// gate held so contention behavior can be observed.
type blockingCounter struct {
	entered  chan struct{}
	release  chan struct{}
	delegate OverlapCounter
	once     sync.Once
}

func (b *blockingCounter) CountActiveOverlapping(ctx context.Context, garageID uuid.UUID, w Window) (int, error) {
	var first bool
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	return b.delegate.CountActiveOverlapping(ctx, garageID, w)
}

func newTestLedger(store *memStore) *Ledger {
	return NewLedger(store, store, time.Second, 30*time.Second)
}

func TestLedgerNoOverbookingUnderConcurrency(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(3, 500)
	ledger := newTestLedger(store)

	w := mustWindow(t, at(t, "09:00"), at(t, "12:00"))

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	rejected := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.TryAdmit(context.Background(), garageID, w)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, ErrNoCapacity):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if admitted != 3 {
		t.Fatalf("expected exactly 3 admissions for capacity 3, got %d", admitted)
	}
	if rejected != attempts-3 {
		t.Fatalf("expected %d rejections, got %d", attempts-3, rejected)
	}
}

func TestLedgerCommitHandsCountToStore(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(2, 500)
	ledger := newTestLedger(store)

	w := mustWindow(t, at(t, "09:00"), at(t, "11:00"))

	token, err := ledger.TryAdmit(context.Background(), garageID, w)
	if err != nil {
		t.Fatalf("admit failed: %v", err)
	}

	// persist the row, then settle the hold
	res := &Reservation{ID: uuid.New(), GarageID: garageID, StartsAt: w.Start, EndsAt: w.End, Status: StatusActive}
	if err := store.Create(context.Background(), res); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ledger.Commit(token)

	free, err := ledger.FreeSlots(context.Background(), garageID, w)
	if err != nil {
		t.Fatalf("free slots failed: %v", err)
	}
	if free != 1 {
		t.Fatalf("expected 1 free slot after commit, got %d", free)
	}
}

func TestLedgerReleaseRestoresCapacity(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(1, 500)
	ledger := newTestLedger(store)

	w := mustWindow(t, at(t, "09:00"), at(t, "11:00"))

	token, err := ledger.TryAdmit(context.Background(), garageID, w)
	if err != nil {
		t.Fatalf("first admit failed: %v", err)
	}

	if _, err := ledger.TryAdmit(context.Background(), garageID, w); !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("expected ErrNoCapacity while hold pending, got %v", err)
	}

	if err := ledger.Release(token); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if _, err := ledger.TryAdmit(context.Background(), garageID, w); err != nil {
		t.Fatalf("admit after release failed: %v", err)
	}
}

func TestLedgerNonOverlappingWindowsShareSpace(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(1, 500)
	ledger := newTestLedger(store)

	morning := mustWindow(t, at(t, "08:00"), at(t, "12:00"))
	afternoon := mustWindow(t, at(t, "12:00"), at(t, "16:00"))

	if _, err := ledger.TryAdmit(context.Background(), garageID, morning); err != nil {
		t.Fatalf("morning admit failed: %v", err)
	}
	// [08:00,12:00) and [12:00,16:00) do not overlap: same space serves both
	if _, err := ledger.TryAdmit(context.Background(), garageID, afternoon); err != nil {
		t.Fatalf("afternoon admit failed: %v", err)
	}
}

func TestLedgerBusyWhenGateHeld(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(5, 500)

	counter := &blockingCounter{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		delegate: store,
	}
	ledger := NewLedger(store, counter, 20*time.Millisecond, 30*time.Second)

	w := mustWindow(t, at(t, "09:00"), at(t, "11:00"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		ledger.TryAdmit(context.Background(), garageID, w)
	}()

	<-counter.entered // first caller now holds the gate

	if _, err := ledger.TryAdmit(context.Background(), garageID, w); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while gate held, got %v", err)
	}

	close(counter.release)
	<-done
}

func TestLedgerContextCancelledWhileWaiting(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(5, 500)

	counter := &blockingCounter{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		delegate: store,
	}
	ledger := NewLedger(store, counter, time.Minute, 30*time.Second)

	w := mustWindow(t, at(t, "09:00"), at(t, "11:00"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		ledger.TryAdmit(context.Background(), garageID, w)
	}()
	<-counter.entered

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, err := ledger.TryAdmit(ctx, garageID, w); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(counter.release)
	<-done
}

func TestLedgerExpiredHoldReclaimed(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(1, 500)
	ledger := NewLedger(store, store, time.Second, 30*time.Second)

	now := at(t, "09:00")
	ledger.clock = func() time.Time { return now }

	w := mustWindow(t, at(t, "10:00"), at(t, "12:00"))

	if _, err := ledger.TryAdmit(context.Background(), garageID, w); err != nil {
		t.Fatalf("admit failed: %v", err)
	}

	// caller died without commit or release; the hold ages past its TTL
	now = now.Add(time.Minute)

	if _, err := ledger.TryAdmit(context.Background(), garageID, w); err != nil {
		t.Fatalf("expected expired hold to be reclaimed, got %v", err)
	}
}

func TestLedgerFreeSlotsClampsAtZero(t *testing.T) {
	store := newMemStore()
	garageID := store.addGarage(1, 500)
	ledger := newTestLedger(store)

	w := mustWindow(t, at(t, "09:00"), at(t, "11:00"))

	// two active rows against a capacity of one: an overbooking bug upstream
	for i := 0; i < 2; i++ {
		store.Create(context.Background(), &Reservation{
			ID: uuid.New(), GarageID: garageID, StartsAt: w.Start, EndsAt: w.End, Status: StatusActive,
		})
	}

	free, err := ledger.FreeSlots(context.Background(), garageID, w)
	if err != nil {
		t.Fatalf("free slots failed: %v", err)
	}
	if free != 0 {
		t.Fatalf("expected clamped 0, got %d", free)
	}
}

func TestLedgerUnknownGarage(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	w := mustWindow(t, at(t, "09:00"), at(t, "11:00"))

	if _, err := ledger.FreeSlots(context.Background(), uuid.New(), w); !errors.Is(err, ErrGarageNotFound) {
		t.Fatalf("expected ErrGarageNotFound, got %v", err)
	}
}
