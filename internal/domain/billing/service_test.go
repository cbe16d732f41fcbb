package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type memLedger struct {
	entries []Entry
	refs    map[string]struct{}
}

func newMemLedger() *memLedger {
	return &memLedger{refs: make(map[string]struct{})}
}

func (m *memLedger) Append(_ context.Context, e *Entry) error {
	if _, dup := m.refs[e.Reference]; dup {
		return ErrDuplicateReference
	}
	m.refs[e.Reference] = struct{}{}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memLedger) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedger) BalanceByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	for _, e := range m.entries {
		if e.UserID == userID {
			total += e.AmountPence
		}
	}
	return total, nil
}

func TestChargeAndRefundBalanceToZero(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger)

	userID, resID := uuid.New(), uuid.New()

	if err := svc.RecordCharge(context.Background(), userID, resID, 2200); err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if err := svc.RecordRefund(context.Background(), userID, resID, 2200); err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	entries, balance, err := svc.Statement(context.Background(), userID, 50, 0)
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if balance != 0 {
		t.Fatalf("expected zero balance after refund, got %d", balance)
	}
}

func TestChargeIsIdempotentPerReservation(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(ledger)

	userID, resID := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		if err := svc.RecordCharge(context.Background(), userID, resID, 800); err != nil {
			t.Fatalf("charge %d failed: %v", i, err)
		}
	}

	_, balance, err := svc.Statement(context.Background(), userID, 50, 0)
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if balance != 800 {
		t.Fatalf("expected a single recorded charge of 800, got balance %d", balance)
	}
}
