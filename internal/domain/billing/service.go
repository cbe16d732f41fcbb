package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Ledger is the persistence seam for the service, implemented by Repository.
type Ledger interface {
	Append(ctx context.Context, e *Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error)
	BalanceByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Service records booking money movements. It satisfies the reservation
// flow's ChargeRecorder seam.
type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// RecordCharge appends the booking charge. One charge per reservation:
// a replayed reference is treated as already recorded, not an error.
func (s *Service) RecordCharge(ctx context.Context, userID, reservationID uuid.UUID, amountPence int64) error {
	return s.append(ctx, userID, reservationID, amountPence, EntryTypeCharge)
}

// RecordRefund appends the cancellation refund as a negative amount.
func (s *Service) RecordRefund(ctx context.Context, userID, reservationID uuid.UUID, amountPence int64) error {
	return s.append(ctx, userID, reservationID, -amountPence, EntryTypeRefund)
}

func (s *Service) append(ctx context.Context, userID, reservationID uuid.UUID, amountPence int64, entryType EntryType) error {
	entry := &Entry{
		ID:            uuid.New(),
		UserID:        userID,
		ReservationID: reservationID,
		AmountPence:   amountPence,
		Type:          entryType,
		Reference:     fmt.Sprintf("%s:%s", entryType, reservationID),
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			return nil
		}
		return err
	}
	return nil
}

// Statement returns the user's ledger entries, newest first.
func (s *Service) Statement(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, int64, error) {
	entries, err := s.ledger.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	balance, err := s.ledger.BalanceByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, balance, nil
}
