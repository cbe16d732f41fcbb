package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GarageInfo is the read-only view of a garage the reservation flow needs.
// The garage subsystem owns the full record.
type GarageInfo struct {
	ID              uuid.UUID
	TotalSpaces     int
	HourlyRatePence int64
}

// GarageDirectory looks up garages. Returns (nil, nil) for unknown ids.
type GarageDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*GarageInfo, error)
}

// Store persists reservation records.
type Store interface {
	Create(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, error)
	CompleteFinished(ctx context.Context, now time.Time) (int64, error)
}

// Admitter is the capacity ledger seen from the service.
type Admitter interface {
	FreeSlots(ctx context.Context, garageID uuid.UUID, w Window) (int, error)
	TryAdmit(ctx context.Context, garageID uuid.UUID, w Window) (AdmissionToken, error)
	Commit(token AdmissionToken)
	Release(token AdmissionToken) error
}

// AuthorizationCheck answers whether actingUserID may manage a reservation
// owned by ownerID. Role logic lives outside this package.
type AuthorizationCheck interface {
	CanManage(ctx context.Context, actingUserID, ownerID uuid.UUID) (bool, error)
}

// Notifier delivers booking lifecycle messages. Implementations are expected
// to be asynchronous and must not fail the booking flow.
type Notifier interface {
	ReservationConfirmed(res *Reservation)
	ReservationCancelled(res *Reservation)
}

// ChargeRecorder appends bookkeeping entries to the payment ledger.
type ChargeRecorder interface {
	RecordCharge(ctx context.Context, userID, reservationID uuid.UUID, amountPence int64) error
	RecordRefund(ctx context.Context, userID, reservationID uuid.UUID, amountPence int64) error
}

// AvailabilityPublisher pushes fresh free-slot counts to live subscribers.
type AvailabilityPublisher interface {
	PublishAvailability(ctx context.Context, garageID uuid.UUID, freeSlots int)
}

const releaseRetries = 3

type Service struct {
	store     Store
	garages   GarageDirectory
	ledger    Admitter
	authz     AuthorizationCheck
	policy    Policy
	clock     func() time.Time
	notifier  Notifier
	billing   ChargeRecorder
	publisher AvailabilityPublisher
}

func NewService(store Store, garages GarageDirectory, ledger Admitter, authz AuthorizationCheck, policy Policy) *Service {
	return &Service{
		store:   store,
		garages: garages,
		ledger:  ledger,
		authz:   authz,
		policy:  policy,
		clock:   time.Now,
	}
}

// WithNotifier attaches the booking email notifier.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// WithBilling attaches the payment ledger recorder.
func (s *Service) WithBilling(b ChargeRecorder) *Service {
	s.billing = b
	return s
}

// WithPublisher attaches the live availability publisher.
func (s *Service) WithPublisher(p AvailabilityPublisher) *Service {
	s.publisher = p
	return s
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Create books one space of the garage for the window. The price is
// snapshotted from the garage's current hourly rate. Admission and
// persistence are separate units: if the insert fails after admission
// succeeded, the held capacity is released as a compensating action.
func (s *Service) Create(ctx context.Context, userID, garageID uuid.UUID, start, end time.Time) (*Reservation, error) {
	now := s.clock()

	w, err := NewWindow(start, end, now, s.policy)
	if err != nil {
		return nil, err
	}

	g, err := s.garages.GetByID(ctx, garageID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGarageNotFound
	}

	token, err := s.ledger.TryAdmit(ctx, garageID, w)
	if err != nil {
		return nil, err
	}

	res := &Reservation{
		ID:         uuid.New(),
		UserID:     userID,
		GarageID:   garageID,
		StartsAt:   w.Start,
		EndsAt:     w.End,
		PricePence: Price(w, g.HourlyRatePence),
		Status:     StatusActive,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}

	if err := s.store.Create(ctx, res); err != nil {
		s.compensate(token, res.ID)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.ledger.Commit(token)

	log.Info().
		Str("reservation_id", res.ID.String()).
		Str("garage_id", garageID.String()).
		Str("user_id", userID.String()).
		Int64("price_pence", res.PricePence).
		Time("starts_at", res.StartsAt).
		Time("ends_at", res.EndsAt).
		Msg("reservation created")

	s.afterMutation(ctx, res, true)
	return res, nil
}

// Cancel transitions an active reservation to cancelled. Permitted for the
// owner, or for callers the external authorization check approves. The
// status guard runs in SQL so a concurrent completion wins cleanly.
func (s *Service) Cancel(ctx context.Context, reservationID, actingUserID uuid.UUID) error {
	res, err := s.store.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrNotFound
	}

	if actingUserID != res.UserID {
		if s.authz == nil {
			return ErrForbidden
		}
		allowed, err := s.authz.CanManage(ctx, actingUserID, res.UserID)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrForbidden
		}
	}

	if !CanTransition(res.Status, StatusCancelled) {
		return ErrNotCancellable
	}

	ok, err := s.store.UpdateStatusFrom(ctx, reservationID, StatusActive, StatusCancelled)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return ErrNotCancellable
	}
	res.Status = StatusCancelled

	log.Info().
		Str("reservation_id", reservationID.String()).
		Str("acting_user_id", actingUserID.String()).
		Msg("reservation cancelled")

	s.afterMutation(ctx, res, false)
	return nil
}

// GetAvailability returns the free space count of the garage over the window.
func (s *Service) GetAvailability(ctx context.Context, garageID uuid.UUID, start, end time.Time) (int, error) {
	w, err := NewWindow(start, end, s.clock(), s.policy)
	if err != nil {
		return 0, err
	}

	g, err := s.garages.GetByID(ctx, garageID)
	if err != nil {
		return 0, err
	}
	if g == nil {
		return 0, ErrGarageNotFound
	}

	return s.ledger.FreeSlots(ctx, garageID, w)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}
	return res, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, error) {
	return s.store.ListByUser(ctx, userID, limit, offset)
}

// CompleteFinished moves active reservations past their end time to
// completed. Invoked by the cron scheduler.
func (s *Service) CompleteFinished(ctx context.Context) error {
	count, err := s.store.CompleteFinished(ctx, s.clock())
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("reservations completed past end time")
	}
	return nil
}

// compensate releases held capacity after a failed insert. An un-released
// admission is a capacity leak, so a failing release is retried a bounded
// number of times and then escalated.
func (s *Service) compensate(token AdmissionToken, reservationID uuid.UUID) {
	var err error
	for attempt := 1; attempt <= releaseRetries; attempt++ {
		if err = s.ledger.Release(token); err == nil {
			return
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("reservation_id", reservationID.String()).
			Msg("compensating release failed, retrying")
	}
	log.Error().
		Err(err).
		Str("reservation_id", reservationID.String()).
		Msg("ALERT: admission hold not released, capacity leaked")
}

// afterMutation runs the non-fatal side effects of a booking change.
func (s *Service) afterMutation(ctx context.Context, res *Reservation, created bool) {
	if s.billing != nil {
		var err error
		if created {
			err = s.billing.RecordCharge(ctx, res.UserID, res.ID, res.PricePence)
		} else {
			err = s.billing.RecordRefund(ctx, res.UserID, res.ID, res.PricePence)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("reservation_id", res.ID.String()).Msg("billing entry failed")
		}
	}

	if s.notifier != nil {
		if created {
			s.notifier.ReservationConfirmed(res)
		} else {
			s.notifier.ReservationCancelled(res)
		}
	}

	if s.publisher != nil {
		free, err := s.ledger.FreeSlots(ctx, res.GarageID, res.Window())
		if err == nil {
			s.publisher.PublishAvailability(ctx, res.GarageID, free)
		}
	}
}
