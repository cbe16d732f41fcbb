package email

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parkhive/parkhive-api/internal/domain/reservation"
	"github.com/parkhive/parkhive-api/internal/domain/user"
)

// RecipientDirectory resolves a user id to the account holding the address.
type RecipientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// BookingNotifier emails booking lifecycle updates. Sends run in their own
// goroutine with a deadline; a delivery failure never fails the booking.
type BookingNotifier struct {
	mailer  *Mailer
	users   RecipientDirectory
	timeout time.Duration
}

func NewBookingNotifier(mailer *Mailer, users RecipientDirectory) *BookingNotifier {
	return &BookingNotifier{mailer: mailer, users: users, timeout: 15 * time.Second}
}

func (n *BookingNotifier) ReservationConfirmed(res *reservation.Reservation) {
	go n.notify(res, "Your parking reservation is confirmed",
		"Your space is booked from %s to %s. Total: %s.")
}

func (n *BookingNotifier) ReservationCancelled(res *reservation.Reservation) {
	go n.notify(res, "Your parking reservation was cancelled",
		"Your booking from %s to %s was cancelled. %s will be refunded.")
}

func (n *BookingNotifier) notify(res *reservation.Reservation, subject, bodyFormat string) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	u, err := n.users.GetByID(ctx, res.UserID)
	if err != nil || u == nil {
		log.Warn().Str("user_id", res.UserID.String()).Msg("booking email skipped, user lookup failed")
		return
	}

	body := fmt.Sprintf(bodyFormat,
		res.StartsAt.Format("Mon 2 Jan 15:04"),
		res.EndsAt.Format("Mon 2 Jan 15:04"),
		formatPence(res.PricePence),
	)

	if err := n.mailer.Send(ctx, u.Email, u.FullName, subject, body, ""); err != nil {
		log.Error().
			Err(err).
			Str("reservation_id", res.ID.String()).
			Msg("booking email delivery failed")
	}
}

func formatPence(p int64) string {
	return fmt.Sprintf("£%d.%02d", p/100, p%100)
}
