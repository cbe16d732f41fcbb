package reservation

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// CanTransition reports whether a status change is legal. Active reservations
// may complete or cancel; completed ones may refund (driven by an external
// payment event); cancelled and refunded are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusCompleted || to == StatusCancelled
	case StatusCompleted:
		return to == StatusRefunded
	default:
		return false
	}
}

// Reservation holds one garage space for a window. PricePence is a snapshot
// taken at creation from the garage's rate at that moment and is never
// recomputed, even if the garage rate changes later.
type Reservation struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	GarageID   uuid.UUID `db:"garage_id" json:"garage_id"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time `db:"ends_at" json:"ends_at"`
	PricePence int64     `db:"price_pence" json:"price_pence"`
	Status     Status    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (r *Reservation) Window() Window {
	return Window{Start: r.StartsAt, End: r.EndsAt}
}
