package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's rating of a garage after a completed stay.
type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GarageID  uuid.UUID `db:"garage_id" json:"garage_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
