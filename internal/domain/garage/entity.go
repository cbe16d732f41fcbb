package garage

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Garage is owned by the administrative subsystem; the reservation core only
// reads it. Rating is maintained from customer reviews.
type Garage struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Address         string         `db:"address" json:"address"`
	Latitude        float64        `db:"latitude" json:"latitude"`
	Longitude       float64        `db:"longitude" json:"longitude"`
	TotalSpaces     int            `db:"total_spaces" json:"total_spaces"`
	HourlyRatePence int64          `db:"hourly_rate_pence" json:"hourly_rate_pence"`
	Rating          float64        `db:"rating" json:"rating"`
	Amenities       pq.StringArray `db:"amenities" json:"amenities"`
	PhotoURL        *string        `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
