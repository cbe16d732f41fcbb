package reservation

import "time"

type CreateReservationRequest struct {
	GarageID string    `json:"garage_id" validate:"required,uuid4"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}
