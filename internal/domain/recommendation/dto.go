package recommendation

import "time"

type RankRequest struct {
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required"`
	Latitude  *float64  `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64  `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Amenities []string  `json:"amenities,omitempty" validate:"omitempty,dive,amenity"`
	Weights   *Weights  `json:"weights,omitempty"`
}
