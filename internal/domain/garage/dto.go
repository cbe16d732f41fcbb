package garage

type CreateGarageRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=120"`
	Address         string   `json:"address" validate:"required,max=300"`
	Latitude        float64  `json:"latitude" validate:"latitude"`
	Longitude       float64  `json:"longitude" validate:"longitude"`
	TotalSpaces     int      `json:"total_spaces" validate:"required,gt=0"`
	HourlyRatePence int64    `json:"hourly_rate_pence" validate:"gte=0"`
	Amenities       []string `json:"amenities" validate:"dive,amenity"`
}

type UpdateGarageRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Address         *string  `json:"address,omitempty" validate:"omitempty,max=300"`
	TotalSpaces     *int     `json:"total_spaces,omitempty" validate:"omitempty,gt=0"`
	HourlyRatePence *int64   `json:"hourly_rate_pence,omitempty" validate:"omitempty,gte=0"`
	Amenities       []string `json:"amenities,omitempty" validate:"omitempty,dive,amenity"`
}
