package employee

import "time"

type CreateEmployeeRequest struct {
	GarageID        string    `json:"garage_id" validate:"required,uuid4"`
	FullName        string    `json:"full_name" validate:"required,min=2,max=120"`
	Email           string    `json:"email" validate:"required,email,max=255"`
	Position        string    `json:"position" validate:"required,oneof=attendant supervisor maintenance"`
	HourlyWagePence int64     `json:"hourly_wage_pence" validate:"required,gt=0"`
	HiredAt         time.Time `json:"hired_at" validate:"required"`
}

type UpdateEmployeeRequest struct {
	FullName        *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=120"`
	Position        *string `json:"position,omitempty" validate:"omitempty,oneof=attendant supervisor maintenance"`
	HourlyWagePence *int64  `json:"hourly_wage_pence,omitempty" validate:"omitempty,gt=0"`
}
