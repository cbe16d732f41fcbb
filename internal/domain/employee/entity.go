package employee

import (
	"time"

	"github.com/google/uuid"
)

// Position matches the employee_position enum.
type Position string

const (
	PositionAttendant   Position = "attendant"
	PositionSupervisor  Position = "supervisor"
	PositionMaintenance Position = "maintenance"
)

// Employee is a staff member assigned to a garage.
type Employee struct {
	ID              uuid.UUID `db:"id" json:"id"`
	GarageID        uuid.UUID `db:"garage_id" json:"garage_id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Email           string    `db:"email" json:"email"`
	Position        Position  `db:"position" json:"position"`
	HourlyWagePence int64     `db:"hourly_wage_pence" json:"hourly_wage_pence"`
	HiredAt         time.Time `db:"hired_at" json:"hired_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
