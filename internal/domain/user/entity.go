package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Role matches the user_role enum.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// User represents an account row in the users table.
type User struct {
	ID                 uuid.UUID      `db:"id"`
	Email              string         `db:"email"`
	PasswordHash       string         `db:"password_hash"`
	FullName           string         `db:"full_name"`
	Role               Role           `db:"role"`
	PreferredAmenities pq.StringArray `db:"preferred_amenities"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRoles returns the roles accepted at registration. Admins are
// provisioned out of band.
func ValidRoles() []Role {
	return []Role{RoleCustomer, RoleManager}
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}
