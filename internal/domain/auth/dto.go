package auth

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	Email              string   `json:"email" validate:"required,email,max=255"`
	Password           string   `json:"password" validate:"required,min=8,max=128"`
	FullName           string   `json:"full_name" validate:"required,min=2,max=120"`
	Role               string   `json:"role" validate:"required,user_role"`
	PreferredAmenities []string `json:"preferred_amenities,omitempty" validate:"omitempty,dive,amenity"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh and /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse returned after login/register
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

type UserResponse struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	Role               string    `json:"role"`
	PreferredAmenities []string  `json:"preferred_amenities"`
	CreatedAt          string    `json:"created_at"`
}

type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func newUserResponse(id uuid.UUID, email, fullName, role string, amenities []string, createdAt time.Time) UserResponse {
	if amenities == nil {
		amenities = []string{}
	}
	return UserResponse{
		ID:                 id,
		Email:              email,
		FullName:           fullName,
		Role:               role,
		PreferredAmenities: amenities,
		CreatedAt:          createdAt.Format(time.RFC3339),
	}
}
