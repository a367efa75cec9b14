package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered storefront customer.
type User struct {
	ID              string    `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	Email           *string   `json:"email" db:"email"`
	FirstName       *string   `json:"firstName" db:"first_name"`
	LastName        *string   `json:"lastName" db:"last_name"`
	ProfileImageURL *string   `json:"profileImageUrl" db:"profile_image_url"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Session is a server-side login session.
type Session struct {
	ID        uuid.UUID `db:"id"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID    string
	Username  string
	SessionID uuid.UUID
}

// RegisterRequest is the payload of POST /api/register.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// LoginRequest is the payload of POST /api/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
