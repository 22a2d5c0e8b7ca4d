package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the account model based on the 'users' table
type User struct {
	ID           uuid.UUID  `json:"id" db:"id" example:"7b4c6a2e-4e7f-4f1a-9d0c-3a5c1f0e2b11"`
	Email        string     `json:"email" db:"email" example:"jane.doe@example.com"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	Roles        []string   `json:"roles"` // resolved through user_role, no db tag
}

// HasRole reports whether the user carries the named role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Token is a persisted refresh token
type Token struct {
	ID        int64     `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Token     string    `json:"-" db:"token"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
