package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/unigate/admissions/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane.doe@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// RegisterRequest represents an applicant sign-up
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"jane.doe@example.com"`
	Password  string `json:"password" binding:"required,min=6" example:"secret1"`
	FirstName string `json:"firstName" binding:"required" example:"Jane"`
	LastName  string `json:"lastName" binding:"required" example:"Doe"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePasswordRequest changes the password of the signed-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ChangeEmailRequest changes the login email of the signed-in user
type ChangeEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email" example:"jane.doe@example.com"`
	Roles       []string   `json:"roles" example:"student"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewUserResponse maps a user model to its response
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Roles:       roles,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}
