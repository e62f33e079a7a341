// Package dto provides data transfer objects for HTTP API.
package dto

import (
	"time"

	"apotheca/internal/domain/auth"
)

// --- Request DTOs ---

// RegisterRequest signs up a pharmacy with its primary admin.
type RegisterRequest struct {
	PharmacyName string `json:"pharmacyName" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Phone        string `json:"phone,omitempty"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		PharmacyName: r.PharmacyName,
		Name:         r.Name,
		Email:        r.Email,
		Password:     r.Password,
		Phone:        r.Phone,
	}
}

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// VerifyOTPRequest confirms a pending verification code.
// NewPassword is only required for invites that still need their first
// password.
type VerifyOTPRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword,omitempty"`
}

// ResendOTPRequest asks for a fresh verification code.
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateUserRequest invites a co-worker into the pharmacy.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role" binding:"required,oneof=ADMIN PHARMACIST"`
	Password string `json:"password,omitempty"`
}

// ToAuthRequest converts to domain request.
func (r *CreateUserRequest) ToAuthRequest() auth.CreateUserRequest {
	return auth.CreateUserRequest{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Role:     auth.Role(r.Role),
		Password: r.Password,
	}
}

// UpdateProfileRequest stages a name/phone change behind an OTP.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// --- Response DTOs ---

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID             string     `json:"id"`
	PharmacyID     string     `json:"pharmacyId"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	Role           string     `json:"role"`
	IsPrimaryAdmin bool       `json:"isPrimaryAdmin"`
	Verified       bool       `json:"verified"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// FromUser creates a response from a domain user.
func FromUser(u *auth.User) *UserResponse {
	return &UserResponse{
		ID:             u.ID.String(),
		PharmacyID:     u.PharmacyID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           string(u.Role),
		IsPrimaryAdmin: u.IsPrimaryAdmin,
		Verified:       u.Verified,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

// FromUsers maps a slice of domain users.
func FromUsers(users []*auth.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = FromUser(u)
	}
	return out
}

// SessionResponse is the result of a successful authentication.
type SessionResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

// FromSession creates a response from a domain session.
func FromSession(s *auth.Session) *SessionResponse {
	return &SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      FromUser(s.User),
	}
}

// RegisterResponse acknowledges a signup awaiting verification.
type RegisterResponse struct {
	User    *UserResponse `json:"user"`
	Message string        `json:"message"`
}
