package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
)

// Role of a pharmacy user.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RolePharmacist Role = "PHARMACIST"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePharmacist
}

var userEmailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// OTPPurpose says what a pending verification code unlocks.
type OTPPurpose string

const (
	// PurposeSignup verifies a freshly registered account
	PurposeSignup OTPPurpose = "signup"
	// PurposeProfileUpdate confirms a pending name/phone change
	PurposeProfileUpdate OTPPurpose = "profile_update"
)

// OTPTTL is how long a verification code stays valid.
const OTPTTL = 10 * time.Minute

// PendingVerification holds an outstanding OTP challenge together with
// the changes it will apply once confirmed.
type PendingVerification struct {
	Code      string     `db:"otp_code" json:"-"`
	ExpiresAt time.Time  `db:"otp_expires_at" json:"-"`
	Purpose   OTPPurpose `db:"otp_purpose" json:"-"`

	// Carried profile changes for PurposeProfileUpdate
	PendingName  *string `db:"pending_name" json:"-"`
	PendingPhone *string `db:"pending_phone" json:"-"`

	// PendingPasswordSet marks a co-worker invite that still needs its
	// first password
	PendingPasswordSet bool `db:"pending_password_set" json:"-"`
}

// IsExpired reports whether the code has lapsed.
func (p *PendingVerification) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Matches checks the submitted code against the challenge.
func (p *PendingVerification) Matches(code string) bool {
	return p.Code != "" && p.Code == strings.TrimSpace(code)
}

// User represents a pharmacy staff account.
type User struct {
	ID           id.ID   `db:"id" json:"id"`
	PharmacyID   string  `db:"pharmacy_id" json:"pharmacyId"`
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Phone        *string `db:"phone" json:"phone,omitempty"`
	Role         Role    `db:"role" json:"role"`

	// IsPrimaryAdmin marks the account created at registration; it can
	// never be deleted
	IsPrimaryAdmin bool `db:"is_primary_admin" json:"isPrimaryAdmin"`

	Verified bool `db:"verified" json:"verified"`

	// Pending is the outstanding OTP challenge, nil when none
	Pending *PendingVerification `db:"-" json:"-"`

	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	Version     int        `db:"version" json:"version"`
}

// NewUser creates a new unverified user.
func NewUser(pharmacyID, name, email, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		PharmacyID:   pharmacyID,
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if u.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if !userEmailRE.MatchString(u.Email) {
		return apperror.NewValidation("invalid email format").WithDetail("field", "email")
	}
	if !u.Role.Valid() {
		return apperror.NewValidation("role must be ADMIN or PHARMACIST").WithDetail("field", "role")
	}
	return nil
}

// CanLogin checks whether the account is allowed to authenticate.
func (u *User) CanLogin() error {
	if !u.Verified {
		return apperror.NewForbidden("Email not verified")
	}
	return nil
}

// RecordLogin stamps the login time.
func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

// Challenge sets a fresh OTP on the user.
func (u *User) Challenge(code string, purpose OTPPurpose) {
	u.Pending = &PendingVerification{
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(OTPTTL),
		Purpose:   purpose,
	}
}

// ClearChallenge drops the pending verification.
func (u *User) ClearChallenge() {
	u.Pending = nil
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates a pharmacy with its primary admin.
type RegisterRequest struct {
	PharmacyName string `json:"pharmacyName"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone,omitempty"`
}

// Session is the result of a successful authentication.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
