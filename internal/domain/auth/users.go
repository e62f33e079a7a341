package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/pkg/logger"
)

// CreateUserRequest invites a co-worker into the current pharmacy.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
	Password string `json:"password,omitempty"`
}

// CreateUser creates a co-worker account in the caller's pharmacy.
// Without a password the invite goes out with a code and the first
// password is set on verification.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	pharmacyID := appctx.GetPharmacyID(ctx)
	if pharmacyID == "" {
		return nil, apperror.NewUnauthorized("no pharmacy in context")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", email)
	}

	passwordSet := req.Password != ""
	passwordHash := ""
	if passwordSet {
		if err := s.validatePassword(req.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = string(hash)
	}

	user := NewUser(pharmacyID, req.Name, email, passwordHash, req.Role)
	if req.Phone != "" {
		phone := req.Phone
		user.Phone = &phone
	}

	code, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	user.Challenge(code, PurposeSignup)
	user.Pending.PendingPasswordSet = !passwordSet

	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.sendOTP(ctx, user, code)

	logger.Info(ctx, "user created",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	return user, nil
}

// ListUsers returns every account of the caller's pharmacy.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	pharmacyID := appctx.GetPharmacyID(ctx)
	if pharmacyID == "" {
		return nil, apperror.NewUnauthorized("no pharmacy in context")
	}
	return s.userRepo.ListByPharmacy(ctx, pharmacyID)
}

// DeleteUser removes a co-worker account. The primary admin is
// protected.
func (s *Service) DeleteUser(ctx context.Context, userID id.ID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.NewNotFound("user", userID.String())
	}

	if user.PharmacyID != appctx.GetPharmacyID(ctx) {
		return apperror.NewNotFound("user", userID.String())
	}
	if user.IsPrimaryAdmin {
		return apperror.NewForbidden("Cannot delete primary admin")
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "user deleted",
		"user_id", userID,
		"email", user.Email)
	return nil
}

// RequestProfileUpdate stages a name/phone change behind an OTP. The
// change applies when VerifyOTP confirms the code.
func (s *Service) RequestProfileUpdate(ctx context.Context, name, phone *string) error {
	user, err := s.Me(ctx)
	if err != nil {
		return err
	}
	if name == nil && phone == nil {
		return apperror.NewValidation("nothing to update")
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	user.Challenge(code, PurposeProfileUpdate)
	user.Pending.PendingName = name
	user.Pending.PendingPhone = phone

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	s.sendOTP(ctx, user, code)
	return nil
}
