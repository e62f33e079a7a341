package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/core/tx"
	"apotheca/internal/domain/pharmacy"
	"apotheca/pkg/logger"
)

// timeNow is replaceable in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// Mailer delivers verification codes.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength: 8,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service provides authentication and user management logic.
type Service struct {
	userRepo     UserRepository
	pharmacyRepo pharmacy.Repository
	txManager    tx.Manager
	jwtService   *JWTService
	mailer       Mailer
	config       ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	pharmacyRepo pharmacy.Repository,
	txManager tx.Manager,
	jwtService *JWTService,
	mailer Mailer,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:     userRepo,
		pharmacyRepo: pharmacyRepo,
		txManager:    txManager,
		jwtService:   jwtService,
		mailer:       mailer,
		config:       config,
	}
}

// Register creates a pharmacy together with its primary admin account.
// The account starts unverified; a 6-digit code goes out by mail.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if strings.TrimSpace(req.PharmacyName) == "" {
		return nil, apperror.NewValidation("pharmacy name is required").
			WithDetail("field", "pharmacyName")
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ph := pharmacy.NewPharmacy(strings.TrimSpace(req.PharmacyName))

	user := NewUser(ph.ID.String(), req.Name, email, string(passwordHash), RoleAdmin)
	user.IsPrimaryAdmin = true
	if req.Phone != "" {
		phone := req.Phone
		user.Phone = &phone
	}

	code, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	user.Challenge(code, PurposeSignup)

	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.pharmacyRepo.Create(ctx, ph); err != nil {
			return fmt.Errorf("create pharmacy: %w", err)
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendOTP(ctx, user, code)

	logger.Info(ctx, "pharmacy registered",
		"pharmacy_id", ph.ID,
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// VerifyOTP checks the submitted code. A signup code marks the account
// verified; a profile-update code applies the pending changes; an invite
// awaiting its first password takes one here. Either way a fresh session
// is issued.
func (s *Service) VerifyOTP(ctx context.Context, email, code, newPassword string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperror.NewNotFound("user", email)
	}

	if user.Pending == nil {
		return nil, apperror.NewValidation("no pending verification")
	}
	if !user.Pending.Matches(code) || user.Pending.IsExpired(timeNow()) {
		return nil, apperror.NewValidation("Invalid or expired OTP")
	}

	switch user.Pending.Purpose {
	case PurposeSignup:
		user.Verified = true
		if user.Pending.PendingPasswordSet {
			if err := s.validatePassword(newPassword); err != nil {
				return nil, err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = string(hash)
		}
	case PurposeProfileUpdate:
		if user.Pending.PendingName != nil {
			user.Name = *user.Pending.PendingName
		}
		if user.Pending.PendingPhone != nil {
			user.Phone = user.Pending.PendingPhone
		}
	}
	user.ClearChallenge()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return s.newSession(user)
}

// ResendOTP issues a fresh code for an outstanding challenge.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return apperror.NewNotFound("user", email)
	}

	purpose := PurposeSignup
	if user.Pending != nil {
		purpose = user.Pending.Purpose
	} else if user.Verified {
		return apperror.NewValidation("no pending verification")
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	pending := user.Pending
	user.Challenge(code, purpose)
	if pending != nil {
		user.Pending.PendingName = pending.PendingName
		user.Pending.PendingPhone = pending.PendingPhone
		user.Pending.PendingPasswordSet = pending.PendingPasswordSet
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	s.sendOTP(ctx, user, code)
	return nil
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	user.RecordLogin()
	_ = s.userRepo.Update(ctx, user)

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"email", user.Email)

	return s.newSession(user)
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return nil, apperror.NewUnauthorized("not authenticated")
	}
	uid, err := id.Parse(userID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid user id in token")
	}
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID)
	}
	return user, nil
}

func (s *Service) newSession(user *User) (*Session, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) validatePassword(password string) error {
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	return nil
}

func (s *Service) sendOTP(ctx context.Context, user *User, code string) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	if err := s.mailer.Send(ctx, user.Email, "Your verification code", body); err != nil {
		// The account stays; the code can be resent.
		logger.Warn(ctx, "failed to send otp mail",
			"user_id", user.ID,
			"error", err)
	}
}

// generateOTP returns a 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
