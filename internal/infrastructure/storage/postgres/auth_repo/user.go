// Package auth_repo provides the PostgreSQL implementation of user
// storage. The pending OTP challenge is flattened into nullable columns
// on the users table and folded back into the value object on read.
package auth_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/auth"
	"apotheca/internal/infrastructure/storage/postgres"
)

const userCols = `
	id, pharmacy_id, name, email, password_hash, phone, role,
	is_primary_admin, verified,
	otp_code, otp_expires_at, otp_purpose,
	pending_name, pending_phone, pending_password_set,
	last_login_at, created_at, updated_at, version
`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

func (r *UserRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create creates a new user together with any pending verification.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (` + userCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	code, expiresAt, purpose, pendingName, pendingPhone, passwordSet := flattenPending(user.Pending)

	_, err := r.querier(ctx).Exec(ctx, query,
		user.ID, user.PharmacyID, user.Name, user.Email, user.PasswordHash,
		user.Phone, user.Role, user.IsPrimaryAdmin, user.Verified,
		code, expiresAt, purpose, pendingName, pendingPhone, passwordSet,
		user.LastLoginAt, user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, userID.String(), userID)
}

// GetByEmail retrieves a user by email, across pharmacies.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email, email)
}

// Update persists user data and the pending verification state.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	query := `
		UPDATE users SET
			name = $2,
			password_hash = $3,
			phone = $4,
			role = $5,
			verified = $6,
			otp_code = $7,
			otp_expires_at = $8,
			otp_purpose = $9,
			pending_name = $10,
			pending_phone = $11,
			pending_password_set = $12,
			last_login_at = $13,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $1 AND version = $14
	`

	code, expiresAt, purpose, pendingName, pendingPhone, passwordSet := flattenPending(user.Pending)

	result, err := r.querier(ctx).Exec(ctx, query,
		user.ID, user.Name, user.PasswordHash, user.Phone, user.Role,
		user.Verified, code, expiresAt, purpose, pendingName, pendingPhone,
		passwordSet, user.LastLoginAt, user.Version,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}

	user.Version++
	return nil
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	result, err := r.querier(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}

	return nil
}

// ListByPharmacy retrieves all users of a pharmacy.
func (r *UserRepo) ListByPharmacy(ctx context.Context, pharmacyID string) ([]*auth.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE pharmacy_id = $1 ORDER BY created_at ASC`

	rows, err := r.querier(ctx).Query(ctx, query, pharmacyID)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// ExistsByEmail checks whether the email is taken.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.querier(ctx).QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *UserRepo) scanUser(ctx context.Context, query, lookup string, arg any) (*auth.User, error) {
	rows, err := r.querier(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query user: %w", err)
		}
		return nil, apperror.NewNotFound("user", lookup)
	}

	return scanUserRow(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (*auth.User, error) {
	var user auth.User
	var (
		code        *string
		expiresAt   *time.Time
		purpose     *string
		pendingName *string
		pendingPh   *string
		passwordSet bool
	)

	err := row.Scan(
		&user.ID, &user.PharmacyID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Phone, &user.Role, &user.IsPrimaryAdmin, &user.Verified,
		&code, &expiresAt, &purpose,
		&pendingName, &pendingPh, &passwordSet,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &user.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", user.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if code != nil && expiresAt != nil {
		user.Pending = &auth.PendingVerification{
			Code:               *code,
			ExpiresAt:          *expiresAt,
			PendingName:        pendingName,
			PendingPhone:       pendingPh,
			PendingPasswordSet: passwordSet,
		}
		if purpose != nil {
			user.Pending.Purpose = auth.OTPPurpose(*purpose)
		}
	}

	return &user, nil
}

func flattenPending(p *auth.PendingVerification) (code *string, expiresAt *time.Time, purpose *string, pendingName, pendingPhone *string, passwordSet bool) {
	if p == nil {
		return nil, nil, nil, nil, nil, false
	}
	purposeStr := string(p.Purpose)
	return &p.Code, &p.ExpiresAt, &purposeStr, p.PendingName, p.PendingPhone, p.PendingPasswordSet
}

var _ auth.UserRepository = (*UserRepo)(nil)
