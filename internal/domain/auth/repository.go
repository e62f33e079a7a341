package auth

import (
	"context"

	"apotheca/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user together with any pending verification.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves a user by email, across pharmacies.
	// Emails are globally unique and stored lowercase.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update persists user data and the pending verification state.
	Update(ctx context.Context, user *User) error

	// Delete removes a user.
	Delete(ctx context.Context, userID id.ID) error

	// ListByPharmacy retrieves all users of a pharmacy.
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]*User, error)

	// ExistsByEmail checks whether the email is taken.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
