package pharmacy

import (
	"context"
	"strings"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/core/tx"
)

// Service provides business logic for pharmacy settings.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new pharmacy service
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Current returns the pharmacy of the authenticated user.
func (s *Service) Current(ctx context.Context) (*Pharmacy, error) {
	pharmacyID := appctx.GetPharmacyID(ctx)
	if pharmacyID == "" {
		return nil, apperror.NewUnauthorized("no pharmacy in context")
	}

	pid, err := id.Parse(pharmacyID)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("pharmacyId", pharmacyID)
	}

	p, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("pharmacy", pharmacyID)
		}
		return nil, err
	}
	return p, nil
}

// UpdateSettings applies the given changes to the current pharmacy.
// Only non-nil fields are updated. Settings carries free-form bill
// settings stored in the attributes column; a nil value drops the key.
type UpdateSettings struct {
	Name      *string
	Address   *string
	Phone     *string
	Email     *string
	LicenseNo *string
	Settings  map[string]any
}

// Update applies settings changes to the current pharmacy.
func (s *Service) Update(ctx context.Context, changes UpdateSettings) (*Pharmacy, error) {
	var updated *Pharmacy

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.Current(ctx)
		if err != nil {
			return err
		}

		if changes.Name != nil {
			name := strings.TrimSpace(*changes.Name)
			if name == "" {
				return apperror.NewValidation("pharmacy name cannot be empty").
					WithDetail("field", "name")
			}
			p.Name = name
		}
		if changes.Address != nil {
			p.Address = changes.Address
		}
		if changes.Phone != nil {
			p.Phone = changes.Phone
		}
		if changes.Email != nil {
			p.Email = changes.Email
		}
		if changes.LicenseNo != nil {
			p.LicenseNo = changes.LicenseNo
		}
		for key, value := range changes.Settings {
			if value == nil {
				p.Attributes.Delete(key)
				continue
			}
			p.Attributes.Set(key, value)
		}

		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SetLogoURL stores the object-storage URL of the uploaded logo.
func (s *Service) SetLogoURL(ctx context.Context, url string) (*Pharmacy, error) {
	var updated *Pharmacy

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.Current(ctx)
		if err != nil {
			return err
		}
		p.LogoURL = &url
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
