package supplier

import (
	"context"
	"strings"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/tx"
	"apotheca/internal/domain"
)

// Service provides business logic for supplier management
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new supplier service
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, sup *Supplier) error {
	sup.Name = strings.TrimSpace(sup.Name)

	existing, err := s.repo.FindByName(ctx, sup.Name)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil && existing.GetID() != sup.GetID() {
		return apperror.NewDuplicate("supplier", "name", sup.Name)
	}
	return nil
}

// Resolve finds a supplier by name, creating one when no match exists.
// Purchases reference suppliers by free-form name.
func (s *Service) Resolve(ctx context.Context, pharmacyID, name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewValidation("supplier name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	sup := NewSupplier(pharmacyID, name)
	if err := s.Create(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}
