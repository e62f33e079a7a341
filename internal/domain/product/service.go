package product

import (
	"context"
	"strings"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/tx"
	"apotheca/internal/domain"
)

// Service provides business logic for product management
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new product service
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkNameUnique)

	return svc
}

func (s *Service) checkNameUnique(ctx context.Context, p *Product) error {
	p.Name = strings.TrimSpace(p.Name)

	existing, err := s.repo.FindByName(ctx, p.Name)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil && existing.GetID() != p.GetID() {
		return apperror.NewDuplicate("product", "name", p.Name)
	}
	return nil
}

// Resolve finds a product by name, creating one when no match exists.
// Purchase lines reference products by free-form name.
func (s *Service) Resolve(ctx context.Context, pharmacyID, name string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewValidation("product name is required")
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	p := NewProduct(pharmacyID, name)
	if err := s.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
