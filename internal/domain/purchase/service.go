package purchase

import (
	"context"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/core/numerator"
	"apotheca/internal/core/tx"
	"apotheca/internal/domain/audit"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/domain/supplier"
)

// Service provides business logic for purchase recording.
type Service struct {
	repo      Repository
	inventory *inventory.Service
	suppliers *supplier.Service
	numerator numerator.Generator
	audit     audit.Logger
	txManager tx.Manager
}

// NewService creates a new purchase service
func NewService(
	repo Repository,
	inv *inventory.Service,
	suppliers *supplier.Service,
	gen numerator.Generator,
	auditLog audit.Logger,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		inventory: inv,
		suppliers: suppliers,
		numerator: gen,
		audit:     auditLog,
		txManager: txManager,
	}
}

var numberConfig = numerator.DefaultConfig("PUR")

// Create records a purchase: the document number is assigned, every line
// is applied to stock by BatchKey, and the document is persisted. All of
// it commits or rolls back as one transaction.
func (s *Service) Create(ctx context.Context, p *Purchase) error {
	if p.PharmacyID == "" {
		p.PharmacyID = appctx.GetPharmacyID(ctx)
	}
	if err := p.Validate(ctx); err != nil {
		return err
	}

	audit.EnrichCreatedByDirect(ctx, &p.CreatedBy, &p.UpdatedBy)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.resolveSupplier(ctx, p); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numberConfig, numerator.DefaultOptions(), p.Date)
		if err != nil {
			return err
		}
		p.Number = number

		if err := s.applyToStock(ctx, p); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, "purchase", p.ID, audit.ActionCreate, map[string]any{
			"number":       p.Number,
			"supplier":     p.SupplierName,
			"items":        len(p.Items),
			"total_amount": p.TotalAmount,
		})
	})
}

// Update replaces the document's lines: old contributions are backed out
// of stock, the new set is applied, and the document is overwritten with
// an optimistic version check.
func (s *Service) Update(ctx context.Context, p *Purchase) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	audit.EnrichUpdatedByDirect(ctx, &p.UpdatedBy)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetForUpdate(ctx, p.ID)
		if err != nil {
			return s.notFound(err, p.ID)
		}

		if err := s.reverseStock(ctx, old); err != nil {
			return err
		}

		if err := s.resolveSupplier(ctx, p); err != nil {
			return err
		}

		p.Number = old.Number
		p.CreatedAt = old.CreatedAt
		p.CreatedBy = old.CreatedBy
		p.Touch()

		if err := s.applyToStock(ctx, p); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, "purchase", p.ID, audit.ActionUpdate, map[string]any{
			"number":       p.Number,
			"items":        len(p.Items),
			"total_amount": p.TotalAmount,
		})
	})
}

// Delete reverses every line's stock contribution and removes the
// document. There is no sold-since check: deleting a purchase whose
// stock has been billed drives availability negative.
func (s *Service) Delete(ctx context.Context, purchaseID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return s.notFound(err, purchaseID)
		}

		if err := s.reverseStock(ctx, p); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, purchaseID); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, "purchase", purchaseID, audit.ActionDelete, map[string]any{
			"number": p.Number,
		})
	})
}

// GetByID retrieves a purchase with its lines.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, s.notFound(err, purchaseID)
	}
	return p, nil
}

// List retrieves purchases with filtering and pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) resolveSupplier(ctx context.Context, p *Purchase) error {
	if p.SupplierID != nil || p.SupplierName == "" {
		return nil
	}
	sup, err := s.suppliers.Resolve(ctx, p.PharmacyID, p.SupplierName)
	if err != nil {
		return err
	}
	supID := sup.ID
	p.SupplierID = &supID
	p.SupplierName = sup.Name
	return nil
}

func (s *Service) applyToStock(ctx context.Context, p *Purchase) error {
	for _, item := range p.Items {
		_, err := s.inventory.Receive(ctx, p.PharmacyID, inventory.ReceiptLine{
			ProductName:  item.ProductName,
			BatchNo:      item.BatchNo,
			ExpiryDate:   item.ExpiryDate,
			TotalUnits:   item.TotalUnits,
			PricePerUnit: item.PricePerUnit,
			MRP:          item.MRP,
			UnitsPerPack: item.UnitsPerPack,
			PackPrice:    item.PackPrice,
			SupplierID:   p.SupplierID,
			SupplierName: p.SupplierName,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) reverseStock(ctx context.Context, p *Purchase) error {
	for _, item := range p.Items {
		key := inventory.NewBatchKey(item.ProductName, item.BatchNo)
		if err := s.inventory.Reverse(ctx, key, item.TotalUnits); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) notFound(err error, purchaseID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("purchase", purchaseID.String())
	}
	return err
}
