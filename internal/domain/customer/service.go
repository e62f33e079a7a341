package customer

import (
	"context"
	"strings"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/core/tx"
	"apotheca/internal/core/types"
	"apotheca/internal/domain"
)

// BillSettler marks a customer's outstanding bills as paid.
// Implemented by the bill repository; declared here so the customer
// package does not depend on the bill package.
type BillSettler interface {
	// MarkAllPaidForCustomer marks every unpaid bill of the customer as
	// paid and returns the number of bills settled.
	MarkAllPaidForCustomer(ctx context.Context, customerID id.ID) (int64, error)
}

// ClearDebtResult reports the outcome of a debt clearance.
type ClearDebtResult struct {
	ClearedAmount types.Money `json:"clearedAmount"`
	BillsSettled  int64       `json:"billsSettled"`
}

// Service provides business logic for customer management
type Service struct {
	*domain.CatalogService[*Customer]
	repo      Repository
	settler   BillSettler
	txManager tx.Manager
}

// NewService creates a new customer service
func NewService(repo Repository, settler BillSettler, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "customer",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		settler:        settler,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForSave)
	base.Hooks().OnBeforeUpdate(svc.prepareForSave)

	return svc
}

func (s *Service) prepareForSave(ctx context.Context, c *Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Mobile != nil {
		m := strings.TrimSpace(*c.Mobile)
		c.Mobile = &m
	}
	return nil
}

// Resolve finds an existing customer by name or mobile, creating one when
// no match exists. Used by bill creation for free-form customer references.
func (s *Service) Resolve(ctx context.Context, pharmacyID, name, mobile string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" && mobile == "" {
		return nil, apperror.NewValidation("customer name or mobile is required")
	}

	existing, err := s.repo.FindByNameOrMobile(ctx, name, mobile)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	c := NewCustomer(pharmacyID, name)
	if mobile != "" {
		c.Mobile = &mobile
	}
	if err := s.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AdjustDebt changes the customer's debt balance by delta inside the
// current transaction.
func (s *Service) AdjustDebt(ctx context.Context, customerID id.ID, delta types.Money) error {
	return s.repo.AdjustDebt(ctx, customerID, delta)
}

// ClearDebt settles the customer: all unpaid bills are marked paid and the
// debt balance is reset to zero, atomically. Returns the amount cleared.
func (s *Service) ClearDebt(ctx context.Context, customerID id.ID) (*ClearDebtResult, error) {
	var result ClearDebtResult

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetForUpdate(ctx, customerID)
		if err != nil {
			return err
		}

		settled, err := s.settler.MarkAllPaidForCustomer(ctx, customerID)
		if err != nil {
			return err
		}

		if err := s.repo.AdjustDebt(ctx, customerID, c.TotalDebt.Neg()); err != nil {
			return err
		}

		result.ClearedAmount = c.TotalDebt
		result.BillsSettled = settled
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ListDebtors returns customers with outstanding debt, largest first.
func (s *Service) ListDebtors(ctx context.Context, limit int) ([]*Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListDebtors(ctx, limit)
}
