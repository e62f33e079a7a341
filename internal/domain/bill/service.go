package bill

import (
	"context"
	"time"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/core/numerator"
	"apotheca/internal/core/tx"
	"apotheca/internal/core/types"
	"apotheca/internal/domain/audit"
	"apotheca/internal/domain/customer"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/domain/pharmacy"
)

// Deps bundles the bill service collaborators.
type Deps struct {
	Repo       Repository
	Customers  *customer.Service
	Inventory  *inventory.Service
	Pharmacies *pharmacy.Service
	Numerator  numerator.Generator
	Audit      audit.Logger
	TxManager  tx.Manager

	// Rendering collaborators, may be nil when PDF/email is disabled
	Renderer Renderer
	Store    ObjectStore
	Mailer   Mailer
}

// Service provides business logic for billing.
type Service struct {
	repo       Repository
	customers  *customer.Service
	inventory  *inventory.Service
	pharmacies *pharmacy.Service
	numerator  numerator.Generator
	audit      audit.Logger
	txManager  tx.Manager

	renderer Renderer
	store    ObjectStore
	mailer   Mailer
}

// NewService creates a new bill service
func NewService(deps Deps) *Service {
	return &Service{
		repo:       deps.Repo,
		customers:  deps.Customers,
		inventory:  deps.Inventory,
		pharmacies: deps.Pharmacies,
		numerator:  deps.Numerator,
		audit:      deps.Audit,
		txManager:  deps.TxManager,
		renderer:   deps.Renderer,
		store:      deps.Store,
		mailer:     deps.Mailer,
	}
}

var numberConfig = numerator.DefaultConfig("BILL")

// Create generates a bill: the customer is resolved (or created, or left
// as walk-in), non-manual lines draw down inventory, an unpaid total is
// added to the customer's debt, and the document is persisted under a
// fresh bill number. One transaction for the whole flow.
func (s *Service) Create(ctx context.Context, b *Bill) error {
	if b.PharmacyID == "" {
		b.PharmacyID = appctx.GetPharmacyID(ctx)
	}
	if err := b.Validate(ctx); err != nil {
		return err
	}

	audit.EnrichCreatedByDirect(ctx, &b.CreatedBy, &b.UpdatedBy)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.resolveCustomer(ctx, b); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numberConfig, numerator.DefaultOptions(), b.Date)
		if err != nil {
			return err
		}
		b.Number = number

		if err := s.drawDownStock(ctx, b); err != nil {
			return err
		}

		if !b.IsPaid && b.CustomerID != nil {
			if err := s.customers.AdjustDebt(ctx, *b.CustomerID, b.GrandTotal); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, b); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, "bill", b.ID, audit.ActionCreate, map[string]any{
			"number":      b.Number,
			"customer":    b.CustomerName,
			"items":       len(b.Items),
			"grand_total": b.GrandTotal,
			"is_paid":     b.IsPaid,
		})
	})
}

// UpdateInput carries a partial bill update. Nil fields are untouched.
type UpdateInput struct {
	CustomerName    *string
	CustomerMobile  *string
	Notes           *string
	DueDate         *time.Time
	DiscountPercent *types.Money
	IsPaid          *bool
	PaymentDate     *time.Time
}

// Update applies a partial update. A discount change recomputes the
// discount amount and grand total from the stored subtotal only; lines
// and profit are left untouched. Paid-state flips move the grand total
// in or out of the customer's debt.
func (s *Service) Update(ctx context.Context, billID id.ID, in UpdateInput) (*Bill, error) {
	var updated *Bill

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, billID)
		if err != nil {
			return s.notFound(err, billID)
		}

		if in.CustomerName != nil {
			b.CustomerName = *in.CustomerName
		}
		if in.CustomerMobile != nil {
			b.CustomerMobile = *in.CustomerMobile
		}
		if in.Notes != nil {
			b.Notes = *in.Notes
		}
		if in.DueDate != nil {
			b.DueDate = in.DueDate
		}
		if in.DiscountPercent != nil {
			if in.DiscountPercent.IsNegative() {
				return apperror.NewValidation("discount percent cannot be negative").
					WithDetail("field", "discountPercent")
			}
			b.ApplyDiscountPercent(*in.DiscountPercent)
		}
		if in.PaymentDate != nil {
			b.PaymentDate = in.PaymentDate
		}

		if in.IsPaid != nil && *in.IsPaid != b.IsPaid {
			if err := s.flipPaid(ctx, b, *in.IsPaid, in.PaymentDate); err != nil {
				return err
			}
		}

		b.Touch()
		audit.EnrichUpdatedByDirect(ctx, &b.UpdatedBy)

		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}

		updated = b
		return s.audit.LogChange(ctx, "bill", b.ID, audit.ActionUpdate, map[string]any{
			"number":      b.Number,
			"grand_total": b.GrandTotal,
			"is_paid":     b.IsPaid,
		})
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// MarkPaid settles the bill: debt is reduced by the grand total and the
// payment timestamps are stamped.
func (s *Service) MarkPaid(ctx context.Context, billID id.ID) (*Bill, error) {
	var updated *Bill

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, billID)
		if err != nil {
			return s.notFound(err, billID)
		}

		if b.IsPaid {
			return apperror.NewBusinessRule("bill_already_paid", "Bill already paid")
		}

		if err := s.flipPaid(ctx, b, true, nil); err != nil {
			return err
		}

		b.Touch()
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}

		updated = b
		return s.audit.LogChange(ctx, "bill", b.ID, audit.ActionMarkPaid, map[string]any{
			"number":      b.Number,
			"grand_total": b.GrandTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the bill. With restoreInventory, every non-manual line
// whose reference is a real inventory row puts its quantity back on the
// shelf. An unpaid bill's total is taken back out of the customer's debt.
func (s *Service) Delete(ctx context.Context, billID id.ID, restoreInventory bool) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, billID)
		if err != nil {
			return s.notFound(err, billID)
		}

		if restoreInventory {
			if err := s.restoreStock(ctx, b); err != nil {
				return err
			}
		}

		if !b.IsPaid && b.CustomerID != nil {
			if err := s.customers.AdjustDebt(ctx, *b.CustomerID, b.GrandTotal.Neg()); err != nil {
				return err
			}
		}

		if err := s.repo.Delete(ctx, billID); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, "bill", billID, audit.ActionDelete, map[string]any{
			"number":             b.Number,
			"restored_inventory": restoreInventory,
		})
	})
}

// GetByID retrieves a bill with its lines.
func (s *Service) GetByID(ctx context.Context, billID id.ID) (*Bill, error) {
	b, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, s.notFound(err, billID)
	}
	return b, nil
}

// List retrieves bills with filtering and pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

// ListByCustomer returns all of a customer's bills, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID id.ID) ([]*Bill, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// resolveCustomer fills the customer linkage: an explicit id is loaded,
// a name or mobile finds or creates a record, and nothing at all leaves
// a walk-in bill.
func (s *Service) resolveCustomer(ctx context.Context, b *Bill) error {
	if b.CustomerID != nil {
		c, err := s.customers.GetByID(ctx, *b.CustomerID)
		if err != nil {
			return err
		}
		b.CustomerName = c.Name
		if c.Mobile != nil {
			b.CustomerMobile = *c.Mobile
		}
		return nil
	}

	if b.CustomerName == "" || b.CustomerName == WalkInName {
		if b.CustomerMobile == "" {
			b.CustomerName = WalkInName
			return nil
		}
	}

	c, err := s.customers.Resolve(ctx, b.PharmacyID, b.CustomerName, b.CustomerMobile)
	if err != nil {
		return err
	}
	cid := c.ID
	b.CustomerID = &cid
	b.CustomerName = c.Name
	return nil
}

// drawDownStock decrements availability for every line referencing a
// real inventory row and tallies the billed-quantity counters.
// Decrements are unconditional: overselling is allowed.
func (s *Service) drawDownStock(ctx context.Context, b *Bill) error {
	b.InventoryBilledQty = 0
	b.NegativeBilledQty = 0

	for i := range b.Items {
		item := &b.Items[i]
		if item.IsManual || IsNegativeRef(item.InventoryRef) {
			b.NegativeBilledQty += item.Quantity
			continue
		}

		itemID, err := id.Parse(item.InventoryRef)
		if err != nil {
			return apperror.NewValidation("invalid inventory reference").
				WithDetail("line", item.LineNo).
				WithDetail("inventoryId", item.InventoryRef)
		}

		if err := s.inventory.DecrementAvailable(ctx, itemID, item.Quantity); err != nil {
			return err
		}
		b.InventoryBilledQty += item.Quantity
	}

	return nil
}

func (s *Service) restoreStock(ctx context.Context, b *Bill) error {
	for _, item := range b.Items {
		if item.IsManual || item.InventoryRef == "" || IsNegativeRef(item.InventoryRef) {
			continue
		}
		itemID, err := id.Parse(item.InventoryRef)
		if err != nil {
			continue
		}
		if err := s.inventory.RestoreAvailable(ctx, itemID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// flipPaid toggles the paid state and moves the grand total in or out of
// the customer's debt. No floor on the balance.
func (s *Service) flipPaid(ctx context.Context, b *Bill, paid bool, paymentDate *time.Time) error {
	if paid {
		now := time.Now().UTC()
		b.IsPaid = true
		b.PaidAt = &now
		if paymentDate != nil {
			b.PaymentDate = paymentDate
		} else {
			b.PaymentDate = &now
		}
		if b.CustomerID != nil {
			return s.customers.AdjustDebt(ctx, *b.CustomerID, b.GrandTotal.Neg())
		}
		return nil
	}

	b.IsPaid = false
	b.PaidAt = nil
	b.PaymentDate = nil
	if b.CustomerID != nil {
		return s.customers.AdjustDebt(ctx, *b.CustomerID, b.GrandTotal)
	}
	return nil
}

func (s *Service) notFound(err error, billID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("bill", billID.String())
	}
	return err
}
