package inventory

import (
	"context"
	"time"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/core/tx"
	"apotheca/internal/core/types"
	"apotheca/internal/domain"
)

// ReceiptLine is one purchased batch applied to stock.
type ReceiptLine struct {
	ProductName  string
	BatchNo      string
	ExpiryDate   *time.Time
	TotalUnits   int64
	PricePerUnit types.Money
	MRP          types.Money
	UnitsPerPack int64
	PackPrice    types.Money
	SupplierID   *id.ID
	SupplierName string
}

// Alerts groups the three stock warning lists.
type Alerts struct {
	LowStock []*Item `json:"lowStock"`
	Expiring []*Item `json:"expiring"`
	Expired  []*Item `json:"expired"`
}

// Service provides business logic for stock management
type Service struct {
	*domain.CatalogService[*Item]
	repo Repository
}

// NewService creates a new inventory service
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "inventory item",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// Receive applies one purchased batch to stock. An existing row for the
// BatchKey is incremented and its price metadata overwritten
// (last-write-wins); otherwise a fresh row is inserted. Must be called
// within the purchase transaction.
func (s *Service) Receive(ctx context.Context, pharmacyID string, line ReceiptLine) (*Item, error) {
	key := NewBatchKey(line.ProductName, line.BatchNo)

	item, err := s.repo.FindByBatchKey(ctx, key)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	if item != nil {
		// One statement: the quantity increment rides the same
		// version-checked UPDATE as the metadata overwrite.
		item.Quantity += line.TotalUnits
		item.AvailableQuantity += line.TotalUnits
		s.overwriteMetadata(item, line)
		if err := s.repo.Update(ctx, item); err != nil {
			return nil, err
		}
		item.Version++
		return item, nil
	}

	item = NewItem(pharmacyID, line.ProductName, line.BatchNo)
	item.Quantity = line.TotalUnits
	item.AvailableQuantity = line.TotalUnits
	s.overwriteMetadata(item, line)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) overwriteMetadata(item *Item, line ReceiptLine) {
	item.PurchasePrice = line.PricePerUnit
	item.MRP = line.MRP
	item.UnitsPerPack = line.UnitsPerPack
	item.PackPrice = line.PackPrice
	item.ExpiryDate = line.ExpiryDate
	item.SupplierID = line.SupplierID
	item.SupplierName = line.SupplierName
	item.UpdatedAt = time.Now().UTC()
}

// Reverse backs one receipt out of stock, as when a purchase is edited
// or deleted. No floor: reversing sold-through stock goes negative.
func (s *Service) Reverse(ctx context.Context, key BatchKey, totalUnits int64) error {
	item, err := s.repo.FindByBatchKey(ctx, key)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Row was deleted out-of-band; nothing to reverse.
			return nil
		}
		return err
	}
	return s.repo.ApplyDelta(ctx, item.ID, -totalUnits, -totalUnits)
}

// DecrementAvailable removes sold units from the shelf. Unconditional:
// selling past availability is allowed and drives the count negative.
func (s *Service) DecrementAvailable(ctx context.Context, itemID id.ID, qty int64) error {
	return s.repo.ApplyDelta(ctx, itemID, 0, -qty)
}

// RestoreAvailable puts units back on the shelf after a bill deletion.
func (s *Service) RestoreAvailable(ctx context.Context, itemID id.ID, qty int64) error {
	return s.repo.ApplyDelta(ctx, itemID, 0, qty)
}

// Search returns items ranked by match quality.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Item, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.repo.Search(ctx, query, limit)
}

// GetAlerts collects the low-stock, expiring and expired lists.
func (s *Service) GetAlerts(ctx context.Context) (*Alerts, error) {
	low, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	expiring, err := s.repo.ListExpiring(ctx)
	if err != nil {
		return nil, err
	}
	expired, err := s.repo.ListExpired(ctx)
	if err != nil {
		return nil, err
	}
	return &Alerts{LowStock: low, Expiring: expiring, Expired: expired}, nil
}

// Adjust describes a manual stock correction.
type Adjust struct {
	Quantity          *int64
	AvailableQuantity *int64
	PurchasePrice     *types.Money
	MRP               *types.Money
	ExpiryDate        *time.Time
}

// Adjust applies a manual correction to a stock row.
func (s *Service) Adjust(ctx context.Context, itemID id.ID, adj Adjust) (*Item, error) {
	item, err := s.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if adj.Quantity != nil {
		item.Quantity = *adj.Quantity
	}
	if adj.AvailableQuantity != nil {
		item.AvailableQuantity = *adj.AvailableQuantity
	}
	if adj.PurchasePrice != nil {
		item.PurchasePrice = *adj.PurchasePrice
	}
	if adj.MRP != nil {
		item.MRP = *adj.MRP
	}
	if adj.ExpiryDate != nil {
		item.ExpiryDate = adj.ExpiryDate
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes the stock row entirely.
func (s *Service) Remove(ctx context.Context, itemID id.ID) error {
	if _, err := s.GetByID(ctx, itemID); err != nil {
		return err
	}
	return s.repo.HardDelete(ctx, itemID)
}
