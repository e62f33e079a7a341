// Package inventory tracks physical stock per product batch.
// Rows are keyed by BatchKey: the normalized product name plus the
// normalized batch number, unique per pharmacy.
package inventory

import (
	"context"
	"strings"
	"time"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/entity"
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
)

// ExpiryHorizon is how far ahead the expiring-soon alert looks.
const ExpiryHorizon = 90 * 24 * time.Hour

// NormalizeKey lowercases and collapses interior whitespace. Both halves
// of a BatchKey go through it, so "Dolo 650 " and "dolo  650" land on
// the same row.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// BatchKey identifies one stock row within a pharmacy.
type BatchKey struct {
	NameKey string
	BatchNo string
}

// NewBatchKey builds a BatchKey from raw display values.
func NewBatchKey(productName, batchNo string) BatchKey {
	return BatchKey{
		NameKey: NormalizeKey(productName),
		BatchNo: NormalizeKey(batchNo),
	}
}

// String renders the key for storage ("name_key|batch_no").
func (k BatchKey) String() string {
	return k.NameKey + "|" + k.BatchNo
}

// Item represents one batch of one product in stock.
type Item struct {
	entity.Catalog // Name holds the raw product display name

	// NameKey is the normalized product name half of the BatchKey
	NameKey string `db:"name_key" json:"-"`

	// BatchNo is the raw batch number as printed on the strip
	BatchNo string `db:"batch_no" json:"batchNo"`

	// Key is the stored composite key (normalized name|normalized batch)
	Key string `db:"batch_key" json:"-"`

	// Quantity is the total units ever received for this batch
	Quantity int64 `db:"quantity" json:"quantity"`

	// AvailableQuantity is units on the shelf. Bills decrement it
	// unconditionally, so it can go negative.
	AvailableQuantity int64 `db:"available_quantity" json:"availableQuantity"`

	// PurchasePrice is the cost per unit from the latest purchase
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// MRP is the maximum retail price per unit
	MRP types.Money `db:"mrp" json:"mrp"`

	// UnitsPerPack and PackPrice describe the latest pack metadata
	UnitsPerPack int64       `db:"units_per_pack" json:"unitsPerPack"`
	PackPrice    types.Money `db:"pack_price" json:"packPrice"`

	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// SupplierID is a soft reference to the supplier of the latest receipt
	SupplierID   *id.ID `db:"supplier_id" json:"supplierId,omitempty"`
	SupplierName string `db:"supplier_name" json:"supplierName,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewItem creates a stock row for a fresh batch.
func NewItem(pharmacyID, productName, batchNo string) *Item {
	key := NewBatchKey(productName, batchNo)
	now := time.Now().UTC()
	return &Item{
		Catalog:   entity.NewCatalog(pharmacyID, strings.TrimSpace(productName)),
		NameKey:   key.NameKey,
		BatchNo:   strings.TrimSpace(batchNo),
		Key:       key.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BatchKey returns the composite key of the item.
func (i *Item) BatchKey() BatchKey {
	return BatchKey{NameKey: i.NameKey, BatchNo: NormalizeKey(i.BatchNo)}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}
	if i.NameKey == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "productName")
	}
	if i.UnitsPerPack < 0 {
		return apperror.NewValidation("units per pack cannot be negative").
			WithDetail("field", "unitsPerPack")
	}
	return nil
}

// IsExpired reports whether the batch expired before now.
func (i *Item) IsExpired(now time.Time) bool {
	return i.ExpiryDate != nil && i.ExpiryDate.Before(now)
}

// IsExpiringSoon reports whether the batch expires within the horizon.
func (i *Item) IsExpiringSoon(now time.Time) bool {
	if i.ExpiryDate == nil || i.IsExpired(now) {
		return false
	}
	return i.ExpiryDate.Before(now.Add(ExpiryHorizon))
}
