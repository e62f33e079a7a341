package entity

import (
	"context"

	"apotheca/internal/core/apperror"
)

// Catalog is the base type for pharmacy-scoped reference data.
// Examples: Products, Suppliers, Customers.
type Catalog struct {
	BaseCatalog

	// PharmacyID scopes the record to its owning pharmacy (tenant)
	PharmacyID string `db:"pharmacy_id" json:"pharmacyId"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(pharmacyID, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		PharmacyID:  pharmacyID,
		Name:        name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.PharmacyID == "" {
		return apperror.NewValidation("pharmacy is required").
			WithDetail("field", "pharmacyId")
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
