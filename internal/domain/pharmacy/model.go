// Package pharmacy provides the Pharmacy aggregate.
// A pharmacy is the tenancy root: every other record carries its id.
package pharmacy

import (
	"context"
	"time"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/entity"
)

// Pharmacy represents a registered pharmacy (tenant).
type Pharmacy struct {
	entity.BaseCatalog

	// Name is the trading name shown on bills
	Name string `db:"name" json:"name"`

	// Address is the street address printed on bills
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the contact number printed on bills
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the pharmacy's contact email
	Email *string `db:"email" json:"email,omitempty"`

	// LicenseNo is the drug license number
	LicenseNo *string `db:"license_no" json:"licenseNo,omitempty"`

	// LogoURL points at the uploaded logo in object storage
	LogoURL *string `db:"logo_url" json:"logoUrl,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewPharmacy creates a new Pharmacy.
func NewPharmacy(name string) *Pharmacy {
	return &Pharmacy{
		BaseCatalog: entity.NewBaseCatalog(),
		Name:        name,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate implements entity.Validatable interface.
func (p *Pharmacy) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("pharmacy name is required").
			WithDetail("field", "name")
	}
	return nil
}
