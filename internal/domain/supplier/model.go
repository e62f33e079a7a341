// Package supplier provides the Supplier catalog.
package supplier

import (
	"context"
	"regexp"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/entity"
)

var gstRE = regexp.MustCompile(`^[0-9A-Z]{15}$`)

// Supplier represents a wholesale supplier the pharmacy purchases from.
type Supplier struct {
	entity.Catalog

	// ContactPerson is the name of the sales representative
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Mobile is the contact number
	Mobile *string `db:"mobile" json:"mobile,omitempty"`

	// Email is the contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Address is a free-form postal address
	Address *string `db:"address" json:"address,omitempty"`

	// GSTNo is the tax registration number (15 chars when present)
	GSTNo *string `db:"gst_no" json:"gstNo,omitempty"`
}

// NewSupplier creates a new Supplier.
func NewSupplier(pharmacyID, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(pharmacyID, name),
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.GSTNo != nil && *s.GSTNo != "" && !gstRE.MatchString(*s.GSTNo) {
		return apperror.NewValidation("GST number must be 15 alphanumeric characters").
			WithDetail("field", "gstNo")
	}

	return nil
}
