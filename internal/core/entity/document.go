package entity

import (
	"context"
	"time"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: Purchase, Bill.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within pharmacy+type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// PharmacyID is the owning pharmacy (tenant scoping, required)
	PharmacyID string `db:"pharmacy_id" json:"pharmacyId"`

	// Notes is an optional user comment
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(pharmacyID string) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		PharmacyID:   pharmacyID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.PharmacyID == "" {
		return apperror.NewValidation("pharmacy is required").
			WithDetail("field", "pharmacyId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}
