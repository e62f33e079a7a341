// Package customer provides the Customer catalog.
// Customers carry a running debt balance maintained by the bill lifecycle.
package customer

import (
	"context"
	"regexp"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/entity"
	"apotheca/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Customer represents a pharmacy customer.
type Customer struct {
	entity.Catalog

	// Mobile is the primary contact number. Customers created implicitly
	// during billing are matched by name OR mobile.
	Mobile *string `db:"mobile" json:"mobile,omitempty"`

	// Email is the contact email, used for bill delivery
	Email *string `db:"email" json:"email,omitempty"`

	// Address is a free-form postal address
	Address *string `db:"address" json:"address,omitempty"`

	// TotalDebt is the running balance of unpaid bill amounts.
	// Not clamped: miscounted adjustments can drive it negative.
	TotalDebt types.Money `db:"total_debt" json:"totalDebt"`
}

// NewCustomer creates a new Customer with zero debt.
func NewCustomer(pharmacyID, name string) *Customer {
	return &Customer{
		Catalog:   entity.NewCatalog(pharmacyID, name),
		TotalDebt: types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// HasDebt returns true if the customer owes anything.
func (c *Customer) HasDebt() bool {
	return c.TotalDebt.IsPositive()
}
