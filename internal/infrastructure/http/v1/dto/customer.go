package dto

import (
	"apotheca/internal/core/types"
	"apotheca/internal/domain/customer"
)

// CustomerResponse contains customer fields.
type CustomerResponse struct {
	BaseResponse
	Name      string      `json:"name"`
	Mobile    *string     `json:"mobile,omitempty"`
	Email     *string     `json:"email,omitempty"`
	Address   *string     `json:"address,omitempty"`
	TotalDebt types.Money `json:"totalDebt"`
}

// FromCustomer creates CustomerResponse from a Customer.
func FromCustomer(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		BaseResponse: FromBaseCatalog(c.BaseCatalog),
		Name:         c.Name,
		Mobile:       c.Mobile,
		Email:        c.Email,
		Address:      c.Address,
		TotalDebt:    c.TotalDebt,
	}
}

// CreateCustomerRequest for creating customers.
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Mobile  *string `json:"mobile"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// ToEntity converts the request to a Customer.
func (r CreateCustomerRequest) ToEntity(pharmacyID string) *customer.Customer {
	c := customer.NewCustomer(pharmacyID, r.Name)
	c.Mobile = r.Mobile
	c.Email = r.Email
	c.Address = r.Address
	return c
}

// UpdateCustomerRequest for updating customers.
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Mobile  *string `json:"mobile"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Version int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies changed fields onto an existing Customer.
func (r UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Mobile != nil {
		c.Mobile = r.Mobile
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	c.Version = r.Version
}

// ClearDebtResponse reports the outcome of a debt clearance.
type ClearDebtResponse struct {
	ClearedAmount types.Money `json:"clearedAmount"`
	BillsSettled  int64       `json:"billsSettled"`
}
