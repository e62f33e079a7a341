package dto

import (
	"apotheca/internal/domain/supplier"
)

// SupplierResponse contains supplier fields.
type SupplierResponse struct {
	BaseResponse
	Name          string  `json:"name"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Mobile        *string `json:"mobile,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	GSTNo         *string `json:"gstNo,omitempty"`
}

// FromSupplier creates SupplierResponse from a Supplier.
func FromSupplier(s *supplier.Supplier) SupplierResponse {
	return SupplierResponse{
		BaseResponse:  FromBaseCatalog(s.BaseCatalog),
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Mobile:        s.Mobile,
		Email:         s.Email,
		Address:       s.Address,
		GSTNo:         s.GSTNo,
	}
}

// CreateSupplierRequest for creating suppliers.
type CreateSupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson"`
	Mobile        *string `json:"mobile"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	GSTNo         *string `json:"gstNo"`
}

// ToEntity converts the request to a Supplier.
func (r CreateSupplierRequest) ToEntity(pharmacyID string) *supplier.Supplier {
	s := supplier.NewSupplier(pharmacyID, r.Name)
	s.ContactPerson = r.ContactPerson
	s.Mobile = r.Mobile
	s.Email = r.Email
	s.Address = r.Address
	s.GSTNo = r.GSTNo
	return s
}

// UpdateSupplierRequest for updating suppliers.
type UpdateSupplierRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Mobile        *string `json:"mobile"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	GSTNo         *string `json:"gstNo"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies changed fields onto an existing Supplier.
func (r UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.ContactPerson != nil {
		s.ContactPerson = r.ContactPerson
	}
	if r.Mobile != nil {
		s.Mobile = r.Mobile
	}
	if r.Email != nil {
		s.Email = r.Email
	}
	if r.Address != nil {
		s.Address = r.Address
	}
	if r.GSTNo != nil {
		s.GSTNo = r.GSTNo
	}
	s.Version = r.Version
}
