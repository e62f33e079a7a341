package dto

import (
	"time"

	"apotheca/internal/core/entity"
	"apotheca/internal/domain/pharmacy"
)

// PharmacyResponse represents pharmacy settings in API responses.
type PharmacyResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Address   *string           `json:"address,omitempty"`
	Phone     *string           `json:"phone,omitempty"`
	Email     *string           `json:"email,omitempty"`
	LicenseNo *string           `json:"licenseNo,omitempty"`
	LogoURL   *string           `json:"logoUrl,omitempty"`
	Settings  entity.Attributes `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// FromPharmacy creates a response from a domain pharmacy.
func FromPharmacy(p *pharmacy.Pharmacy) *PharmacyResponse {
	return &PharmacyResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Address:   p.Address,
		Phone:     p.Phone,
		Email:     p.Email,
		LicenseNo: p.LicenseNo,
		LogoURL:   p.LogoURL,
		Settings:  p.Attributes,
		CreatedAt: p.CreatedAt,
	}
}

// UpdatePharmacyRequest changes pharmacy settings. Only present fields
// are applied; settings keys merge into the stored custom fields.
type UpdatePharmacyRequest struct {
	Name      *string        `json:"name,omitempty"`
	Address   *string        `json:"address,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	Email     *string        `json:"email,omitempty" binding:"omitempty,email"`
	LicenseNo *string        `json:"licenseNo,omitempty"`
	Settings  map[string]any `json:"settings,omitempty"`
}

// ToSettings converts to domain settings changes.
func (r *UpdatePharmacyRequest) ToSettings() pharmacy.UpdateSettings {
	return pharmacy.UpdateSettings{
		Name:      r.Name,
		Address:   r.Address,
		Phone:     r.Phone,
		Email:     r.Email,
		LicenseNo: r.LicenseNo,
		Settings:  r.Settings,
	}
}
