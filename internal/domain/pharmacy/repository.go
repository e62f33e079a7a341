package pharmacy

import (
	"context"

	"apotheca/internal/core/id"
)

// Repository defines data access for pharmacies.
// Pharmacies are not pharmacy-scoped themselves, so this does not embed
// the generic catalog repository.
type Repository interface {
	Create(ctx context.Context, p *Pharmacy) error
	GetByID(ctx context.Context, pharmacyID id.ID) (*Pharmacy, error)
	Update(ctx context.Context, p *Pharmacy) error
}
