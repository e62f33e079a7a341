package inventory

import (
	"context"

	"apotheca/internal/core/id"
	"apotheca/internal/domain"
)

// Repository defines data access for stock items.
type Repository interface {
	domain.CatalogRepository[*Item]

	// FindByBatchKey returns the stock row for the key, or not-found.
	FindByBatchKey(ctx context.Context, key BatchKey) (*Item, error)

	// ApplyDelta atomically adds the deltas to quantity and
	// available_quantity. Must be called within a transaction.
	ApplyDelta(ctx context.Context, itemID id.ID, qtyDelta, availDelta int64) error

	// Search returns items ranked by match quality: exact name first,
	// then name prefix, then description prefix, then substring.
	Search(ctx context.Context, query string, limit int) ([]*Item, error)

	// ListLowStock returns items at or below their product's threshold
	// (default threshold when the product has none).
	ListLowStock(ctx context.Context) ([]*Item, error)

	// ListExpiring returns unexpired items whose expiry falls within the
	// horizon, soonest first.
	ListExpiring(ctx context.Context) ([]*Item, error)

	// ListExpired returns items whose expiry has passed.
	ListExpired(ctx context.Context) ([]*Item, error)

	// HardDelete removes the stock row entirely.
	HardDelete(ctx context.Context, itemID id.ID) error
}
