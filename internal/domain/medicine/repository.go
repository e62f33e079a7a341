package medicine

import "context"

// Repository defines read access to the global medicine catalog.
type Repository interface {
	// Search matches name or composition, best matches first.
	Search(ctx context.Context, query string, limit int) ([]*Medicine, error)
}
