package medicine

import (
	"context"
	"strings"

	"apotheca/internal/core/apperror"
)

const (
	minQueryLength = 2
	defaultLimit   = 20
	maxLimit       = 100
)

// Service provides lookups over the global medicine catalog.
type Service struct {
	repo Repository
}

// NewService creates a new medicine service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns reference entries matching the query by name or
// composition.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Medicine, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return nil, apperror.NewValidation("Search query must be at least 2 characters").
			WithDetail("field", "q")
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	return s.repo.Search(ctx, query, limit)
}
