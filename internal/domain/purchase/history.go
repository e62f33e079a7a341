package purchase

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/types"
)

var (
	mgTokenRE  = regexp.MustCompile(`\b\d+\s*mg\b`)
	nonAlnumRE = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// normalizeName reduces a product name for fuzzy matching: lowercase,
// dosage tokens like "650mg" stripped, punctuation stripped, whitespace
// collapsed.
func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = mgTokenRE.ReplaceAllString(s, " ")
	s = nonAlnumRE.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// namesMatch reports whether two product names refer to the same product:
// either normalized form contains the other.
func namesMatch(a, b string) bool {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// PriceHistory compares a quoted price against past purchases of the
// same product.
type PriceHistory struct {
	ProductName         string       `json:"productName"`
	CurrentPrice        types.Money  `json:"currentPrice"`
	AllHistoricalPrices []PricePoint `json:"allHistoricalPrices"`
	Cheapest            *PricePoint  `json:"cheapest,omitempty"`
	IsHigherThanHistory bool         `json:"isHigherThanHistory"`
	PriceDifference     types.Money  `json:"priceDifference"`
	CheaperOptions      []PricePoint `json:"cheaperOptions"`
}

// GetPriceHistory scans the pharmacy's purchases for lines matching the
// product name, dedupes by supplier and pack price, and reports how the
// quoted price compares with history.
func (s *Service) GetPriceHistory(ctx context.Context, productName string, currentPrice types.Money) (*PriceHistory, error) {
	if strings.TrimSpace(productName) == "" {
		return nil, apperror.NewValidation("product name is required")
	}

	points, err := s.repo.ListPricePoints(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var matches []PricePoint
	for _, pt := range points {
		if !namesMatch(pt.ProductName, productName) {
			continue
		}
		dedupeKey := strings.ToLower(pt.SupplierName) + "|" + pt.PackPrice.String()
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true
		matches = append(matches, pt)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].PackPrice.LessThan(matches[j].PackPrice)
	})

	history := &PriceHistory{
		ProductName:         productName,
		CurrentPrice:        currentPrice,
		AllHistoricalPrices: matches,
		PriceDifference:     types.Zero(),
		CheaperOptions:      []PricePoint{},
	}

	if len(matches) == 0 {
		return history, nil
	}

	cheapest := matches[0]
	history.Cheapest = &cheapest

	if currentPrice.GreaterThan(cheapest.PackPrice) {
		history.IsHigherThanHistory = true
		history.PriceDifference = currentPrice.Sub(cheapest.PackPrice)
	}

	for _, pt := range matches {
		if pt.PackPrice.LessThan(currentPrice) {
			history.CheaperOptions = append(history.CheaperOptions, pt)
		}
	}

	return history, nil
}
