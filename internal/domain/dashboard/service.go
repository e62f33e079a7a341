package dashboard

import (
	"context"
	"time"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/types"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 365
	defaultTopCount  = 10
	debtSummaryCount = 5
)

// Service shapes the dashboard payloads.
type Service struct {
	repo Repository

	// now is replaceable in tests
	now func() time.Time
}

// NewService creates a new dashboard service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// GetStats assembles the headline numbers.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	today, err := s.repo.PeriodTotals(ctx, &startOfDay, nil)
	if err != nil {
		return nil, err
	}
	month, err := s.repo.PeriodTotals(ctx, &startOfMonth, nil)
	if err != nil {
		return nil, err
	}
	allTime, err := s.repo.PeriodTotals(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	inventoryValue, err := s.repo.InventoryValue(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	totalDebt, err := s.repo.TotalDebt(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Today:          today,
		Month:          month,
		AllTime:        allTime,
		InventoryValue: inventoryValue,
		Counts:         counts,
		TotalDebt:      totalDebt,
	}, nil
}

// GetSalesTrend returns a zero-filled daily series for the last N days,
// today included.
func (s *Service) GetSalesTrend(ctx context.Context, days int) ([]DailySales, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		return nil, apperror.NewValidation("trend window too large").
			WithDetail("maxDays", maxTrendDays)
	}

	now := s.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	rows, err := s.repo.DailySales(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]DailySales, len(rows))
	for _, r := range rows {
		byDay[r.Date.Format("2006-01-02")] = r
	}

	series := make([]DailySales, 0, days)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if r, ok := byDay[d.Format("2006-01-02")]; ok {
			r.Date = d
			series = append(series, r)
			continue
		}
		series = append(series, DailySales{
			Date:    d,
			Revenue: types.Zero(),
			Profit:  types.Zero(),
		})
	}

	return series, nil
}

// GetSalesChart maps a named period to the daily series.
// Accepted periods: "7d", "30d", "90d".
func (s *Service) GetSalesChart(ctx context.Context, period string) ([]DailySales, error) {
	var days int
	switch period {
	case "", "7d":
		days = 7
	case "30d":
		days = 30
	case "90d":
		days = 90
	default:
		return nil, apperror.NewValidation("unknown chart period").
			WithDetail("period", period)
	}
	return s.GetSalesTrend(ctx, days)
}

// GetTopProducts returns the best sellers by units sold.
func (s *Service) GetTopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultTopCount
	}
	return s.repo.TopProducts(ctx, limit)
}

// GetDebtSummary returns the biggest debtors and the total outstanding.
func (s *Service) GetDebtSummary(ctx context.Context) (*DebtSummary, error) {
	debtors, err := s.repo.TopDebtors(ctx, debtSummaryCount)
	if err != nil {
		return nil, err
	}
	totalDebt, err := s.repo.TotalDebt(ctx)
	if err != nil {
		return nil, err
	}
	return &DebtSummary{TopDebtors: debtors, TotalDebt: totalDebt}, nil
}

// GetSupplierAnalysis returns per-supplier purchase totals.
func (s *Service) GetSupplierAnalysis(ctx context.Context) ([]SupplierTotals, error) {
	return s.repo.SupplierTotals(ctx)
}
