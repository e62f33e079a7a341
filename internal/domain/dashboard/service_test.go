package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/types"
)

type fakeRepo struct {
	daily      []DailySales
	dailyFrom  time.Time
	dailyTo    time.Time
	periodFrom []*time.Time
}

func (r *fakeRepo) PeriodTotals(ctx context.Context, from, to *time.Time) (PeriodTotals, error) {
	r.periodFrom = append(r.periodFrom, from)
	return PeriodTotals{Revenue: types.MustMoney("100"), Profit: types.MustMoney("20"), BillCount: 3}, nil
}

func (r *fakeRepo) InventoryValue(ctx context.Context) (types.Money, error) {
	return types.MustMoney("5000"), nil
}

func (r *fakeRepo) Counts(ctx context.Context) (Counts, error) {
	return Counts{Bills: 3, Customers: 2, InventoryItems: 7}, nil
}

func (r *fakeRepo) TotalDebt(ctx context.Context) (types.Money, error) {
	return types.MustMoney("42.50"), nil
}

func (r *fakeRepo) DailySales(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	r.dailyFrom, r.dailyTo = from, to
	return r.daily, nil
}

func (r *fakeRepo) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	return []ProductSales{{ProductName: "Paracetamol 500mg", QuantitySold: int64(limit)}}, nil
}

func (r *fakeRepo) TopDebtors(ctx context.Context, limit int) ([]Debtor, error) {
	return []Debtor{{CustomerName: "Ravi Kumar", TotalDebt: types.MustMoney("42.50")}}, nil
}

func (r *fakeRepo) SupplierTotals(ctx context.Context) ([]SupplierTotals, error) {
	return []SupplierTotals{{SupplierName: "MedSupply", PurchaseCount: 2, TotalAmount: types.MustMoney("315")}}, nil
}

func newTestService(repo *fakeRepo, now time.Time) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return now }
	return s
}

func TestGetSalesTrend_ZeroFillsMissingDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	repo := &fakeRepo{daily: []DailySales{
		{Date: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Revenue: types.MustMoney("50"), Profit: types.MustMoney("10"), BillCount: 2},
		{Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Revenue: types.MustMoney("30"), Profit: types.MustMoney("6"), BillCount: 1},
	}}

	series, err := newTestService(repo, now).GetSalesTrend(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, series, 7)

	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), series[0].Date, "window starts 6 days back")
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), series[6].Date, "today is the last day")

	assert.True(t, series[0].Revenue.IsZero())
	assert.Equal(t, int64(0), series[0].BillCount)
	assert.True(t, series[4].Revenue.Equal(types.MustMoney("50")))
	assert.True(t, series[6].Revenue.Equal(types.MustMoney("30")))
	assert.Equal(t, int64(1), series[6].BillCount)

	// The repo was asked for [start, end) covering exactly the window.
	assert.Equal(t, series[0].Date, repo.dailyFrom)
	assert.Equal(t, series[6].Date.AddDate(0, 0, 1), repo.dailyTo)
}

func TestGetSalesTrend_Bounds(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	s := newTestService(repo, now)

	series, err := s.GetSalesTrend(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, series, 7, "zero falls back to the default window")

	_, err = s.GetSalesTrend(context.Background(), 366)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestGetSalesChart_Periods(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	s := newTestService(&fakeRepo{}, now)

	for period, want := range map[string]int{"": 7, "7d": 7, "30d": 30, "90d": 90} {
		series, err := s.GetSalesChart(context.Background(), period)
		require.NoError(t, err, period)
		assert.Len(t, series, want, period)
	}

	_, err := s.GetSalesChart(context.Background(), "1y")
	require.Error(t, err)
}

func TestGetStats_PeriodBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	repo := &fakeRepo{}

	stats, err := newTestService(repo, now).GetStats(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.periodFrom, 3)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *repo.periodFrom[0], "today starts at midnight")
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *repo.periodFrom[1], "month starts on the 1st")
	assert.Nil(t, repo.periodFrom[2], "all-time is unbounded")

	assert.True(t, stats.InventoryValue.Equal(types.MustMoney("5000")))
	assert.True(t, stats.TotalDebt.Equal(types.MustMoney("42.50")))
	assert.Equal(t, int64(7), stats.Counts.InventoryItems)
}

func TestGetTopProducts_ClampsLimit(t *testing.T) {
	s := newTestService(&fakeRepo{}, time.Now())

	rows, err := s.GetTopProducts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rows[0].QuantitySold, "default limit passed through")

	rows, err = s.GetTopProducts(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rows[0].QuantitySold, "oversized limit clamped")
}

func TestGetDebtSummary(t *testing.T) {
	s := newTestService(&fakeRepo{}, time.Now())

	summary, err := s.GetDebtSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.TopDebtors, 1)
	assert.Equal(t, "Ravi Kumar", summary.TopDebtors[0].CustomerName)
	assert.True(t, summary.TotalDebt.Equal(types.MustMoney("42.50")))
}
