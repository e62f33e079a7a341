package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
	"apotheca/internal/domain"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo mirrors the SQL repository's locking: Update matches on the
// caller's version and bumps the stored one, ApplyDelta bumps it too.
type fakeRepo struct {
	items       map[id.ID]*Item
	searchLimit int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Item)}
}

func (r *fakeRepo) put(item *Item) {
	cp := *item
	r.items[item.ID] = &cp
}

func (r *fakeRepo) Create(ctx context.Context, item *Item) error {
	r.put(item)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("inventory item", itemID.String())
	}
	cp := *item
	return &cp, nil
}

func (r *fakeRepo) Update(ctx context.Context, item *Item) error {
	stored, ok := r.items[item.ID]
	if !ok || stored.Version != item.Version {
		return apperror.NewConcurrentModification("inv_items", item.ID)
	}
	cp := *item
	cp.Version = stored.Version + 1
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, itemID id.ID) error { return nil }

func (r *fakeRepo) SetDeletionMark(ctx context.Context, itemID id.ID, marked bool) error {
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return domain.ListResult[*Item]{}, nil
}

func (r *fakeRepo) Exists(ctx context.Context, itemID id.ID) (bool, error) {
	_, ok := r.items[itemID]
	return ok, nil
}

func (r *fakeRepo) FindByBatchKey(ctx context.Context, key BatchKey) (*Item, error) {
	for _, item := range r.items {
		if item.Key == key.String() {
			cp := *item
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("inventory item", key.String())
}

func (r *fakeRepo) ApplyDelta(ctx context.Context, itemID id.ID, qtyDelta, availDelta int64) error {
	item, ok := r.items[itemID]
	if !ok {
		return apperror.NewNotFound("inventory item", itemID.String())
	}
	item.Quantity += qtyDelta
	item.AvailableQuantity += availDelta
	item.Version++
	return nil
}

func (r *fakeRepo) Search(ctx context.Context, query string, limit int) ([]*Item, error) {
	r.searchLimit = limit
	return nil, nil
}

func (r *fakeRepo) ListLowStock(ctx context.Context) ([]*Item, error) { return nil, nil }

func (r *fakeRepo) ListExpiring(ctx context.Context) ([]*Item, error) { return nil, nil }

func (r *fakeRepo) ListExpired(ctx context.Context) ([]*Item, error) { return nil, nil }

func (r *fakeRepo) HardDelete(ctx context.Context, itemID id.ID) error {
	delete(r.items, itemID)
	return nil
}

func TestReceive_NewBatchCreatesRow(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	ctx := context.Background()

	item, err := svc.Receive(ctx, "ph-1", ReceiptLine{
		ProductName:  "Paracetamol 500mg",
		BatchNo:      "B1",
		TotalUnits:   150,
		PricePerUnit: types.MustMoney("1.50"),
		MRP:          types.MustMoney("2.10"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(150), item.Quantity)
	assert.Equal(t, int64(150), item.AvailableQuantity)
	assert.Len(t, repo.items, 1)
}

func TestReceive_ExistingBatchIncrementsAndOverwritesMetadata(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	ctx := context.Background()

	_, err := svc.Receive(ctx, "ph-1", ReceiptLine{
		ProductName:  "Paracetamol 500mg",
		BatchNo:      "B1",
		TotalUnits:   100,
		PricePerUnit: types.MustMoney("1.50"),
		MRP:          types.MustMoney("2.10"),
		SupplierName: "Alpha",
	})
	require.NoError(t, err)

	expiry := time.Now().UTC().AddDate(1, 0, 0)
	item, err := svc.Receive(ctx, "ph-1", ReceiptLine{
		ProductName:  "paracetamol  500mg", // same batch despite spacing
		BatchNo:      "b1",
		TotalUnits:   50,
		PricePerUnit: types.MustMoney("1.60"),
		MRP:          types.MustMoney("2.25"),
		ExpiryDate:   &expiry,
		SupplierName: "Beta",
	})
	require.NoError(t, err)

	assert.Len(t, repo.items, 1)
	assert.Equal(t, int64(150), item.Quantity)
	assert.True(t, item.PurchasePrice.Equal(types.MustMoney("1.60")), "last write wins")
	assert.True(t, item.MRP.Equal(types.MustMoney("2.25")))
	assert.Equal(t, "Beta", item.SupplierName)
	assert.Equal(t, &expiry, item.ExpiryDate)
}

func TestReceive_RepeatedTopUpsSurviveVersionLock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	ctx := context.Background()

	line := ReceiptLine{
		ProductName:  "Amoxicillin 250mg",
		BatchNo:      "A7",
		TotalUnits:   30,
		PricePerUnit: types.MustMoney("3.00"),
		MRP:          types.MustMoney("4.20"),
	}

	first, err := svc.Receive(ctx, "ph-1", line)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	second, err := svc.Receive(ctx, "ph-1", line)
	require.NoError(t, err)
	third, err := svc.Receive(ctx, "ph-1", line)
	require.NoError(t, err)

	assert.Equal(t, int64(60), second.Quantity)
	assert.Equal(t, int64(90), third.Quantity)
	assert.Equal(t, 3, repo.items[first.ID].Version, "each top-up advances the lock")
	assert.Equal(t, 3, third.Version)
}

func TestReverse_MissingRowIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})

	err := svc.Reverse(context.Background(), NewBatchKey("Ghost", "G1"), 10)
	assert.NoError(t, err)
}

func TestAdjust_PartialCorrection(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	ctx := context.Background()

	item, err := svc.Receive(ctx, "ph-1", ReceiptLine{
		ProductName:  "Cetirizine",
		BatchNo:      "C1",
		TotalUnits:   50,
		PricePerUnit: types.MustMoney("1.80"),
		MRP:          types.MustMoney("2.50"),
	})
	require.NoError(t, err)

	avail := int64(42)
	mrp := types.MustMoney("2.75")
	adjusted, err := svc.Adjust(ctx, item.ID, Adjust{
		AvailableQuantity: &avail,
		MRP:               &mrp,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), adjusted.AvailableQuantity)
	assert.Equal(t, int64(50), adjusted.Quantity, "untouched fields stay")
	assert.True(t, adjusted.MRP.Equal(mrp))
	assert.True(t, adjusted.PurchasePrice.Equal(types.MustMoney("1.80")))
}

func TestSearch_ClampsLimit(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	ctx := context.Background()

	_, err := svc.Search(ctx, "dolo", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.searchLimit)

	_, err = svc.Search(ctx, "dolo", 500)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.searchLimit)

	_, err = svc.Search(ctx, "dolo", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.searchLimit)
}

func TestRemove(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nopTxManager{})
	ctx := context.Background()

	item, err := svc.Receive(ctx, "ph-1", ReceiptLine{ProductName: "X", BatchNo: "B", TotalUnits: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, item.ID))
	assert.Empty(t, repo.items)

	err = svc.Remove(ctx, item.ID)
	assert.True(t, apperror.IsNotFound(err))
}
