package pharmacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	pharmacies map[id.ID]*Pharmacy
}

func (r *fakeRepo) Create(ctx context.Context, p *Pharmacy) error {
	r.pharmacies[p.ID] = p
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, pharmacyID id.ID) (*Pharmacy, error) {
	p, ok := r.pharmacies[pharmacyID]
	if !ok {
		return nil, apperror.NewNotFound("pharmacy", pharmacyID.String())
	}
	return p, nil
}

func (r *fakeRepo) Update(ctx context.Context, p *Pharmacy) error {
	r.pharmacies[p.ID] = p
	return nil
}

func fixture(t *testing.T) (*Service, *Pharmacy, context.Context) {
	t.Helper()
	repo := &fakeRepo{pharmacies: make(map[id.ID]*Pharmacy)}
	p := NewPharmacy("Demo Pharmacy")
	repo.pharmacies[p.ID] = p

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:     id.New().String(),
		PharmacyID: p.ID.String(),
		Role:       "ADMIN",
		IsAdmin:    true,
	})
	return NewService(repo, nopTxManager{}), p, ctx
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _, ctx := fixture(t)

	addr := "12 Main Street"
	updated, err := svc.Update(ctx, UpdateSettings{Address: &addr})
	require.NoError(t, err)

	assert.Equal(t, "Demo Pharmacy", updated.Name, "absent fields stay")
	require.NotNil(t, updated.Address)
	assert.Equal(t, addr, *updated.Address)

	empty := "  "
	_, err = svc.Update(ctx, UpdateSettings{Name: &empty})
	require.Error(t, err, "name cannot be blanked")
}

func TestUpdate_SettingsMergeIntoAttributes(t *testing.T) {
	svc, _, ctx := fixture(t)

	updated, err := svc.Update(ctx, UpdateSettings{Settings: map[string]any{
		"footerNote": "Get well soon!",
		"taxLabel":   "GST",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Get well soon!", updated.Attributes.GetString("footerNote"))
	assert.Equal(t, "GST", updated.Attributes.GetString("taxLabel"))

	// A later update merges; a nil value drops the key.
	updated, err = svc.Update(ctx, UpdateSettings{Settings: map[string]any{
		"footerNote": "Thank you for your visit",
		"taxLabel":   nil,
	}})
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your visit", updated.Attributes.GetString("footerNote"))
	assert.Empty(t, updated.Attributes.GetString("taxLabel"))
}

func TestCurrent_NoContext(t *testing.T) {
	svc, _, _ := fixture(t)

	_, err := svc.Current(context.Background())
	require.Error(t, err)
}
