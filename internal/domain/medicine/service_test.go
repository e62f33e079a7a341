package medicine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/core/apperror"
)

type fakeRepo struct {
	gotQuery string
	gotLimit int
	result   []*Medicine
}

func (f *fakeRepo) Search(_ context.Context, query string, limit int) ([]*Medicine, error) {
	f.gotQuery = query
	f.gotLimit = limit
	return f.result, nil
}

func TestSearch_RejectsShortQuery(t *testing.T) {
	s := NewService(&fakeRepo{})

	for _, q := range []string{"", "a", "  a  ", " "} {
		_, err := s.Search(context.Background(), q, 20)
		require.Error(t, err, "query %q", q)
		assert.True(t, apperror.IsValidation(err))
	}
}

func TestSearch_TrimsAndPassesQuery(t *testing.T) {
	repo := &fakeRepo{result: []*Medicine{{Name: "Dolo 650"}}}
	s := NewService(repo)

	items, err := s.Search(context.Background(), "  dolo  ", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "dolo", repo.gotQuery)
	assert.Equal(t, 10, repo.gotLimit)
}

func TestSearch_ClampsLimit(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo)

	_, err := s.Search(context.Background(), "dolo", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, repo.gotLimit)

	_, err = s.Search(context.Background(), "dolo", 500)
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, repo.gotLimit)
}
