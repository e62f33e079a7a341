package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationRequest_Normalize(t *testing.T) {
	p := PaginationRequest{Page: 3, Limit: 25}
	p.Normalize(50)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 50, p.Offset, "page wins over offset")

	p = PaginationRequest{}
	p.Normalize(50)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, 1, p.Page)

	// Raw offset still works when no page is given.
	p = PaginationRequest{Offset: 40, Limit: 20}
	p.Normalize(50)
	assert.Equal(t, 40, p.Offset)
	assert.Equal(t, 3, p.Page)
}

func TestPaginationRequest_OrderBy(t *testing.T) {
	assert.Equal(t, "name", PaginationRequest{}.OrderBy("name"))
	assert.Equal(t, "created_at", PaginationRequest{SortBy: "created_at"}.OrderBy("name"))
	assert.Equal(t, "-created_at", PaginationRequest{SortBy: "created_at", SortOrder: "desc"}.OrderBy("name"))
	assert.Equal(t, "-created_at", PaginationRequest{SortBy: "created_at", SortOrder: "DESC"}.OrderBy("name"))
}

func TestNewPaginationResponse(t *testing.T) {
	r := NewPaginationResponse(2, 20, 41)
	assert.Equal(t, 3, r.TotalPages)
	assert.Equal(t, int64(41), r.TotalItems)

	r = NewPaginationResponse(1, 20, 40)
	assert.Equal(t, 2, r.TotalPages)

	r = NewPaginationResponse(1, 20, 0)
	assert.Equal(t, 0, r.TotalPages)
}
