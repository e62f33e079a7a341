package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"apotheca/internal/core/entity"
	"apotheca/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Mobile *string `db:"mobile" json:"mobile"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "attributes", "pharmacy_id", "name", "mobile",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	mobile := "9876543210"
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
			},
			PharmacyID: "ph-1",
			Name:       "Test Name",
		},
		Mobile: &mobile,
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "ph-1", m["pharmacy_id"])
	assert.Equal(t, "Test Name", m["name"])
	assert.Equal(t, &mobile, m["mobile"])
}
