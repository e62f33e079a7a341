package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"

	"apotheca/internal/core/id"
)

func TestBaseCatalogRepo_Delete_SQL(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "name"}, func() any { return nil })
	ctx := testCtx()
	entityID := id.New()

	q := repo.Builder().
		Delete(repo.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Where(repo.pharmacyScope(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "DELETE FROM test_table WHERE id = $1 AND pharmacy_id = $2"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 2 || args[0] != entityID || args[1] != "ph-1" {
		t.Errorf("Args mismatch\nwant: [%v ph-1]\ngot:  %v", entityID, args)
	}
}
