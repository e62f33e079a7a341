package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/inventory"
	"apotheca/internal/domain/product"
	"apotheca/internal/infrastructure/storage/postgres"
)

const inventoryTable = "inv_items"

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	*BaseCatalogRepo[*inventory.Item]
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*inventory.Item](
			txManager,
			inventoryTable,
			postgres.ExtractDBColumns[inventory.Item](),
			func() *inventory.Item { return &inventory.Item{} },
		),
	}
}

// FindByBatchKey retrieves the stock row for the composite key.
func (r *InventoryRepo) FindByBatchKey(ctx context.Context, key inventory.BatchKey) (*inventory.Item, error) {
	q := r.BaseSelect(ctx).
		Where(squirrel.Eq{"batch_key": key.String()}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("inventory item", key.String())
		}
		return nil, err
	}
	return item, nil
}

// ApplyDelta atomically shifts quantity and available_quantity.
func (r *InventoryRepo) ApplyDelta(ctx context.Context, itemID id.ID, qtyDelta, availDelta int64) error {
	q := r.Builder().
		Update(inventoryTable).
		Set("quantity", squirrel.Expr("quantity + ?", qtyDelta)).
		Set("available_quantity", squirrel.Expr("available_quantity + ?", availDelta)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": itemID}).
		Where(r.pharmacyScope(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build apply delta: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply delta: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory item", itemID.String())
	}
	return nil
}

// Search ranks matches: exact name, then name prefix, then product
// description prefix, then substring.
func (r *InventoryRepo) Search(ctx context.Context, query string, limit int) ([]*inventory.Item, error) {
	normalized := inventory.NormalizeKey(query)
	pattern := "%" + normalized + "%"
	prefix := normalized + "%"

	cols := make([]string, len(r.selectCols))
	for i, c := range r.selectCols {
		cols[i] = "i." + c
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		LEFT JOIN %s p ON lower(p.name) = i.name_key AND p.pharmacy_id = i.pharmacy_id
		WHERE i.pharmacy_id = $1
		  AND (i.name_key LIKE $2 OR lower(coalesce(p.description, '')) LIKE $2)
		ORDER BY CASE
			WHEN i.name_key = $3 THEN 1
			WHEN i.name_key LIKE $4 THEN 2
			WHEN lower(coalesce(p.description, '')) LIKE $4 THEN 3
			ELSE 4
		END, i.name ASC
		LIMIT $5
	`, strings.Join(cols, ", "), inventoryTable, productTable)

	var items []*inventory.Item
	err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql,
		appctx.GetPharmacyID(ctx), pattern, normalized, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("search inventory: %w", err)
	}
	return items, nil
}

// ListLowStock returns items at or below their product's threshold.
func (r *InventoryRepo) ListLowStock(ctx context.Context) ([]*inventory.Item, error) {
	cols := make([]string, len(r.selectCols))
	for i, c := range r.selectCols {
		cols[i] = "i." + c
	}

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		LEFT JOIN %s p ON lower(p.name) = i.name_key AND p.pharmacy_id = i.pharmacy_id
		WHERE i.pharmacy_id = $1
		  AND i.available_quantity <= coalesce(p.low_stock_threshold, $2)
		ORDER BY i.available_quantity ASC, i.name ASC
	`, strings.Join(cols, ", "), inventoryTable, productTable)

	var items []*inventory.Item
	err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql,
		appctx.GetPharmacyID(ctx), product.DefaultLowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

// ListExpiring returns unexpired items expiring within the horizon.
func (r *InventoryRepo) ListExpiring(ctx context.Context) ([]*inventory.Item, error) {
	q := r.BaseSelect(ctx).
		Where(squirrel.NotEq{"expiry_date": nil}).
		Where(squirrel.Expr("expiry_date >= now()")).
		Where(squirrel.Expr("expiry_date < now() + interval '90 days'")).
		OrderBy("expiry_date ASC")

	return r.FindMany(ctx, q)
}

// ListExpired returns items whose expiry has passed.
func (r *InventoryRepo) ListExpired(ctx context.Context) ([]*inventory.Item, error) {
	q := r.BaseSelect(ctx).
		Where(squirrel.NotEq{"expiry_date": nil}).
		Where(squirrel.Expr("expiry_date < now()")).
		OrderBy("expiry_date ASC")

	return r.FindMany(ctx, q)
}

// HardDelete removes the stock row entirely.
func (r *InventoryRepo) HardDelete(ctx context.Context, itemID id.ID) error {
	return r.Delete(ctx, itemID)
}
