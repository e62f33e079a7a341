package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/purchase"
	"apotheca/internal/infrastructure/storage/postgres"
)

const (
	purchaseTable     = "doc_purchases"
	purchaseItemTable = "doc_purchase_items"
)

var purchaseItemCols = []string{
	"line_id", "document_id", "line_no", "product_name", "batch_no",
	"expiry_date", "pack_quantity", "units_per_pack", "pack_price",
	"price_per_unit", "mrp", "total_units", "item_total",
}

// bulkCopyThreshold is the line count above which item inserts switch
// to the COPY protocol. CSV imports routinely cross it.
const bulkCopyThreshold = 100

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]

	batch *postgres.BatchInserter
}

// NewPurchaseRepo creates a purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			purchaseTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
		batch: postgres.NewBatchInserter(txManager),
	}
}

// Create inserts the document and its lines.
func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	if err := r.CreateDoc(ctx, p); err != nil {
		return err
	}
	return r.saveItems(ctx, p.ID, p.Items)
}

// GetByID retrieves a purchase with its lines.
func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	p, err := r.GetDoc(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	p.Items, err = r.getItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// GetForUpdate retrieves a purchase with row lock and its lines.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	p, err := r.GetDocForUpdate(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	p.Items, err = r.getItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Update overwrites the document and replaces its lines.
func (r *PurchaseRepo) Update(ctx context.Context, p *purchase.Purchase) error {
	if err := r.UpdateDoc(ctx, p); err != nil {
		return err
	}
	if err := r.deleteItems(ctx, p.ID); err != nil {
		return err
	}
	return r.saveItems(ctx, p.ID, p.Items)
}

// Delete removes the document and its lines.
func (r *PurchaseRepo) Delete(ctx context.Context, purchaseID id.ID) error {
	if err := r.deleteItems(ctx, purchaseID); err != nil {
		return err
	}
	return r.DeleteDoc(ctx, purchaseID)
}

// List returns a filtered page of purchases with their lines.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (purchase.ListResult, error) {
	q := r.BaseSelect(ctx)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"supplier_name": pattern},
			squirrel.ILike{"invoice_no": pattern},
		})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"date": *filter.DateTo})
	}

	items, total, err := r.CountAndSelect(ctx, q, "-date", filter.Limit, filter.Offset)
	if err != nil {
		return purchase.ListResult{}, err
	}

	for _, p := range items {
		p.Items, err = r.getItems(ctx, p.ID)
		if err != nil {
			return purchase.ListResult{}, err
		}
	}

	return purchase.ListResult{Items: items, TotalCount: total}, nil
}

// ListPricePoints returns one row per purchased line for the pharmacy.
func (r *PurchaseRepo) ListPricePoints(ctx context.Context) ([]purchase.PricePoint, error) {
	q := r.Builder().
		Select(
			"i.product_name",
			"d.supplier_name",
			"i.pack_price",
			"i.price_per_unit",
			"d.date AS purchase_date",
		).
		From(purchaseItemTable + " i").
		Join(purchaseTable + " d ON d.id = i.document_id").
		Where(squirrel.Eq{"d.pharmacy_id": appctx.GetPharmacyID(ctx)}).
		OrderBy("d.date ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build price points query: %w", err)
	}

	var points []purchase.PricePoint
	if err := pgxscan.Select(ctx, r.Querier(ctx), &points, sql, args...); err != nil {
		return nil, fmt.Errorf("select price points: %w", err)
	}

	return points, nil
}

func (r *PurchaseRepo) getItems(ctx context.Context, documentID id.ID) ([]purchase.Item, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_name", "batch_no", "expiry_date",
			"pack_quantity", "units_per_pack", "pack_price", "price_per_unit",
			"mrp", "total_units", "item_total",
		).
		From(purchaseItemTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var items []purchase.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase items: %w", err)
	}

	return items, nil
}

func (r *PurchaseRepo) saveItems(ctx context.Context, documentID id.ID, items []purchase.Item) error {
	if len(items) == 0 {
		return nil
	}

	if len(items) >= bulkCopyThreshold {
		return r.copyItems(ctx, documentID, items)
	}

	q := r.Builder().
		Insert(purchaseItemTable).
		Columns(purchaseItemCols...)

	for _, item := range items {
		q = q.Values(
			item.LineID, documentID, item.LineNo, item.ProductName,
			item.BatchNo, item.ExpiryDate, item.PackQuantity,
			item.UnitsPerPack, item.PackPrice, item.PricePerUnit,
			item.MRP, item.TotalUnits, item.ItemTotal,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase items: %w", err)
	}

	return nil
}

func (r *PurchaseRepo) copyItems(ctx context.Context, documentID id.ID, items []purchase.Item) error {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{
			item.LineID, documentID, item.LineNo, item.ProductName,
			item.BatchNo, item.ExpiryDate, item.PackQuantity,
			item.UnitsPerPack, item.PackPrice, item.PricePerUnit,
			item.MRP, item.TotalUnits, item.ItemTotal,
		})
	}

	if _, err := r.batch.CopyFromSlice(ctx, purchaseItemTable, purchaseItemCols, rows); err != nil {
		return fmt.Errorf("copy purchase items: %w", err)
	}

	return nil
}

func (r *PurchaseRepo) deleteItems(ctx context.Context, documentID id.ID) error {
	q := r.Builder().
		Delete(purchaseItemTable).
		Where(squirrel.Eq{"document_id": documentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items delete: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete purchase items: %w", err)
	}

	return nil
}
