package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/bill"
	"apotheca/internal/infrastructure/storage/postgres"
)

const (
	billTable     = "doc_bills"
	billItemTable = "doc_bill_items"
)

var billItemCols = []string{
	"line_id", "document_id", "line_no", "inventory_ref", "product_name",
	"batch_no", "quantity", "unit_price", "discount_percent",
	"purchase_price", "subtotal", "discount_amount", "total", "profit",
	"is_manual",
}

// BillRepo implements bill.Repository.
type BillRepo struct {
	*BaseDocumentRepo[*bill.Bill]
}

// NewBillRepo creates a bill repository.
func NewBillRepo(txManager *postgres.TxManager) *BillRepo {
	return &BillRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			billTable,
			postgres.ExtractDBColumns[bill.Bill](),
			func() *bill.Bill { return &bill.Bill{} },
		),
	}
}

// Create inserts the document and its lines.
func (r *BillRepo) Create(ctx context.Context, b *bill.Bill) error {
	if err := r.CreateDoc(ctx, b); err != nil {
		return err
	}
	return r.saveItems(ctx, b.ID, b.Items)
}

// GetByID retrieves a bill with its lines.
func (r *BillRepo) GetByID(ctx context.Context, billID id.ID) (*bill.Bill, error) {
	b, err := r.GetDoc(ctx, billID)
	if err != nil {
		return nil, err
	}

	b.Items, err = r.getItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// GetForUpdate retrieves a bill with row lock and its lines.
func (r *BillRepo) GetForUpdate(ctx context.Context, billID id.ID) (*bill.Bill, error) {
	b, err := r.GetDocForUpdate(ctx, billID)
	if err != nil {
		return nil, err
	}

	b.Items, err = r.getItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// Update overwrites the document and replaces its lines.
func (r *BillRepo) Update(ctx context.Context, b *bill.Bill) error {
	if err := r.UpdateDoc(ctx, b); err != nil {
		return err
	}
	if err := r.deleteItems(ctx, b.ID); err != nil {
		return err
	}
	return r.saveItems(ctx, b.ID, b.Items)
}

// Delete removes the document and its lines.
func (r *BillRepo) Delete(ctx context.Context, billID id.ID) error {
	if err := r.deleteItems(ctx, billID); err != nil {
		return err
	}
	return r.DeleteDoc(ctx, billID)
}

// List returns a filtered page of bills with their lines.
func (r *BillRepo) List(ctx context.Context, filter bill.ListFilter) (bill.ListResult, error) {
	q := r.BaseSelect(ctx)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"customer_name": pattern},
			squirrel.ILike{"customer_mobile": pattern},
		})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.IsPaid != nil {
		q = q.Where(squirrel.Eq{"is_paid": *filter.IsPaid})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"date": *filter.DateTo})
	}

	items, total, err := r.CountAndSelect(ctx, q, "-date", filter.Limit, filter.Offset)
	if err != nil {
		return bill.ListResult{}, err
	}

	for _, b := range items {
		b.Items, err = r.getItems(ctx, b.ID)
		if err != nil {
			return bill.ListResult{}, err
		}
	}

	return bill.ListResult{Items: items, TotalCount: total}, nil
}

// ListByCustomer returns all of a customer's bills, newest first.
func (r *BillRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]*bill.Bill, error) {
	q := r.BaseSelect(ctx).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("date DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var bills []*bill.Bill
	if err := pgxscan.Select(ctx, r.Querier(ctx), &bills, sql, args...); err != nil {
		return nil, fmt.Errorf("select customer bills: %w", err)
	}

	for _, b := range bills {
		b.Items, err = r.getItems(ctx, b.ID)
		if err != nil {
			return nil, err
		}
	}

	return bills, nil
}

// MarkAllPaidForCustomer settles every unpaid bill of the customer.
func (r *BillRepo) MarkAllPaidForCustomer(ctx context.Context, customerID id.ID) (int64, error) {
	q := r.Builder().
		Update(billTable).
		Set("is_paid", true).
		Set("paid_at", squirrel.Expr("NOW()")).
		Set("payment_date", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"customer_id": customerID}).
		Where(squirrel.Eq{"is_paid": false}).
		Where(r.pharmacyScope(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("mark bills paid: %w", err)
	}

	return result.RowsAffected(), nil
}

// SetPDFURL records the rendered document location.
func (r *BillRepo) SetPDFURL(ctx context.Context, billID id.ID, url string) error {
	q := r.Builder().
		Update(billTable).
		Set("pdf_url", url).
		Where(squirrel.Eq{"id": billID}).
		Where(r.pharmacyScope(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set pdf url: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(billTable, billID.String())
	}

	return nil
}

func (r *BillRepo) getItems(ctx context.Context, documentID id.ID) ([]bill.Item, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "inventory_ref", "product_name", "batch_no",
			"quantity", "unit_price", "discount_percent", "purchase_price",
			"subtotal", "discount_amount", "total", "profit", "is_manual",
		).
		From(billItemTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var items []bill.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select bill items: %w", err)
	}

	return items, nil
}

func (r *BillRepo) saveItems(ctx context.Context, documentID id.ID, items []bill.Item) error {
	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(billItemTable).
		Columns(billItemCols...)

	for _, item := range items {
		q = q.Values(
			item.LineID, documentID, item.LineNo, item.InventoryRef,
			item.ProductName, item.BatchNo, item.Quantity, item.UnitPrice,
			item.DiscountPercent, item.PurchasePrice, item.Subtotal,
			item.DiscountAmount, item.Total, item.Profit, item.IsManual,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert bill items: %w", err)
	}

	return nil
}

func (r *BillRepo) deleteItems(ctx context.Context, documentID id.ID) error {
	q := r.Builder().
		Delete(billItemTable).
		Where(squirrel.Eq{"document_id": documentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items delete: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete bill items: %w", err)
	}

	return nil
}
