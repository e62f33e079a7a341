package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
	"apotheca/internal/domain/customer"
	"apotheca/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*customer.Customer](
			txManager,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// FindByNameOrMobile retrieves the first customer matching name or mobile.
func (r *CustomerRepo) FindByNameOrMobile(ctx context.Context, name, mobile string) (*customer.Customer, error) {
	match := squirrel.Or{}
	if name != "" {
		match = append(match, squirrel.ILike{"name": name})
	}
	if mobile != "" {
		match = append(match, squirrel.Eq{"mobile": mobile})
	}
	if len(match) == 0 {
		return nil, apperror.NewNotFound("customer", name)
	}

	q := r.BaseSelect(ctx).
		Where(match).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC").
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("customer", name)
		}
		return nil, err
	}
	return c, nil
}

// AdjustDebt atomically adds delta to total_debt. Negative deltas may
// drive the balance negative; no clamping.
func (r *CustomerRepo) AdjustDebt(ctx context.Context, customerID id.ID, delta types.Money) error {
	q := r.Builder().
		Update(customerTable).
		Set("total_debt", squirrel.Expr("total_debt + ?", delta)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": customerID}).
		Where(r.pharmacyScope(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build adjust debt: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust debt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}

// ListDebtors returns customers with positive debt, largest first.
func (r *CustomerRepo) ListDebtors(ctx context.Context, limit int) ([]*customer.Customer, error) {
	q := r.BaseSelect(ctx).
		Where(squirrel.Gt{"total_debt": 0}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("total_debt DESC").
		Limit(uint64(limit))

	return r.FindMany(ctx, q)
}
