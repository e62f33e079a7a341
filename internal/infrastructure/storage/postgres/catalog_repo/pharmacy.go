package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/pharmacy"
	"apotheca/internal/infrastructure/storage/postgres"
)

const pharmacyTable = "cat_pharmacies"

// PharmacyRepo implements pharmacy.Repository. Pharmacies are the
// tenancy root and are not pharmacy-scoped themselves.
type PharmacyRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// NewPharmacyRepo creates a new pharmacy repository.
func NewPharmacyRepo(txManager *postgres.TxManager) *PharmacyRepo {
	return &PharmacyRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[pharmacy.Pharmacy](),
	}
}

func (r *PharmacyRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new pharmacy.
func (r *PharmacyRepo) Create(ctx context.Context, p *pharmacy.Pharmacy) error {
	data := postgres.StructToMap(p)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().Insert(pharmacyTable).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert pharmacy: %w", err)
	}
	return nil
}

// GetByID retrieves a pharmacy by ID.
func (r *PharmacyRepo) GetByID(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	sql, args, err := r.builder().
		Select(r.cols...).
		From(pharmacyTable).
		Where(squirrel.Eq{"id": pharmacyID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p pharmacy.Pharmacy
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("pharmacy", pharmacyID.String())
		}
		return nil, fmt.Errorf("get pharmacy: %w", err)
	}
	return &p, nil
}

// Update persists pharmacy settings with optimistic locking.
func (r *PharmacyRepo) Update(ctx context.Context, p *pharmacy.Pharmacy) error {
	data := postgres.StructToMap(p)
	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if col == "id" || col == "version" || col == "created_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Update(pharmacyTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update pharmacy: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("pharmacy", p.ID.String())
	}
	return nil
}
