package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"

	"apotheca/internal/domain/medicine"
	"apotheca/internal/infrastructure/storage/postgres"
)

const medicineTable = "global_medicines"

// MedicineRepo implements medicine.Repository over the shared
// reference table. Unlike the other repositories here it is not
// pharmacy-scoped: every tenant reads the same rows.
type MedicineRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewMedicineRepo creates a new medicine repository.
func NewMedicineRepo(txManager *postgres.TxManager) *MedicineRepo {
	return &MedicineRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[medicine.Medicine](),
	}
}

// Upsert inserts a reference entry, replacing an existing row with
// the same upstream ref_id. Used by the seed and dataset import
// commands.
func (r *MedicineRepo) Upsert(ctx context.Context, m *medicine.Medicine) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (id, ref_id, name, price, manufacturer_name,
			pack_size_label, short_composition1, short_composition2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ref_id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			manufacturer_name = EXCLUDED.manufacturer_name,
			pack_size_label = EXCLUDED.pack_size_label,
			short_composition1 = EXCLUDED.short_composition1,
			short_composition2 = EXCLUDED.short_composition2
	`, medicineTable)

	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		m.ID, m.RefID, m.Name, m.Price, m.Manufacturer,
		m.PackSizeLabel, m.Composition1, m.Composition2)
	if err != nil {
		return fmt.Errorf("upsert medicine: %w", err)
	}
	return nil
}

// Search ranks matches: exact name, then name prefix, then
// composition prefix, then substring anywhere.
func (r *MedicineRepo) Search(ctx context.Context, query string, limit int) ([]*medicine.Medicine, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	pattern := "%" + normalized + "%"
	prefix := normalized + "%"

	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE lower(name) LIKE $1
		   OR lower(coalesce(short_composition1, '')) LIKE $1
		   OR lower(coalesce(short_composition2, '')) LIKE $1
		ORDER BY CASE
			WHEN lower(name) = $2 THEN 1
			WHEN lower(name) LIKE $3 THEN 2
			WHEN lower(coalesce(short_composition1, '')) LIKE $3
			  OR lower(coalesce(short_composition2, '')) LIKE $3 THEN 3
			ELSE 4
		END, name ASC
		LIMIT $4
	`, strings.Join(r.selectCols, ", "), medicineTable)

	var items []*medicine.Medicine
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql,
		pattern, normalized, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("search medicines: %w", err)
	}
	return items, nil
}
