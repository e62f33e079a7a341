// Package medicine provides the global medicine reference catalog.
// The catalog is shared read-only data, not pharmacy-scoped: billing
// screens use it to look up names, pack sizes and compositions before
// a product ever reaches a pharmacy's own inventory.
package medicine

import (
	"apotheca/internal/core/id"
	"apotheca/internal/core/types"
)

// Medicine is one reference catalog entry.
type Medicine struct {
	ID id.ID `db:"id" json:"id"`

	// RefID is the upstream dataset identifier
	RefID int64 `db:"ref_id" json:"refId"`

	Name string `db:"name" json:"name"`

	// Price is the listed retail price per pack
	Price types.Money `db:"price" json:"price"`

	Manufacturer  string `db:"manufacturer_name" json:"manufacturerName"`
	PackSizeLabel string `db:"pack_size_label" json:"packSizeLabel"`

	// Composition1 and Composition2 hold the active ingredients
	Composition1 string `db:"short_composition1" json:"shortComposition1"`
	Composition2 string `db:"short_composition2" json:"shortComposition2"`
}
