package dto

import (
	"apotheca/internal/core/types"
	"apotheca/internal/domain/medicine"
)

// MedicineResponse is one global catalog entry in search results.
type MedicineResponse struct {
	ID            string      `json:"id"`
	RefID         int64       `json:"refId"`
	Name          string      `json:"name"`
	Price         types.Money `json:"price"`
	Manufacturer  string      `json:"manufacturerName"`
	PackSizeLabel string      `json:"packSizeLabel"`
	Composition1  string      `json:"shortComposition1"`
	Composition2  string      `json:"shortComposition2"`
}

// MedicineSearchResponse wraps ranked search results.
type MedicineSearchResponse struct {
	Medicines []MedicineResponse `json:"medicines"`
}

// FromMedicine creates MedicineResponse from a Medicine.
func FromMedicine(m *medicine.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:            m.ID.String(),
		RefID:         m.RefID,
		Name:          m.Name,
		Price:         m.Price,
		Manufacturer:  m.Manufacturer,
		PackSizeLabel: m.PackSizeLabel,
		Composition1:  m.Composition1,
		Composition2:  m.Composition2,
	}
}

// FromMedicines maps a result slice into the response envelope.
func FromMedicines(items []*medicine.Medicine) MedicineSearchResponse {
	out := MedicineSearchResponse{Medicines: make([]MedicineResponse, 0, len(items))}
	for _, m := range items {
		out.Medicines = append(out.Medicines, FromMedicine(m))
	}
	return out
}
