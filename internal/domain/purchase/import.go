package purchase

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/types"
)

const csvDateLayout = "2006-01-02"

// ImportCSV parses purchase rows and records them as one purchase through
// the normal create path. Expected header: product_name, batch_no,
// expiry_date, pack_quantity, units_per_pack, pack_price, mrp.
func (s *Service) ImportCSV(ctx context.Context, supplierName, invoiceNo string, r io.Reader) (*Purchase, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperror.NewValidation("empty or unreadable CSV file")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"product_name", "pack_quantity", "pack_price"} {
		if _, ok := col[required]; !ok {
			return nil, apperror.NewValidation("missing CSV column: " + required)
		}
	}

	p := New(appctx.GetPharmacyID(ctx))
	p.SupplierName = strings.TrimSpace(supplierName)
	p.InvoiceNo = strings.TrimSpace(invoiceNo)

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.NewValidation("malformed CSV").
				WithDetail("line", line+1)
		}
		line++

		in, err := parseCSVRow(record, col, line)
		if err != nil {
			return nil, err
		}
		p.AddItem(*in)
	}

	if len(p.Items) == 0 {
		return nil, apperror.NewValidation("CSV contains no purchase rows")
	}

	if err := s.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func parseCSVRow(record []string, col map[string]int, line int) (*ItemInput, error) {
	field := func(name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	in := &ItemInput{
		ProductName: field("product_name"),
		BatchNo:     field("batch_no"),
	}

	if v := field("expiry_date"); v != "" {
		t, err := time.Parse(csvDateLayout, v)
		if err != nil {
			return nil, apperror.NewValidation("invalid expiry date, want YYYY-MM-DD").
				WithDetail("line", line)
		}
		in.ExpiryDate = &t
	}

	var err error
	if in.PackQuantity, err = parseCSVInt(field("pack_quantity")); err != nil {
		return nil, apperror.NewValidation("invalid pack quantity").WithDetail("line", line)
	}
	if in.UnitsPerPack, err = parseCSVInt(field("units_per_pack")); err != nil {
		return nil, apperror.NewValidation("invalid units per pack").WithDetail("line", line)
	}
	if in.PackPrice, err = parseCSVMoney(field("pack_price")); err != nil {
		return nil, apperror.NewValidation("invalid pack price").WithDetail("line", line)
	}
	if in.MRP, err = parseCSVMoney(field("mrp")); err != nil {
		return nil, apperror.NewValidation("invalid mrp").WithDetail("line", line)
	}

	return in, nil
}

func parseCSVInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseCSVMoney(s string) (types.Money, error) {
	if s == "" {
		return types.Zero(), nil
	}
	return types.NewMoneyFromString(s)
}
