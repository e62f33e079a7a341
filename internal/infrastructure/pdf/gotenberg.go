// Package pdf renders bills to PDF through a Gotenberg service.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"apotheca/internal/core/types"
	"apotheca/internal/domain/bill"
)

// GotenbergRenderer implements bill.Renderer against the Gotenberg
// chromium conversion endpoint.
type GotenbergRenderer struct {
	endpoint string
	client   *http.Client
	tpl      *template.Template
}

// NewGotenbergRenderer creates a renderer with parsed templates.
func NewGotenbergRenderer(endpoint string, client *http.Client) (*GotenbergRenderer, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	funcMap := template.FuncMap{
		"money": func(m types.Money) string {
			return m.StringFixed(2)
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	tpl, err := template.New("bill").Funcs(funcMap).Parse(billTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse bill template: %w", err)
	}

	return &GotenbergRenderer{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
		tpl:      tpl,
	}, nil
}

// Ping checks whether the Gotenberg service is reachable.
func (r *GotenbergRenderer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderBill converts the bill view to PDF bytes.
func (r *GotenbergRenderer) RenderBill(ctx context.Context, view *bill.View) ([]byte, error) {
	if r.endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}

	html := &bytes.Buffer{}
	if err := r.tpl.Execute(html, view); err != nil {
		return nil, fmt.Errorf("render bill template: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("files", "bill.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, html); err != nil {
		return nil, err
	}

	for field, value := range map[string]string{
		"paperWidth":   "8.27",
		"paperHeight":  "11.69",
		"marginTop":    "0.4",
		"marginBottom": "0.4",
		"marginLeft":   "0.4",
		"marginRight":  "0.4",
	} {
		if err := writer.WriteField(field, value); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

var _ bill.Renderer = (*GotenbergRenderer)(nil)

const billTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
  .header { display: flex; justify-content: space-between; margin-bottom: 16px; }
  h1 { font-size: 18px; margin: 0 0 4px 0; }
  .muted { color: #666; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  th { background: #f5f5f5; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 12px; width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 3px 8px; }
  .totals .grand td { font-weight: bold; border-top: 1px solid #222; }
  .unpaid { color: #b00; font-weight: bold; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h1>{{ .Pharmacy.Name }}</h1>
      <div class="muted">{{ deref .Pharmacy.Address }}</div>
      <div class="muted">{{ deref .Pharmacy.Phone }}</div>
      {{ with .Pharmacy.LicenseNo }}<div class="muted">License: {{ deref . }}</div>{{ end }}
    </div>
    <div>
      <h1>Bill {{ .Bill.Number }}</h1>
      <div class="muted">{{ formatDate .Bill.Date }}</div>
      <div>{{ .Bill.CustomerName }}</div>
      {{ if .Bill.CustomerMobile }}<div class="muted">{{ .Bill.CustomerMobile }}</div>{{ end }}
      {{ if not .Bill.IsPaid }}<div class="unpaid">UNPAID</div>{{ end }}
    </div>
  </div>

  <table>
    <thead>
      <tr>
        <th>#</th><th>Product</th><th>Batch</th>
        <th class="num">Qty</th><th class="num">Price</th>
        <th class="num">Disc %</th><th class="num">Total</th>
      </tr>
    </thead>
    <tbody>
      {{ range .Bill.Items }}
      <tr>
        <td>{{ .LineNo }}</td>
        <td>{{ .ProductName }}</td>
        <td>{{ .BatchNo }}</td>
        <td class="num">{{ .Quantity }}</td>
        <td class="num">{{ money .UnitPrice }}</td>
        <td class="num">{{ money .DiscountPercent }}</td>
        <td class="num">{{ money .Total }}</td>
      </tr>
      {{ end }}
    </tbody>
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{ money .Bill.Subtotal }}</td></tr>
    <tr><td>Discount</td><td class="num">{{ money .Bill.DiscountAmount }}</td></tr>
    <tr class="grand"><td>Grand Total</td><td class="num">{{ money .Bill.GrandTotal }}</td></tr>
  </table>

  {{ if .Bill.Notes }}<p class="muted">{{ .Bill.Notes }}</p>{{ end }}
  {{ with .Pharmacy.Attributes.GetString "footerNote" }}<p class="muted">{{ . }}</p>{{ end }}
</body>
</html>`
