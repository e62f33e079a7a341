package bill

import (
	"context"
	"fmt"

	"apotheca/internal/core/apperror"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/pharmacy"
)

// View is the complete bill as handed to the renderer.
type View struct {
	Bill     *Bill
	Pharmacy *pharmacy.Pharmacy
}

// Renderer turns a bill view into a PDF document.
type Renderer interface {
	RenderBill(ctx context.Context, view *View) ([]byte, error)
}

// ObjectStore persists rendered documents and returns a public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Mailer delivers a bill to the customer.
type Mailer interface {
	SendWithAttachment(ctx context.Context, to, subject, body string, attachment []byte, filename string) error
}

// RenderPDF renders the bill, stores the document and records its URL.
// Runs outside the billing transaction: a failing collaborator surfaces
// as an error without touching the bill itself.
func (s *Service) RenderPDF(ctx context.Context, billID id.ID) (string, error) {
	if s.renderer == nil || s.store == nil {
		return "", apperror.NewBusinessRule("pdf_disabled", "PDF rendering is not configured")
	}

	b, err := s.GetByID(ctx, billID)
	if err != nil {
		return "", err
	}

	ph, err := s.pharmacies.Current(ctx)
	if err != nil {
		return "", err
	}

	data, err := s.renderer.RenderBill(ctx, &View{Bill: b, Pharmacy: ph})
	if err != nil {
		return "", fmt.Errorf("render bill %s: %w", b.Number, err)
	}

	key := fmt.Sprintf("bills/%s/%s.pdf", b.PharmacyID, b.Number)
	url, err := s.store.Put(ctx, key, "application/pdf", data)
	if err != nil {
		return "", fmt.Errorf("store bill pdf %s: %w", b.Number, err)
	}

	if err := s.repo.SetPDFURL(ctx, billID, url); err != nil {
		return "", err
	}

	return url, nil
}

// EmailPDF renders the bill and mails it to the given address.
func (s *Service) EmailPDF(ctx context.Context, billID id.ID, to string) error {
	if s.renderer == nil || s.mailer == nil {
		return apperror.NewBusinessRule("email_disabled", "Bill email is not configured")
	}
	if to == "" {
		return apperror.NewValidation("recipient email is required")
	}

	b, err := s.GetByID(ctx, billID)
	if err != nil {
		return err
	}

	ph, err := s.pharmacies.Current(ctx)
	if err != nil {
		return err
	}

	data, err := s.renderer.RenderBill(ctx, &View{Bill: b, Pharmacy: ph})
	if err != nil {
		return fmt.Errorf("render bill %s: %w", b.Number, err)
	}

	subject := fmt.Sprintf("Bill %s from %s", b.Number, ph.Name)
	body := fmt.Sprintf("Please find attached bill %s for %s.", b.Number, b.GrandTotal.StringFixed(2))

	if err := s.mailer.SendWithAttachment(ctx, to, subject, body, data, b.Number+".pdf"); err != nil {
		return fmt.Errorf("email bill %s: %w", b.Number, err)
	}
	return nil
}
