package compliance

import (
	"context"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/infrastructure/at"
)

// ATSubmitter is the transmission port towards the tax authority. The
// production implementation is at.Client; tests substitute a fake.
type ATSubmitter interface {
	Submit(ctx context.Context, companyNUIT, transmissionType string, payload any) (*at.Result, error)
}

// InvoicePDFGenerator renders the printable invoice representation.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.SalesInvoice, company *entity.Company,
		customer *entity.Customer, qrContent string) ([]byte, error)
}

// TokenSigner signs and verifies the validation hashes carried in QR codes.
type TokenSigner interface {
	Hash(doctype, name string) string
	Verify(doctype, name, presented string) bool
	ValidationURL(doctype, name string) string
	QRContent(doctype, name string) string
}
