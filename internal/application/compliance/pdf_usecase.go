package compliance

import (
	"context"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
)

// PDFService renders invoice PDFs with the embedded validation QR.
type PDFService struct {
	invoiceRepo  repository.InvoiceRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	generator    InvoicePDFGenerator
	signer       TokenSigner
	features     FeatureAvailability
}

// NewPDFService wires the PDF use case.
func NewPDFService(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	generator InvoicePDFGenerator,
	signer TokenSigner,
	features FeatureAvailability,
) *PDFService {
	return &PDFService{
		invoiceRepo:  invoiceRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		generator:    generator,
		signer:       signer,
		features:     features,
	}
}

// InvoicePDF renders one invoice. The validation QR is included only
// when the deployment has a validation secret.
func (s *PDFService) InvoicePDF(ctx context.Context, companyID, invoiceID string) ([]byte, error) {
	inv, err := s.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	items, err := s.invoiceRepo.GetItemsByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		inv.Items = append(inv.Items, *it)
	}

	company, err := s.companyRepo.GetByID(inv.CompanyID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(inv.CustomerID)
	if err != nil {
		return nil, err
	}

	qrContent := ""
	if s.features.Validation {
		qrContent = s.signer.QRContent(DoctypeSalesInvoice, inv.Name())
	}
	return s.generator.GenerateInvoicePDF(ctx, inv, company, customer, qrContent)
}
