package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moztech/fiscal-mz/internal/application/dto"
	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

// InvoiceTxRunner runs the invoice persistence inside one transaction.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error
}

// InvoiceService covers the invoice lifecycle: create, cancel, fetch.
// Totals are always computed server side from the lines.
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	txRunner     InvoiceTxRunner
	transmitSvc  *TransmissionService
	tokenSvc     *TokenService
	log          *logger.Logger
	now          func() time.Time
}

// NewInvoiceService wires the invoice use case.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	txRunner InvoiceTxRunner,
	transmitSvc *TransmissionService,
	tokenSvc *TokenService,
	log *logger.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		txRunner:     txRunner,
		transmitSvc:  transmitSvc,
		tokenSvc:     tokenSvc,
		log:          log,
		now:          time.Now,
	}
}

// Create persists a new invoice in Submitted status. Header and lines
// commit atomically.
func (s *InvoiceService) Create(ctx context.Context, companyID string, req dto.CreateInvoiceRequest) (*entity.SalesInvoice, error) {
	if req.CustomerID == "" || req.Number == "" || len(req.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.customerRepo.GetByID(req.CustomerID); err != nil {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	dueDate := date
	if req.DueDate != "" {
		dueDate, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
	}
	currency := req.Currency
	if currency == "" {
		currency = "MZN"
	}

	now := s.now()
	inv := &entity.SalesInvoice{
		CompanyID:  companyID,
		CustomerID: req.CustomerID,
		Series:     req.Series,
		Number:     req.Number,
		Date:       date,
		DueDate:    dueDate,
		Currency:   currency,
		Status:     entity.InvoiceStatusSubmitted,
		ATStatus:   entity.ATStatusNotSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	hundred := decimal.NewFromInt(100)
	items := make([]entity.InvoiceItem, 0, len(req.Items))
	for _, line := range req.Items {
		if !line.Quantity.IsPositive() || line.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		net := line.Quantity.Mul(line.UnitPrice).Round(2)
		tax := net.Mul(line.VATRate).Div(hundred).Round(2)
		items = append(items, entity.InvoiceItem{
			ProductID:   line.ProductID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			VATRate:     line.VATRate,
			NetAmount:   net,
			TaxAmount:   tax,
			LineTotal:   net.Add(tax),
		})
		inv.NetTotal = inv.NetTotal.Add(net)
		inv.TaxTotal = inv.TaxTotal.Add(tax)
	}
	inv.GrandTotal = inv.NetTotal.Add(inv.TaxTotal)

	err = s.txRunner.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
		if err := repo.Create(inv); err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
			if err := repo.CreateItem(&items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv.Items = items

	// Issuance failure never rolls back the invoice; the token can be
	// recomputed from the secret at print time.
	if s.tokenSvc != nil {
		if _, err := s.tokenSvc.Issue(ctx, companyID, DoctypeSalesInvoice, inv.Name()); err != nil {
			s.log.Warn().Err(err).Str("invoice", inv.Name()).Msg("validation token issuance failed")
		}
	}

	s.log.Info().Str("invoice", inv.Name()).Str("company_id", companyID).Msg("invoice created")
	return inv, nil
}

// Cancel marks the invoice cancelled and writes the cancellation record
// into the transmission ledger.
func (s *InvoiceService) Cancel(ctx context.Context, companyID, invoiceID, reason string) error {
	inv, err := s.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if inv.CompanyID != companyID {
		return domain.ErrForbidden
	}
	if inv.Status == entity.InvoiceStatusCancelled {
		return domain.ErrConflict
	}

	if err := s.invoiceRepo.UpdateStatus(invoiceID, entity.InvoiceStatusCancelled); err != nil {
		return err
	}
	if _, err := s.transmitSvc.RecordCancellation(ctx, companyID, DoctypeSalesInvoice, inv.Name(), reason); err != nil {
		return err
	}
	return nil
}

// Get fetches the invoice with its lines, scoped to the company.
func (s *InvoiceService) Get(ctx context.Context, companyID, invoiceID string) (*entity.SalesInvoice, error) {
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
	return inv, nil
}
