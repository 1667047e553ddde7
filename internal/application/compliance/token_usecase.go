package compliance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moztech/fiscal-mz/internal/application/dto"
	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

// Doctypes accepted by the public validation endpoint.
const (
	DoctypeSalesInvoice = "Sales Invoice"
	DoctypeSalarySlip   = "Salary Slip"
)

// ValidationService answers public QR validation requests. The
// signature check runs before any database access so that invalid
// tokens cannot probe for document existence.
type ValidationService struct {
	signer       TokenSigner
	invoiceRepo  repository.InvoiceRepository
	slipRepo     repository.SalarySlipRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	log          *logger.Logger
}

// NewValidationService wires the validation use case.
func NewValidationService(
	signer TokenSigner,
	invoiceRepo repository.InvoiceRepository,
	slipRepo repository.SalarySlipRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	log *logger.Logger,
) *ValidationService {
	return &ValidationService{
		signer:       signer,
		invoiceRepo:  invoiceRepo,
		slipRepo:     slipRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		log:          log,
	}
}

// Validate checks the hash and, only when it is authentic, looks up the
// document and returns its summary. Responses never distinguish a bad
// signature from a well-formed but unknown document beyond the message.
func (s *ValidationService) Validate(ctx context.Context, doctype, name, hash string) dto.ValidateResponse {
	if doctype == "" || name == "" {
		return dto.ValidateResponse{Valid: false, Message: "Parâmetros inválidos"}
	}
	if hash == "" || !s.signer.Verify(doctype, name, hash) {
		return dto.ValidateResponse{Valid: false, Message: "Assinatura inválida"}
	}

	info, err := s.lookup(doctype, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return dto.ValidateResponse{Valid: false, Message: "Documento não encontrado"}
		}
		s.log.Error().Err(err).Str("doctype", doctype).Str("name", name).Msg("validation lookup failed")
		return dto.ValidateResponse{Valid: false, Message: "Erro interno"}
	}
	return dto.ValidateResponse{Valid: true, DocumentInfo: info}
}

func (s *ValidationService) lookup(doctype, name string) (*dto.DocumentInfoDTO, error) {
	switch doctype {
	case DoctypeSalesInvoice:
		inv, err := s.invoiceRepo.GetByName(name)
		if err != nil {
			return nil, err
		}
		info := &dto.DocumentInfoDTO{
			Type:     doctype,
			Name:     inv.Name(),
			Date:     inv.Date.Format("2006-01-02"),
			Amount:   inv.GrandTotal.StringFixed(2),
			Currency: inv.Currency,
			Status:   inv.Status,
		}
		if company, err := s.companyRepo.GetByID(inv.CompanyID); err == nil {
			info.Company = company.Name
			info.TaxID = company.FiscalNumber()
		}
		if customer, err := s.customerRepo.GetByID(inv.CustomerID); err == nil {
			info.Customer = customer.Name
		}
		return info, nil

	case DoctypeSalarySlip:
		slip, err := s.slipRepo.GetByID(name)
		if err != nil {
			return nil, err
		}
		info := &dto.DocumentInfoDTO{
			Type:   doctype,
			Name:   slip.ID,
			Date:   slip.Period,
			Amount: slip.Net.StringFixed(2),
		}
		if company, err := s.companyRepo.GetByID(slip.CompanyID); err == nil {
			info.Company = company.Name
		}
		return info, nil

	default:
		return nil, domain.ErrNotFound
	}
}

// TokenService issues QR validation tokens. Every issuance appends a
// row; reissuing for the same document is allowed and keeps history.
type TokenService struct {
	signer    TokenSigner
	tokenRepo repository.ValidationTokenRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewTokenService wires the token issuance use case.
func NewTokenService(signer TokenSigner, tokenRepo repository.ValidationTokenRepository, log *logger.Logger) *TokenService {
	return &TokenService{signer: signer, tokenRepo: tokenRepo, log: log, now: time.Now}
}

// Issue signs a validation token for the document and records it.
func (s *TokenService) Issue(ctx context.Context, companyID, doctype, docname string) (*entity.ValidationToken, error) {
	if doctype == "" || docname == "" {
		return nil, domain.ErrInvalidInput
	}
	token := &entity.ValidationToken{
		CompanyID: companyID,
		Doctype:   doctype,
		Docname:   docname,
		Hash:      s.signer.Hash(doctype, docname),
		Content:   s.signer.QRContent(doctype, docname),
		CreatedAt: s.now(),
	}
	if err := s.tokenRepo.Create(token); err != nil {
		return nil, fmt.Errorf("record validation token: %w", err)
	}
	s.log.Debug().Str("doctype", doctype).Str("docname", docname).Msg("validation token issued")
	return token, nil
}
