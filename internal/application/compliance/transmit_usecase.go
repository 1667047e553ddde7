package compliance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/period"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
	"github.com/moztech/fiscal-mz/internal/infrastructure/at"
	"github.com/moztech/fiscal-mz/internal/infrastructure/saft"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

// TransmissionService orchestrates every submission to the AT:
//
//	idempotency guard → ledger entry (Pending) → payload → POST → ledger update
//
// A request id with a completed ledger entry is never retransmitted; a
// failed one may be retried and produces a fresh ledger entry. Invoice
// submissions run in their own goroutine (TransmitInvoiceAsync) with an
// independent context and timeout, decoupled from the HTTP cycle.
type TransmissionService struct {
	invoiceRepo  repository.InvoiceRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	logRepo      repository.TransmissionLogRepository
	saftSvc      *SAFTService
	submitter    ATSubmitter
	features     FeatureAvailability
	log          *logger.Logger
	now          func() time.Time
}

// NewTransmissionService wires the orchestrator. submitter may be nil
// only when features.ATTransmission is false.
func NewTransmissionService(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	logRepo repository.TransmissionLogRepository,
	saftSvc *SAFTService,
	submitter ATSubmitter,
	features FeatureAvailability,
	log *logger.Logger,
) *TransmissionService {
	return &TransmissionService{
		invoiceRepo:  invoiceRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		logRepo:      logRepo,
		saftSvc:      saftSvc,
		submitter:    submitter,
		features:     features,
		log:          log,
		now:          time.Now,
	}
}

// TransmitInvoiceAsync fires the invoice submission in its own
// goroutine. The invoice must already be persisted in Submitted status.
func (s *TransmissionService) TransmitInvoiceAsync(invoiceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.TransmitInvoice(ctx, invoiceID); err != nil {
			s.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("invoice transmission failed")
		}
	}()
}

// TransmitInvoice submits one invoice to the AT and records the outcome
// in the ledger and on the invoice itself.
func (s *TransmissionService) TransmitInvoice(ctx context.Context, invoiceID string) error {
	if !s.features.ATTransmission {
		return domain.ErrDisabled
	}

	// Re-fetch fresh state; the HTTP goroutine may have moved on.
	inv, err := s.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return fmt.Errorf("fetch invoice: %w", err)
	}
	if inv.Status != entity.InvoiceStatusSubmitted {
		return fmt.Errorf("invoice %s is %s, not eligible for transmission: %w",
			inv.Name(), inv.Status, domain.ErrConflict)
	}

	requestID := entity.InvoiceRequestID(inv.Name())

	// Idempotency guard: a completed entry means this document already
	// reached the AT. No payload is built and no HTTP call is made.
	if prior, err := s.logRepo.GetCompletedByRequestID(inv.CompanyID, requestID); err == nil {
		s.log.Info().Str("request_id", requestID).Str("prior_id", prior.ID).Msg("already transmitted, skipping")
		return s.markInvoice(inv, entity.ATStatusCompleted, prior.ATReference, "")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("idempotency check: %w", err)
	}

	company, err := s.companyRepo.GetByID(inv.CompanyID)
	if err != nil {
		return fmt.Errorf("fetch company: %w", err)
	}
	customer, err := s.customerRepo.GetByID(inv.CustomerID)
	if err != nil {
		return fmt.Errorf("fetch customer: %w", err)
	}
	items, err := s.invoiceRepo.GetItemsByInvoiceID(inv.ID)
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}
	for _, it := range items {
		inv.Items = append(inv.Items, *it)
	}

	payload, err := at.BuildInvoicePayload(inv, company, customer, s.now())
	if err != nil {
		return err
	}

	entry := s.newEntry(inv.CompanyID, requestID, entity.TransmissionTypeInvoice,
		"Sales Invoice", inv.Name(), payload.Checksum)
	if err := s.logRepo.Create(entry); err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}

	result, err := s.submitter.Submit(ctx, company.FiscalNumber(), entity.TransmissionTypeInvoice, payload)
	if err != nil {
		s.finishEntry(entry, entity.TransmissionStatusFailed, "", err.Error())
		_ = s.markInvoice(inv, entity.ATStatusFailed, "", err.Error())
		return err
	}
	recordResponse(entry, result)
	if !result.Success {
		s.finishEntry(entry, entity.TransmissionStatusFailed, "", result.Message)
		return s.markInvoice(inv, entity.ATStatusFailed, "", result.Message)
	}

	s.finishEntry(entry, entity.TransmissionStatusCompleted, result.Reference, result.Message)
	return s.markInvoice(inv, entity.ATStatusCompleted, result.Reference, "")
}

// TransmitSAFT submits the latest generated SAF-T file for the type and
// period. When the stored file content is unavailable the file is
// regenerated first.
func (s *TransmissionService) TransmitSAFT(ctx context.Context, companyID, fileType, periodID string) (*entity.Transmission, error) {
	if !s.features.ATTransmission {
		return nil, domain.ErrDisabled
	}

	requestID := entity.SAFTRequestID(fileType, periodID)
	if prior, err := s.logRepo.GetCompletedByRequestID(companyID, requestID); err == nil {
		s.log.Info().Str("request_id", requestID).Msg("SAF-T already transmitted, skipping")
		return prior, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("idempotency check: %w", err)
	}

	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, fmt.Errorf("fetch company: %w", err)
	}

	content, checksum, docname, err := s.loadSAFT(ctx, companyID, fileType, periodID)
	if err != nil {
		return nil, err
	}

	payload := at.BuildSAFTPayload(fileType, periodID, company, content, checksum, s.now())

	entry := s.newEntry(companyID, requestID, entity.TransmissionTypeSAFT, "SAFT File", docname, checksum)
	if err := s.logRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}

	result, err := s.submitter.Submit(ctx, company.FiscalNumber(), entity.TransmissionTypeSAFT, payload)
	if err != nil {
		s.finishEntry(entry, entity.TransmissionStatusFailed, "", err.Error())
		return entry, err
	}
	recordResponse(entry, result)
	if !result.Success {
		s.finishEntry(entry, entity.TransmissionStatusFailed, "", result.Message)
		return entry, nil
	}
	s.finishEntry(entry, entity.TransmissionStatusCompleted, result.Reference, result.Message)
	return entry, nil
}

// RecordCancellation writes a completed cancellation record into the
// ledger. The AT has no void endpoint; the record preserves the audit
// trail locally.
func (s *TransmissionService) RecordCancellation(ctx context.Context, companyID, doctype, docname, reason string) (*entity.Transmission, error) {
	requestID := entity.CancellationRequestID(doctype, docname)
	if prior, err := s.logRepo.GetCompletedByRequestID(companyID, requestID); err == nil {
		return prior, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("idempotency check: %w", err)
	}

	entry := s.newEntry(companyID, requestID, entity.TransmissionTypeCancellation, doctype, docname, "")
	entry.Status = entity.TransmissionStatusCompleted
	entry.Detail = reason
	if err := s.logRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("create cancellation record: %w", err)
	}
	s.log.Info().Str("request_id", requestID).Msg("cancellation recorded")
	return entry, nil
}

// GenerateAndAutoSubmit runs the monthly cycle for every enrolled
// company: generate the previous month's files, then transmit them. One
// company failing does not stop the others.
func (s *TransmissionService) GenerateAndAutoSubmit(ctx context.Context) {
	if !s.features.AutoSubmit {
		return
	}
	prev := s.now().AddDate(0, -1, 0)
	year, month := prev.Year(), int(prev.Month())

	companies, err := s.companyRepo.ListAutoSubmit()
	if err != nil {
		s.log.Error().Err(err).Msg("auto-submit: listing companies failed")
		return
	}

	for _, company := range companies {
		result, err := s.saftSvc.GenerateMonthly(ctx, company.ID, year, month)
		if err != nil {
			s.log.Error().Err(err).Str("company_id", company.ID).Msg("auto-submit: generation failed")
			continue
		}
		if _, err := s.TransmitSAFT(ctx, company.ID, entity.SAFTTypeSales, result.Period); err != nil {
			s.log.Error().Err(err).Str("company_id", company.ID).Msg("auto-submit: sales transmission failed")
		}
		if result.Payroll != nil {
			if _, err := s.TransmitSAFT(ctx, company.ID, entity.SAFTTypePayroll, result.Period); err != nil {
				s.log.Error().Err(err).Str("company_id", company.ID).Msg("auto-submit: payroll transmission failed")
			}
		}
	}
}

// ListTransmissions returns the company's newest ledger entries. A
// non-empty periodID keeps only entries submitted inside that month.
func (s *TransmissionService) ListTransmissions(companyID, periodID string, limit int) ([]*entity.Transmission, error) {
	entries, err := s.logRepo.ListByCompany(companyID, limit)
	if err != nil {
		return nil, err
	}
	if periodID == "" {
		return entries, nil
	}
	p, err := period.Parse(periodID)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	filtered := entries[:0]
	for _, e := range entries {
		if !e.SubmittedAt.IsZero() && p.Contains(e.SubmittedAt) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// loadSAFT returns the canonical content and checksum of the latest
// generated file, regenerating when the stored copy is unavailable.
func (s *TransmissionService) loadSAFT(ctx context.Context, companyID, fileType, periodID string) (content []byte, checksum, docname string, err error) {
	file, err := s.saftSvc.GetLatestFile(companyID, fileType, periodID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", "", fmt.Errorf("fetch saft file: %w", err)
	}

	if file != nil && file.Path != "" {
		data, readErr := os.ReadFile(file.Path)
		if readErr == nil {
			// The stored copy must still match the recorded checksum;
			// a divergence means the file was altered after generation.
			if got := saft.Checksum(data); got != file.Checksum {
				return nil, "", "", fmt.Errorf("saft file %s: checksum mismatch (stored %s, computed %s)",
					file.Filename, file.Checksum, got)
			}
			return data, file.Checksum, file.Filename, nil
		}
		s.log.Warn().Err(readErr).Str("path", file.Path).Msg("stored SAF-T copy unreadable, regenerating")
	}

	p, err := period.Parse(periodID)
	if err != nil {
		return nil, "", "", domain.ErrInvalidInput
	}
	gen, err := s.saftSvc.Generate(ctx, companyID, fileType, p.Start.Year(), int(p.Start.Month()))
	if err != nil {
		return nil, "", "", err
	}
	return gen.Canonical, gen.Checksum, gen.File.Filename, nil
}

// recordResponse captures the HTTP status and a digest of the raw
// response body on the ledger entry before its final update.
func recordResponse(entry *entity.Transmission, result *at.Result) {
	entry.HTTPStatus = result.StatusCode
	if len(result.Response) > 0 {
		entry.RespDigest = saft.Checksum(result.Response)
	}
}

func (s *TransmissionService) newEntry(companyID, requestID, txType, doctype, docname, checksum string) *entity.Transmission {
	now := s.now()
	return &entity.Transmission{
		CompanyID:   companyID,
		RequestID:   requestID,
		Type:        txType,
		Doctype:     doctype,
		Docname:     docname,
		Status:      entity.TransmissionStatusPending,
		Checksum:    checksum,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// finishEntry persists the final state of a ledger entry. A persistence
// failure here is logged, not returned: the transmission outcome stands.
func (s *TransmissionService) finishEntry(entry *entity.Transmission, status, reference, detail string) {
	entry.Status = status
	entry.ATReference = reference
	entry.Detail = detail
	entry.SubmittedAt = s.now()
	if err := s.logRepo.Update(entry); err != nil {
		s.log.Error().Err(err).Str("request_id", entry.RequestID).Msg("ledger update failed")
	}
}

func (s *TransmissionService) markInvoice(inv *entity.SalesInvoice, atStatus, reference, errDetail string) error {
	inv.ATStatus = atStatus
	inv.ATReference = reference
	inv.ATErrors = errDetail
	if err := s.invoiceRepo.UpdateATStatus(inv); err != nil {
		return fmt.Errorf("update invoice AT status: %w", err)
	}
	return nil
}
