package compliance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/period"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
	"github.com/moztech/fiscal-mz/internal/infrastructure/saft"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

// GeneratedFile is the outcome of one SAF-T generation: the persisted
// metadata plus the canonical bytes and their checksum.
type GeneratedFile struct {
	File      *entity.SAFTFile
	Canonical []byte
	Checksum  string
}

// MonthlyResult groups the files of one monthly run.
type MonthlyResult struct {
	Period  string
	Sales   *GeneratedFile
	Payroll *GeneratedFile // nil when the company has no slips for the month
}

// SAFTService generates audit files: query the period, build the XML,
// canonicalize, checksum, validate and persist.
type SAFTService struct {
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	journalRepo  repository.JournalRepository
	employeeRepo repository.EmployeeRepository
	slipRepo     repository.SalarySlipRepository
	fileRepo     repository.SAFTFileRepository
	builder      *saft.Builder
	validator    *saft.SchemaValidator
	exportDir    string
	log          *logger.Logger
	now          func() time.Time
}

// NewSAFTService wires the generation use case. exportDir may be empty;
// generated files are then tracked in the database only.
func NewSAFTService(
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	journalRepo repository.JournalRepository,
	employeeRepo repository.EmployeeRepository,
	slipRepo repository.SalarySlipRepository,
	fileRepo repository.SAFTFileRepository,
	builder *saft.Builder,
	validator *saft.SchemaValidator,
	exportDir string,
	log *logger.Logger,
) *SAFTService {
	return &SAFTService{
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		journalRepo:  journalRepo,
		employeeRepo: employeeRepo,
		slipRepo:     slipRepo,
		fileRepo:     fileRepo,
		builder:      builder,
		validator:    validator,
		exportDir:    exportDir,
		log:          log,
		now:          time.Now,
	}
}

// Generate builds one SAF-T file of the given type for the month.
func (s *SAFTService) Generate(ctx context.Context, companyID, fileType string, year, month int) (*GeneratedFile, error) {
	p, err := period.FromYearMonth(year, month)
	if err != nil {
		return nil, domain.NewGenerationError(fileType, "period", err)
	}
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, domain.NewGenerationError(fileType, "fetch-company", err)
	}

	in, docCount, err := s.collect(company, p, fileType)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch fileType {
	case entity.SAFTTypeSales:
		data, err = s.builder.BuildSales(*in)
	case entity.SAFTTypePayroll:
		data, err = s.builder.BuildPayroll(*in)
	case entity.SAFTTypeComplete:
		data, err = s.builder.BuildComplete(*in)
	default:
		return nil, domain.NewGenerationError(fileType, "build", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(data, fileType); err != nil {
		return nil, err
	}

	// Checksum is computed once, over the canonical bytes. Every later
	// consumer (ledger, transmission payload) reuses this value.
	canonical, checksum, err := saft.CanonicalChecksum(data)
	if err != nil {
		return nil, domain.NewGenerationError(fileType, "canonicalize", err)
	}

	now := s.now()
	file := &entity.SAFTFile{
		CompanyID:     companyID,
		FileType:      fileType,
		Period:        p.String(),
		Filename:      saft.Filename(fileType, p.String(), company.Name, now),
		Checksum:      checksum,
		SizeBytes:     int64(len(canonical)),
		DocumentCount: docCount,
		GeneratedAt:   now,
		CreatedAt:     now,
	}

	if s.exportDir != "" {
		path := filepath.Join(s.exportDir, file.Filename)
		if err := os.WriteFile(path, canonical, 0o644); err != nil {
			return nil, domain.NewGenerationError(fileType, "save", fmt.Errorf("write export file: %w", err))
		}
		file.Path = path
	}

	if err := s.fileRepo.Create(file); err != nil {
		return nil, domain.NewGenerationError(fileType, "save", err)
	}

	s.log.Info().
		Str("company_id", companyID).
		Str("file_type", fileType).
		Str("period", file.Period).
		Str("checksum", checksum).
		Int("documents", docCount).
		Msg("SAF-T file generated")

	return &GeneratedFile{File: file, Canonical: canonical, Checksum: checksum}, nil
}

// GenerateMonthly produces the sales file and, when the month has
// salary slips, the payroll file. Missing payroll data skips that file
// instead of failing the run.
func (s *SAFTService) GenerateMonthly(ctx context.Context, companyID string, year, month int) (*MonthlyResult, error) {
	p, err := period.FromYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	result := &MonthlyResult{Period: p.String()}

	sales, err := s.Generate(ctx, companyID, entity.SAFTTypeSales, year, month)
	if err != nil {
		return nil, err
	}
	result.Sales = sales

	slips, err := s.slipRepo.ListByPeriod(companyID, p.String())
	if err != nil {
		s.log.Warn().Err(err).Str("company_id", companyID).Msg("payroll lookup failed, skipping payroll SAF-T")
		return result, nil
	}
	if len(slips) == 0 {
		s.log.Info().Str("company_id", companyID).Str("period", p.String()).Msg("no salary slips, skipping payroll SAF-T")
		return result, nil
	}

	payroll, err := s.Generate(ctx, companyID, entity.SAFTTypePayroll, year, month)
	if err != nil {
		return nil, err
	}
	result.Payroll = payroll
	return result, nil
}

// GetLatestFile returns the newest generated file for the type and period.
func (s *SAFTService) GetLatestFile(companyID, fileType, periodID string) (*entity.SAFTFile, error) {
	return s.fileRepo.GetLatest(companyID, fileType, periodID)
}

// ListFiles returns the newest generated files for the company. Empty
// fileType or period means no filter on that field.
func (s *SAFTService) ListFiles(companyID, fileType, period string, limit int) ([]*entity.SAFTFile, error) {
	return s.fileRepo.ListByCompany(companyID, fileType, period, limit)
}

// collect loads the master and transactional data the file type needs.
func (s *SAFTService) collect(company *entity.Company, p period.Period, fileType string) (*saft.BuildInput, int, error) {
	in := &saft.BuildInput{Company: company, Period: p}
	docCount := 0

	if fileType == entity.SAFTTypeSales || fileType == entity.SAFTTypeComplete {
		customers, err := s.customerRepo.ListByCompany(company.ID)
		if err != nil {
			return nil, 0, domain.NewGenerationError(fileType, "fetch-customers", err)
		}
		products, err := s.productRepo.ListByCompany(company.ID)
		if err != nil {
			return nil, 0, domain.NewGenerationError(fileType, "fetch-products", err)
		}
		invoices, err := s.invoiceRepo.ListSubmittedInPeriod(company.ID, p.Start, p.End)
		if err != nil {
			return nil, 0, domain.NewGenerationError(fileType, "fetch-invoices", err)
		}
		journal, err := s.journalRepo.ListInPeriod(company.ID, p.Start, p.End)
		if err != nil {
			return nil, 0, domain.NewGenerationError(fileType, "fetch-journal", err)
		}
		in.Customers = customers
		in.Products = products
		in.Invoices = invoices
		in.Journal = journal
		docCount += len(invoices)
	}

	if fileType == entity.SAFTTypePayroll || fileType == entity.SAFTTypeComplete {
		employees, err := s.employeeRepo.ListActiveByCompany(company.ID)
		if err != nil {
			return nil, 0, domain.NewGenerationError(fileType, "fetch-employees", err)
		}
		slips, err := s.slipRepo.ListByPeriod(company.ID, p.String())
		if err != nil {
			return nil, 0, domain.NewGenerationError(fileType, "fetch-slips", err)
		}
		// Benefit enrichment is best effort: a failed lookup leaves the
		// slip without benefits rather than blocking the export.
		for _, slip := range slips {
			benefits, err := s.slipRepo.GetBenefitsBySlipID(slip.ID)
			if err != nil {
				s.log.Warn().Err(err).Str("slip_id", slip.ID).Msg("benefit lookup failed")
				continue
			}
			for _, b := range benefits {
				slip.Benefits = append(slip.Benefits, *b)
			}
		}
		in.Employees = employees
		in.Slips = slips
		docCount += len(slips)
	}

	return in, docCount, nil
}
