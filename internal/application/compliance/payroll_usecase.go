package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/period"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
	"github.com/moztech/fiscal-mz/internal/domain/tax"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

// PayrollTxRunner runs the payroll persistence inside one transaction.
type PayrollTxRunner interface {
	RunPayroll(ctx context.Context, fn func(slipRepo repository.SalarySlipRepository) error) error
}

// PayrollService computes monthly salary slips: INSS contributions,
// IRPS withholding and the resulting net pay for every active employee.
type PayrollService struct {
	employeeRepo repository.EmployeeRepository
	slipRepo     repository.SalarySlipRepository
	companyRepo  repository.CompanyRepository
	txRunner     PayrollTxRunner
	irpsTable    tax.Table
	log          *logger.Logger
	now          func() time.Time
}

// NewPayrollService wires the payroll use case with the statutory IRPS
// table.
func NewPayrollService(
	employeeRepo repository.EmployeeRepository,
	slipRepo repository.SalarySlipRepository,
	companyRepo repository.CompanyRepository,
	txRunner PayrollTxRunner,
	log *logger.Logger,
) *PayrollService {
	return &PayrollService{
		employeeRepo: employeeRepo,
		slipRepo:     slipRepo,
		companyRepo:  companyRepo,
		txRunner:     txRunner,
		irpsTable:    tax.DefaultIRPSTable(),
		log:          log,
		now:          time.Now,
	}
}

// RunMonthly computes and persists the slips for every active employee
// of the company. An existing slip for the period makes the run a
// conflict; payroll is not recomputed silently.
func (s *PayrollService) RunMonthly(ctx context.Context, companyID string, year, month int) ([]*entity.SalarySlip, error) {
	p, err := period.FromYearMonth(year, month)
	if err != nil {
		return nil, err
	}

	existing, err := s.slipRepo.ListByPeriod(companyID, p.String())
	if err != nil {
		return nil, fmt.Errorf("check existing slips: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("payroll for %s already computed: %w", p.String(), domain.ErrConflict)
	}

	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, fmt.Errorf("fetch company: %w", err)
	}
	rates := s.ratesFor(company)

	employees, err := s.employeeRepo.ListActiveByCompany(companyID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	now := s.now()
	slips := make([]*entity.SalarySlip, 0, len(employees))
	for _, emp := range employees {
		net, err := tax.ComputeNetSalary(emp.BaseSalary, decimal.Zero, rates, s.irpsTable)
		if err != nil {
			return nil, fmt.Errorf("compute salary for %s: %w", emp.ID, err)
		}
		slips = append(slips, &entity.SalarySlip{
			CompanyID:    companyID,
			EmployeeID:   emp.ID,
			Period:       p.String(),
			Gross:        net.Gross,
			INSSEmployee: net.INSSEmployee,
			INSSEmployer: net.INSSEmployer,
			IRPS:         net.IRPS,
			Net:          net.Net,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	err = s.txRunner.RunPayroll(ctx, func(repo repository.SalarySlipRepository) error {
		for _, slip := range slips {
			if err := repo.Create(slip); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", companyID).
		Str("period", p.String()).
		Int("slips", len(slips)).
		Msg("payroll computed")
	return slips, nil
}

// Preview computes the salary breakdown for one gross amount without
// persisting anything.
func (s *PayrollService) Preview(companyID string, gross string) (*tax.NetSalary, error) {
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(gross)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	net, err := tax.ComputeNetSalary(amount, decimal.Zero, s.ratesFor(company), s.irpsTable)
	if err != nil {
		return nil, err
	}
	return &net, nil
}

// ratesFor applies the company's INSS overrides over the statutory
// defaults.
func (s *PayrollService) ratesFor(company *entity.Company) tax.Rates {
	rates := tax.DefaultINSSRates()
	if company.INSSEmployerRate != nil {
		rates.Employer = *company.INSSEmployerRate
	}
	if company.INSSEmployeeRate != nil {
		rates.Employee = *company.INSSEmployeeRate
	}
	return rates
}
