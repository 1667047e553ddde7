package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

// EmployeeRepo implements EmployeeRepository (usable with pool or tx).
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository builds the adapter. Pass a pool or tx (Querier).
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// Create persists a new employee.
func (r *EmployeeRepo) Create(employee *entity.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}
	query := `
		INSERT INTO employees (id, company_id, name, nuit, inss_number, position, base_salary, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		employee.ID, employee.CompanyID, employee.Name,
		nullIfEmpty(employee.NUIT), nullIfEmpty(employee.INSSNumber),
		employee.Position, employee.BaseSalary, employee.Active,
		employee.CreatedAt, employee.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetByID fetches one employee.
func (r *EmployeeRepo) GetByID(id string) (*entity.Employee, error) {
	query := `
		SELECT id, company_id, name, COALESCE(nuit, ''), COALESCE(inss_number, ''), position, base_salary, active, created_at, updated_at
		FROM employees WHERE id = $1`
	var e entity.Employee
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&e.ID, &e.CompanyID, &e.Name, &e.NUIT, &e.INSSNumber,
		&e.Position, &e.BaseSalary, &e.Active, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

// ListActiveByCompany returns active employees ordered by name.
func (r *EmployeeRepo) ListActiveByCompany(companyID string) ([]*entity.Employee, error) {
	query := `
		SELECT id, company_id, name, COALESCE(nuit, ''), COALESCE(inss_number, ''), position, base_salary, active, created_at, updated_at
		FROM employees WHERE company_id = $1 AND active = TRUE ORDER BY name`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []*entity.Employee
	for rows.Next() {
		var e entity.Employee
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.Name, &e.NUIT, &e.INSSNumber,
			&e.Position, &e.BaseSalary, &e.Active, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

var _ repository.SalarySlipRepository = (*SalarySlipRepo)(nil)

// SalarySlipRepo implements SalarySlipRepository (usable with pool or tx).
type SalarySlipRepo struct {
	q Querier
}

// NewSalarySlipRepository builds the adapter. Pass a pool or tx (Querier).
func NewSalarySlipRepository(q Querier) *SalarySlipRepo {
	return &SalarySlipRepo{q: q}
}

// Create persists a salary slip.
func (r *SalarySlipRepo) Create(slip *entity.SalarySlip) error {
	if slip.ID == "" {
		slip.ID = uuid.New().String()
	}
	query := `
		INSERT INTO salary_slips (id, company_id, employee_id, period, gross, inss_employee, inss_employer, irps, net, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		slip.ID, slip.CompanyID, slip.EmployeeID, slip.Period,
		slip.Gross, slip.INSSEmployee, slip.INSSEmployer, slip.IRPS, slip.Net,
		slip.CreatedAt, slip.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert salary slip: %w", err)
	}
	return nil
}

// CreateBenefit persists one benefit-in-kind valuation.
func (r *SalarySlipRepo) CreateBenefit(benefit *entity.BenefitInKind) error {
	if benefit.ID == "" {
		benefit.ID = uuid.New().String()
	}
	query := `
		INSERT INTO salary_slip_benefits (id, salary_slip_id, kind, description, valuation)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		benefit.ID, benefit.SalarySlipID, benefit.Kind, benefit.Description, benefit.Valuation,
	)
	if err != nil {
		return fmt.Errorf("insert benefit: %w", err)
	}
	return nil
}

// GetByID fetches one salary slip.
func (r *SalarySlipRepo) GetByID(id string) (*entity.SalarySlip, error) {
	query := `
		SELECT id, company_id, employee_id, period, gross, inss_employee, inss_employer, irps, net, created_at, updated_at
		FROM salary_slips WHERE id = $1`
	var s entity.SalarySlip
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.Period,
		&s.Gross, &s.INSSEmployee, &s.INSSEmployer, &s.IRPS, &s.Net,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get salary slip: %w", err)
	}
	return &s, nil
}

// ListByPeriod returns the slips of the month ordered by employee.
func (r *SalarySlipRepo) ListByPeriod(companyID, period string) ([]*entity.SalarySlip, error) {
	query := `
		SELECT id, company_id, employee_id, period, gross, inss_employee, inss_employer, irps, net, created_at, updated_at
		FROM salary_slips WHERE company_id = $1 AND period = $2 ORDER BY employee_id`
	rows, err := r.q.Query(context.Background(), query, companyID, period)
	if err != nil {
		return nil, fmt.Errorf("list salary slips: %w", err)
	}
	defer rows.Close()

	var out []*entity.SalarySlip
	for rows.Next() {
		var s entity.SalarySlip
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.EmployeeID, &s.Period,
			&s.Gross, &s.INSSEmployee, &s.INSSEmployer, &s.IRPS, &s.Net,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan salary slip: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// GetBenefitsBySlipID fetches the benefit valuations of a slip.
func (r *SalarySlipRepo) GetBenefitsBySlipID(slipID string) ([]*entity.BenefitInKind, error) {
	query := `
		SELECT id, salary_slip_id, kind, description, valuation
		FROM salary_slip_benefits WHERE salary_slip_id = $1 ORDER BY kind`
	rows, err := r.q.Query(context.Background(), query, slipID)
	if err != nil {
		return nil, fmt.Errorf("list benefits: %w", err)
	}
	defer rows.Close()

	var out []*entity.BenefitInKind
	for rows.Next() {
		var b entity.BenefitInKind
		if err := rows.Scan(&b.ID, &b.SalarySlipID, &b.Kind, &b.Description, &b.Valuation); err != nil {
			return nil, fmt.Errorf("scan benefit: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
