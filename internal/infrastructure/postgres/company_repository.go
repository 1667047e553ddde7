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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implements CompanyRepository (usable with pool or tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository builds the adapter. Pass a pool or tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, nuit, tax_id, address, city, province, phone, email, currency, status,
		inss_employer_rate, inss_employee_rate, at_enabled, auto_submit_saft, created_at, updated_at`

// Create persists a new company.
func (r *CompanyRepo) Create(company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, nullIfEmpty(company.NUIT), nullIfEmpty(company.TaxID),
		company.Address, company.City, company.Province, company.Phone, company.Email,
		company.Currency, company.Status,
		company.INSSEmployerRate, company.INSSEmployeeRate,
		company.ATEnabled, company.AutoSubmitSAF,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// Update overwrites the mutable company fields.
func (r *CompanyRepo) Update(company *entity.Company) error {
	query := `
		UPDATE companies SET
			name = $2, nuit = $3, tax_id = $4, address = $5, city = $6, province = $7,
			phone = $8, email = $9, currency = $10, status = $11,
			inss_employer_rate = $12, inss_employee_rate = $13,
			at_enabled = $14, auto_submit_saft = $15, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, nullIfEmpty(company.NUIT), nullIfEmpty(company.TaxID),
		company.Address, company.City, company.Province, company.Phone, company.Email,
		company.Currency, company.Status,
		company.INSSEmployerRate, company.INSSEmployeeRate,
		company.ATEnabled, company.AutoSubmitSAF,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches one company.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// ListAutoSubmit returns active companies enrolled in automatic monthly
// SAF-T submission.
func (r *CompanyRepo) ListAutoSubmit() ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + `
		FROM companies
		WHERE at_enabled = TRUE AND auto_submit_saft = TRUE AND status = 'active'
		ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list auto-submit companies: %w", err)
	}
	defer rows.Close()

	var out []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	var nuit, taxID *string
	err := row.Scan(
		&c.ID, &c.Name, &nuit, &taxID, &c.Address, &c.City, &c.Province,
		&c.Phone, &c.Email, &c.Currency, &c.Status,
		&c.INSSEmployerRate, &c.INSSEmployeeRate,
		&c.ATEnabled, &c.AutoSubmitSAF, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if nuit != nil {
		c.NUIT = *nuit
	}
	if taxID != nil {
		c.TaxID = *taxID
	}
	return &c, nil
}
