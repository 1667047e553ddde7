package repository

import "github.com/moztech/fiscal-mz/internal/domain/entity"

// EmployeeRepository defines the persistence port for employees.
type EmployeeRepository interface {
	Create(employee *entity.Employee) error
	GetByID(id string) (*entity.Employee, error)
	ListActiveByCompany(companyID string) ([]*entity.Employee, error)
}

// SalarySlipRepository defines the persistence port for salary slips.
type SalarySlipRepository interface {
	Create(slip *entity.SalarySlip) error
	CreateBenefit(benefit *entity.BenefitInKind) error
	GetByID(id string) (*entity.SalarySlip, error)
	// ListByPeriod returns slips for the period (YYYY-MM) ordered by
	// employee id.
	ListByPeriod(companyID, period string) ([]*entity.SalarySlip, error)
	GetBenefitsBySlipID(slipID string) ([]*entity.BenefitInKind, error)
}
