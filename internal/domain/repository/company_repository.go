package repository

import "github.com/moztech/fiscal-mz/internal/domain/entity"

// CompanyRepository defines the persistence port for companies.
type CompanyRepository interface {
	Create(company *entity.Company) error
	Update(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	// ListAutoSubmit returns companies with AT transmission enabled and
	// monthly auto-submission turned on.
	ListAutoSubmit() ([]*entity.Company, error)
}
