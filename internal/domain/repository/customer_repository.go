package repository

import "github.com/moztech/fiscal-mz/internal/domain/entity"

// CustomerRepository defines the persistence port for customers.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	ListByCompany(companyID string) ([]*entity.Customer, error)
}
