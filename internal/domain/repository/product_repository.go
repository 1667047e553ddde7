package repository

import "github.com/moztech/fiscal-mz/internal/domain/entity"

// ProductRepository defines the persistence port for products.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	ListByCompany(companyID string) ([]*entity.Product, error)
}
