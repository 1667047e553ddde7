package repository

import (
	"time"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
)

// InvoiceRepository defines the persistence port for sales invoices.
type InvoiceRepository interface {
	Create(invoice *entity.SalesInvoice) error
	CreateItem(item *entity.InvoiceItem) error
	// UpdateATStatus updates only the AT transmission fields:
	// at_status, at_reference, at_errors.
	UpdateATStatus(invoice *entity.SalesInvoice) error
	UpdateStatus(id, status string) error
	GetByID(id string) (*entity.SalesInvoice, error)
	// GetByName looks an invoice up by its document name (series-number),
	// used by the public validation endpoint.
	GetByName(name string) (*entity.SalesInvoice, error)
	GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error)
	// ListSubmittedInPeriod returns posted invoices with a date inside
	// [from, to], ordered by date then name. Cancelled invoices are
	// included so the export reflects the full fiscal record.
	ListSubmittedInPeriod(companyID string, from, to time.Time) ([]*entity.SalesInvoice, error)
}
