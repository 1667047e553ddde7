package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
)

// CreateInvoiceRequest is the payload of POST /api/invoices.
type CreateInvoiceRequest struct {
	CustomerID string                     `json:"customer_id"`
	Series     string                     `json:"series"`
	Number     string                     `json:"number"`
	Date       string                     `json:"date"`     // YYYY-MM-DD
	DueDate    string                     `json:"due_date"` // YYYY-MM-DD
	Currency   string                     `json:"currency"`
	Items      []CreateInvoiceItemRequest `json:"items"`
}

// CreateInvoiceItemRequest is one line of the create request. Net, tax
// and total amounts are computed server side.
type CreateInvoiceItemRequest struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// InvoiceResponse is the invoice as returned by the API.
type InvoiceResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CustomerID  string          `json:"customer_id"`
	Date        string          `json:"date"`
	DueDate     string          `json:"due_date"`
	Currency    string          `json:"currency"`
	NetTotal    decimal.Decimal `json:"net_total"`
	TaxTotal    decimal.Decimal `json:"tax_total"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	Status      string          `json:"status"`
	ATStatus    string          `json:"at_status"`
	ATReference string          `json:"at_reference,omitempty"`
	ATErrors    string          `json:"at_errors,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewInvoiceResponse maps the entity to its API shape.
func NewInvoiceResponse(inv *entity.SalesInvoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          inv.ID,
		Name:        inv.Name(),
		CustomerID:  inv.CustomerID,
		Date:        inv.Date.Format("2006-01-02"),
		DueDate:     inv.DueDate.Format("2006-01-02"),
		Currency:    inv.Currency,
		NetTotal:    inv.NetTotal,
		TaxTotal:    inv.TaxTotal,
		GrandTotal:  inv.GrandTotal,
		Status:      inv.Status,
		ATStatus:    inv.ATStatus,
		ATReference: inv.ATReference,
		ATErrors:    inv.ATErrors,
		CreatedAt:   inv.CreatedAt,
	}
}
