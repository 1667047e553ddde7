package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice document statuses.
const (
	InvoiceStatusDraft     = "Draft"
	InvoiceStatusSubmitted = "Submitted" // posted, eligible for transmission
	InvoiceStatusCancelled = "Cancelled"
)

// AT transmission statuses carried on the invoice itself.
const (
	ATStatusNotSent   = "NotSent"
	ATStatusPending   = "Pending"
	ATStatusCompleted = "Completed"
	ATStatusFailed    = "Failed"
)

// SalesInvoice represents the header of a sales invoice.
type SalesInvoice struct {
	ID          string
	CompanyID   string
	CustomerID  string
	Series      string // fiscal series prefix, e.g. FT2025
	Number      string
	Date        time.Time
	DueDate     time.Time
	Currency    string
	NetTotal    decimal.Decimal
	TaxTotal    decimal.Decimal
	GrandTotal  decimal.Decimal
	Status      string // see InvoiceStatus* constants
	ATStatus    string // see ATStatus* constants
	ATReference string // receipt reference returned by the AT on success
	ATErrors    string // rejection or error detail from the last attempt
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []InvoiceItem
}

// Name returns the document name used as the transmission request id,
// e.g. "FT2025-00042".
func (i SalesInvoice) Name() string {
	if i.Series == "" {
		return i.Number
	}
	return i.Series + "-" + i.Number
}

// InvoiceItem is one line of a sales invoice.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	ProductID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	NetAmount   decimal.Decimal
	TaxAmount   decimal.Decimal
	LineTotal   decimal.Decimal
}
