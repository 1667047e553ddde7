package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item or service.
type Product struct {
	ID          string
	CompanyID   string
	Code        string
	Description string
	UnitOfMeasure string
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal // percentage, e.g. 16 for standard IVA
	IsService   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
