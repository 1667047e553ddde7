package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalarySlip is the monthly payroll result for one employee.
type SalarySlip struct {
	ID         string
	CompanyID  string
	EmployeeID string
	Period     string // YYYY-MM
	Gross      decimal.Decimal
	INSSEmployee decimal.Decimal
	INSSEmployer decimal.Decimal
	IRPS       decimal.Decimal
	Net        decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Benefits []BenefitInKind
}

// BenefitInKind is a non-cash benefit valued into the taxable base,
// e.g. company housing or a vehicle.
type BenefitInKind struct {
	ID           string
	SalarySlipID string
	Kind         string // housing, vehicle, other
	Description  string
	Valuation    decimal.Decimal
}

// TaxableBase returns gross pay plus all benefit valuations.
func (s SalarySlip) TaxableBase() decimal.Decimal {
	base := s.Gross
	for _, b := range s.Benefits {
		base = base.Add(b.Valuation)
	}
	return base
}
