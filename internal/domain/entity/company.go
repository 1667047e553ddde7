package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company represents an organization/tenant of the system (Mozambique).
type Company struct {
	ID       string
	Name     string
	NUIT     string // Mozambican tax number (Número Único de Identificação Tributária)
	TaxID    string // legacy tax id, used when NUIT is empty
	Address  string
	City     string
	Province string
	Phone    string
	Email    string
	Currency string // default MZN
	Status   string // active, suspended, inactive

	// INSS rate overrides. Nil means the statutory default applies.
	INSSEmployerRate *decimal.Decimal
	INSSEmployeeRate *decimal.Decimal

	// AT (Autoridade Tributária) transmission settings.
	ATEnabled     bool
	AutoSubmitSAF bool // submit the monthly SAF-T file automatically

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FiscalNumber returns the NUIT, falling back to the legacy tax id when
// the NUIT has not been registered yet.
func (c Company) FiscalNumber() string {
	if c.NUIT != "" {
		return c.NUIT
	}
	return c.TaxID
}
