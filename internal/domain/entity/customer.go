package entity

import "time"

// Customer represents a billing customer of the company.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	NUIT      string // customer NUIT; empty for final consumers
	TaxID     string
	Address   string
	City      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FiscalNumber returns the NUIT, falling back to the legacy tax id.
func (c Customer) FiscalNumber() string {
	if c.NUIT != "" {
		return c.NUIT
	}
	return c.TaxID
}
