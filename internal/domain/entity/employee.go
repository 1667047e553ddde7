package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee represents a payroll employee.
type Employee struct {
	ID         string
	CompanyID  string
	Name       string
	NUIT       string
	INSSNumber string
	Position   string
	BaseSalary decimal.Decimal
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
