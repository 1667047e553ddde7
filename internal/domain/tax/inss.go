package tax

import (
	"github.com/shopspring/decimal"

	"github.com/moztech/fiscal-mz/internal/domain"
)

// ─────────────────────────────────────────────
// INSS social security contributions
// ─────────────────────────────────────────────

// Rates holds the contribution percentages applied to gross salary.
type Rates struct {
	Employer decimal.Decimal
	Employee decimal.Decimal
}

// DefaultINSSRates are the statutory rates: 4% employer, 3% employee.
func DefaultINSSRates() Rates {
	return Rates{Employer: d(4), Employee: d(3)}
}

// Contributions is the INSS amounts due for one salary.
type Contributions struct {
	GrossSalary decimal.Decimal `json:"gross_salary"`
	Employer    decimal.Decimal `json:"employer"`
	Employee    decimal.Decimal `json:"employee"`
	Total       decimal.Decimal `json:"total"`
}

// ComputeContributions applies the rates to gross salary, rounding each
// side to 2 decimal places before totalling.
func ComputeContributions(gross decimal.Decimal, rates Rates) (Contributions, error) {
	if gross.IsNegative() {
		return Contributions{}, domain.ErrInvalidInput
	}
	if rates.Employer.IsNegative() || rates.Employee.IsNegative() {
		return Contributions{}, domain.ErrInvalidInput
	}

	hundred := decimal.NewFromInt(100)
	employer := gross.Mul(rates.Employer).Div(hundred).Round(2)
	employee := gross.Mul(rates.Employee).Div(hundred).Round(2)

	return Contributions{
		GrossSalary: gross,
		Employer:    employer,
		Employee:    employee,
		Total:       employer.Add(employee),
	}, nil
}

// NetSalary is the full monthly breakdown for one employee: gross pay
// less the employee INSS share and IRPS withholding. Benefits in kind
// raise the taxable base but are not paid out in cash.
type NetSalary struct {
	Gross        decimal.Decimal `json:"gross"`
	Benefits     decimal.Decimal `json:"benefits_in_kind"`
	INSSEmployee decimal.Decimal `json:"inss_employee"`
	INSSEmployer decimal.Decimal `json:"inss_employer"`
	IRPS         decimal.Decimal `json:"irps"`
	Net          decimal.Decimal `json:"net"`
	IRPSDetail   Assessment      `json:"irps_detail"`
}

// ComputeNetSalary runs the full payroll computation for a gross salary.
// IRPS is assessed on gross plus benefits in kind, less the employee
// INSS share; INSS itself applies to cash gross only.
func ComputeNetSalary(gross, benefits decimal.Decimal, rates Rates, table Table) (NetSalary, error) {
	if benefits.IsNegative() {
		return NetSalary{}, domain.ErrInvalidInput
	}
	contr, err := ComputeContributions(gross, rates)
	if err != nil {
		return NetSalary{}, err
	}
	taxable := gross.Add(benefits).Sub(contr.Employee)
	irps, err := ComputeProgressiveTax(taxable, table)
	if err != nil {
		return NetSalary{}, err
	}
	return NetSalary{
		Gross:        gross,
		Benefits:     benefits,
		INSSEmployee: contr.Employee,
		INSSEmployer: contr.Employer,
		IRPS:         irps.TotalTax,
		Net:          gross.Sub(contr.Employee).Sub(irps.TotalTax),
		IRPSDetail:   irps,
	}, nil
}
