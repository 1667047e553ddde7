package tax

import (
	"github.com/shopspring/decimal"

	"github.com/moztech/fiscal-mz/internal/domain"
)

// BracketTax is the portion of the assessment attributable to one bracket.
type BracketTax struct {
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Open    bool            `json:"open"`
	Rate    decimal.Decimal `json:"rate"`
	Taxable decimal.Decimal `json:"taxable"`
	Tax     decimal.Decimal `json:"tax"`
}

// Assessment is the result of a progressive tax computation.
type Assessment struct {
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	Breakdown     []BracketTax    `json:"breakdown"`
}

// ComputeProgressiveTax applies the table to the given taxable income.
// Each bracket taxes only the income falling inside it; the upper bound
// of a bracket belongs to the next one. Negative income is rejected.
func ComputeProgressiveTax(income decimal.Decimal, table Table) (Assessment, error) {
	if income.IsNegative() {
		return Assessment{}, domain.ErrInvalidInput
	}
	if err := table.Validate(); err != nil {
		return Assessment{}, err
	}

	a := Assessment{TaxableIncome: income, TotalTax: decimal.Zero}
	hundred := decimal.NewFromInt(100)

	for _, b := range table {
		if income.LessThanOrEqual(b.Min) {
			break
		}
		slice := income.Sub(b.Min)
		if !b.Open && slice.GreaterThan(b.Width()) {
			slice = b.Width()
		}
		tax := slice.Mul(b.Rate).Div(hundred)
		a.TotalTax = a.TotalTax.Add(tax)
		a.Breakdown = append(a.Breakdown, BracketTax{
			Min:     b.Min,
			Max:     b.Max,
			Open:    b.Open,
			Rate:    b.Rate,
			Taxable: slice,
			Tax:     tax,
		})
	}

	a.TotalTax = a.TotalTax.Round(2)
	if income.IsPositive() {
		a.EffectiveRate = a.TotalTax.Div(income).Mul(hundred).Round(2)
	} else {
		a.EffectiveRate = decimal.Zero
	}
	return a, nil
}
