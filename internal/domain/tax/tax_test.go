package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moztech/fiscal-mz/internal/domain/tax"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestComputeProgressiveTax_MiddleBracket(t *testing.T) {
	// 60,000: first 50,000 at 10% = 5,000; next 10,000 at 15% = 1,500.
	a, err := tax.ComputeProgressiveTax(dec("60000"), tax.DefaultIRPSTable())
	require.NoError(t, err)

	assert.True(t, a.TotalTax.Equal(dec("6500")), "expected 6500, got %s", a.TotalTax)
	require.Len(t, a.Breakdown, 2)
	assert.True(t, a.Breakdown[0].Tax.Equal(dec("5000")))
	assert.True(t, a.Breakdown[1].Tax.Equal(dec("1500")))
	assert.True(t, a.Breakdown[1].Taxable.Equal(dec("10000")))
}

func TestComputeProgressiveTax_BracketBoundary(t *testing.T) {
	// Exactly 50,000 stays entirely in the first bracket.
	a, err := tax.ComputeProgressiveTax(dec("50000"), tax.DefaultIRPSTable())
	require.NoError(t, err)
	assert.True(t, a.TotalTax.Equal(dec("5000")), "got %s", a.TotalTax)
	assert.Len(t, a.Breakdown, 1)

	// One metical above crosses into the second bracket.
	a, err = tax.ComputeProgressiveTax(dec("50001"), tax.DefaultIRPSTable())
	require.NoError(t, err)
	assert.Len(t, a.Breakdown, 2)
	assert.True(t, a.TotalTax.Equal(dec("5000.15")), "got %s", a.TotalTax)
}

func TestComputeProgressiveTax_TopBracketIsUnbounded(t *testing.T) {
	a, err := tax.ComputeProgressiveTax(dec("1000000"), tax.DefaultIRPSTable())
	require.NoError(t, err)

	// 5,000 + 7,500 + 20,000 + 75,000 + 500,000*32% = 267,500.
	assert.True(t, a.TotalTax.Equal(dec("267500")), "got %s", a.TotalTax)
	require.Len(t, a.Breakdown, 5)
	top := a.Breakdown[4]
	assert.True(t, top.Open)
	assert.True(t, top.Taxable.Equal(dec("500000")))
}

func TestComputeProgressiveTax_ZeroIncome(t *testing.T) {
	a, err := tax.ComputeProgressiveTax(decimal.Zero, tax.DefaultIRPSTable())
	require.NoError(t, err)
	assert.True(t, a.TotalTax.IsZero())
	assert.True(t, a.EffectiveRate.IsZero())
	assert.Empty(t, a.Breakdown)
}

func TestComputeProgressiveTax_RejectsNegative(t *testing.T) {
	_, err := tax.ComputeProgressiveTax(dec("-1"), tax.DefaultIRPSTable())
	assert.Error(t, err)
}

func TestTableValidate_RejectsGaps(t *testing.T) {
	broken := tax.Table{
		{Min: dec("0"), Max: dec("50000"), Rate: dec("10")},
		{Min: dec("60000"), Open: true, Rate: dec("15")},
	}
	assert.Error(t, broken.Validate())
}

func TestTableValidate_RequiresOpenLastBracket(t *testing.T) {
	closed := tax.Table{
		{Min: dec("0"), Max: dec("50000"), Rate: dec("10")},
	}
	assert.Error(t, closed.Validate())
	assert.NoError(t, tax.DefaultIRPSTable().Validate())
}

func TestComputeContributions_DefaultRates(t *testing.T) {
	// Gross 50,000 with employer 4% and employee 3%.
	c, err := tax.ComputeContributions(dec("50000"), tax.DefaultINSSRates())
	require.NoError(t, err)

	assert.True(t, c.Employer.Equal(dec("2000")), "employer got %s", c.Employer)
	assert.True(t, c.Employee.Equal(dec("1500")), "employee got %s", c.Employee)
	assert.True(t, c.Total.Equal(dec("3500")), "total got %s", c.Total)
}

func TestComputeContributions_CompanyOverrideRates(t *testing.T) {
	c, err := tax.ComputeContributions(dec("50000"), tax.Rates{
		Employer: dec("5"),
		Employee: dec("3.5"),
	})
	require.NoError(t, err)
	assert.True(t, c.Employer.Equal(dec("2500")))
	assert.True(t, c.Employee.Equal(dec("1750")))
}

func TestComputeNetSalary(t *testing.T) {
	n, err := tax.ComputeNetSalary(dec("50000"), dec("0"), tax.DefaultINSSRates(), tax.DefaultIRPSTable())
	require.NoError(t, err)

	// Taxable 48,500 stays in the 10% bracket: IRPS 4,850.
	assert.True(t, n.INSSEmployee.Equal(dec("1500")))
	assert.True(t, n.IRPS.Equal(dec("4850")), "irps got %s", n.IRPS)
	assert.True(t, n.Net.Equal(dec("43650")), "net got %s", n.Net)
}

func TestComputeNetSalary_BenefitsRaiseTaxableBaseOnly(t *testing.T) {
	// 5,000 in benefits: taxable 53,500 crosses into the 15% bracket,
	// IRPS 5,000 + 525 = 5,525; cash net drops only by the extra tax.
	n, err := tax.ComputeNetSalary(dec("50000"), dec("5000"), tax.DefaultINSSRates(), tax.DefaultIRPSTable())
	require.NoError(t, err)

	assert.True(t, n.INSSEmployee.Equal(dec("1500")), "INSS applies to cash gross only")
	assert.True(t, n.IRPS.Equal(dec("5525")), "irps got %s", n.IRPS)
	assert.True(t, n.Net.Equal(dec("42975")), "net got %s", n.Net)
}

func TestComputeNetSalary_NegativeBenefitsRejected(t *testing.T) {
	_, err := tax.ComputeNetSalary(dec("50000"), dec("-1"), tax.DefaultINSSRates(), tax.DefaultIRPSTable())
	assert.Error(t, err)
}
