package compliance

import "github.com/shopspring/decimal"

// parseAmount parses a decimal amount from its string form.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
