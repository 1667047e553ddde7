package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ─────────────────────────────────────────────
// Progressive tax bracket tables
// ─────────────────────────────────────────────

// Bracket is one slice of a progressive table. Max is ignored when Open
// is true, which marks the final unbounded bracket.
type Bracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Open bool
	Rate decimal.Decimal // percentage, e.g. 10 means 10%
}

// Width returns the taxable span of the bracket. Panics if called on an
// open bracket; callers must check Open first.
func (b Bracket) Width() decimal.Decimal {
	if b.Open {
		panic("tax: Width called on open bracket")
	}
	return b.Max.Sub(b.Min)
}

// Table is an ordered list of brackets covering income from zero upwards.
type Table []Bracket

// Validate checks that the table is contiguous, starts at zero and ends
// with exactly one open bracket.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tax: empty bracket table")
	}
	if !t[0].Min.IsZero() {
		return fmt.Errorf("tax: first bracket must start at 0, got %s", t[0].Min)
	}
	for i, b := range t {
		last := i == len(t)-1
		if b.Open != last {
			return fmt.Errorf("tax: bracket %d: only the last bracket may be open", i)
		}
		if !last {
			if b.Max.LessThanOrEqual(b.Min) {
				return fmt.Errorf("tax: bracket %d: max %s not above min %s", i, b.Max, b.Min)
			}
			if !t[i+1].Min.Equal(b.Max) {
				return fmt.Errorf("tax: gap between bracket %d (max %s) and %d (min %s)",
					i, b.Max, i+1, t[i+1].Min)
			}
		}
		if b.Rate.IsNegative() {
			return fmt.Errorf("tax: bracket %d: negative rate %s", i, b.Rate)
		}
	}
	return nil
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// DefaultIRPSTable is the monthly IRPS withholding table for Mozambique.
func DefaultIRPSTable() Table {
	return Table{
		{Min: d(0), Max: d(50000), Rate: d(10)},
		{Min: d(50000), Max: d(100000), Rate: d(15)},
		{Min: d(100000), Max: d(200000), Rate: d(20)},
		{Min: d(200000), Max: d(500000), Rate: d(25)},
		{Min: d(500000), Open: true, Rate: d(32)},
	}
}
