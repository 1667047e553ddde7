// Package period models the fiscal month: a half-open calendar range used to
// scope audit files and payroll runs. Every period is normalized to calendar
// month boundaries regardless of how it was requested.
package period

import (
	"fmt"
	"time"

	"github.com/moztech/fiscal-mz/internal/domain"
)

// Period is an inclusive date range [Start, End] covering exactly one
// calendar month. Construct via FromYearMonth or Parse.
type Period struct {
	Start time.Time
	End   time.Time
}

// FromYearMonth builds the period for (year, month), normalized to the first
// and last day of that month. Month 12 rolls the end into the same year's
// December 31st, not the next year.
func FromYearMonth(year, month int) (Period, error) {
	if year < 1900 || year > 9999 || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: invalid period %d-%d", domain.ErrInvalidInput, year, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// first day of next month, minus one day
	end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return Period{Start: start, End: end}, nil
}

// Parse accepts the wire format "YYYY-MM".
func Parse(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: period %q (want YYYY-MM)", domain.ErrInvalidInput, s)
	}
	return FromYearMonth(t.Year(), int(t.Month()))
}

// String returns the period identifier "YYYY-MM".
func (p Period) String() string {
	return p.Start.Format("2006-01")
}

// Contains reports whether date falls inside the period, inclusive on both
// ends. The calendar day is taken in the date's own location.
func (p Period) Contains(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(p.Start) && !d.After(p.End)
}

// StartISO and EndISO return the ISO-8601 boundary dates used in the SAF-T header.
func (p Period) StartISO() string { return p.Start.Format("2006-01-02") }
func (p Period) EndISO() string   { return p.End.Format("2006-01-02") }
