package measure

import (
	"fmt"
	"time"

	"github.com/clinbench/goldtruth/internal/record"
)

// Period fixes "now" for an evaluation. For the instantiated measure the
// end date is December 31 of the measurement year, but it is always a
// parameter so boundary dates can be exercised directly.
type Period struct {
	End record.Date
}

// InvalidPeriodError indicates a missing or invalid measurement-period
// end date. Setup-time error; the pipeline never sees an invalid period.
type InvalidPeriodError struct {
	Message string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid measurement period: %s", e.Message)
}

// NewPeriod validates the end date and constructs a Period.
func NewPeriod(end record.Date) (Period, error) {
	if end.IsZero() {
		return Period{}, &InvalidPeriodError{Message: "end date missing"}
	}
	return Period{End: end}, nil
}

// ParsePeriodEnd parses a YYYY-MM-DD end date into a Period.
func ParsePeriodEnd(s string) (Period, error) {
	end, err := record.ParseDate(s)
	if err != nil {
		return Period{}, &InvalidPeriodError{Message: err.Error()}
	}
	return NewPeriod(end)
}

// Window is a calendar interval. Both boundaries are INCLUSIVE: an event
// dated exactly on Start or exactly on End is within the window.
type Window struct {
	Start record.Date
	End   record.Date
}

// Contains reports whether d falls within the window, boundaries included.
func (w Window) Contains(d record.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.ISO(), w.End.ISO())
}

// Lookback derives the rolling lookback window ending at end: the start
// is end minus months calendar months, landing on the same day-of-month
// when possible and clamped to the last valid day of the target month
// otherwise. 2025-12-31 minus 27 months targets 2023-09-31, which clamps
// to 2023-09-30. It never day-shifts into October the way naive
// time.AddDate normalization would.
func Lookback(end record.Date, months int) Window {
	total := end.Year*12 + int(end.Month) - 1 - months
	year := total / 12
	month := time.Month(total%12 + 1)

	day := end.Day
	if last := record.DaysIn(year, month); day > last {
		day = last
	}

	return Window{Start: record.NewDate(year, month, day), End: end}
}
