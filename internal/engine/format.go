package engine

import (
	"fmt"
	"time"
)

// FormatDate renders a date as "Jan 2".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month().String()[:3], t.Day())
}

// FormatDateRange renders a delivery window. A collapsed window renders as a
// single date, a window within one month as "Jan 2-6", and a window spanning
// months as "Jan 30-Feb 3". Visual regression tests depend on these exact
// shapes.
func FormatDateRange(minDate, maxDate time.Time) string {
	if minDate.Year() == maxDate.Year() && minDate.YearDay() == maxDate.YearDay() {
		return FormatDate(minDate)
	}
	if minDate.Month() == maxDate.Month() && minDate.Year() == maxDate.Year() {
		return fmt.Sprintf("%s %d-%d", minDate.Month().String()[:3], minDate.Day(), maxDate.Day())
	}
	return fmt.Sprintf("%s-%s", FormatDate(minDate), FormatDate(maxDate))
}
