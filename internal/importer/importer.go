// Package importer turns user-supplied meal plans into domain meals.
//
// Two sources are supported: a CSV sheet with one ingredient per row, and
// the free-text reply of a chat assistant carrying a fenced JSON block.
// Both report problems row by row instead of failing the whole input, so a
// caller can show what was skipped and still import the rest.
package importer

import (
	"fmt"
	"time"

	"mealplan/internal/core"
)

// ValidationError describes one rejected row or field. Row is 1-based and
// counts the header; 0 refers to the input as a whole.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
}

// ImportResult is the outcome of ParseCSV. Meals holds everything that
// parsed even when Errors is non-empty.
type ImportResult struct {
	Success  bool              `json:"success"`
	Meals    []core.Meal       `json:"meals"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

// Options places imported days on the calendar.
type Options struct {
	WeekStartsOn  core.WeekStart
	ReferenceDate time.Time
}

func (o Options) weekStart() core.WeekStart {
	if o.WeekStartsOn == "" {
		return core.WeekStartsSunday
	}
	return o.WeekStartsOn
}

func (o Options) reference() time.Time {
	if o.ReferenceDate.IsZero() {
		return time.Now()
	}
	return o.ReferenceDate
}

// dateFor returns the ISO date of day within the reference week.
func (o Options) dateFor(day core.DayOfWeek) string {
	return core.FormatISODate(core.DateForDay(day, o.weekStart(), o.reference()))
}
