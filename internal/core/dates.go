package core

import (
	"fmt"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

const (
	WeekStartsSunday WeekStart = "Sunday"
	WeekStartsMonday WeekStart = "Monday"
)

// WeekStart selects the first column of week and month views.
type WeekStart string

// ParseWeekStart accepts "sunday" or "monday" in any casing.
func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun":
		return WeekStartsSunday, nil
	case "monday", "mon":
		return WeekStartsMonday, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWeekStart, s)
	}
}

// OrderedDays returns the seven days starting at ws.
func OrderedDays(ws WeekStart) []DayOfWeek {
	if ws == WeekStartsSunday {
		return []DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
	}
	return Days()
}

// WeekStartDate returns midnight of the first day of the week containing ref.
func WeekStartDate(ws WeekStart, ref time.Time) time.Time {
	wd := int(ref.Weekday()) // 0 = Sunday
	back := wd
	if ws != WeekStartsSunday {
		back = (wd + 6) % 7
	}
	y, m, d := ref.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, ref.Location())
}

// WeekDates returns the seven dates of the week containing ref.
func WeekDates(ws WeekStart, ref time.Time) [7]time.Time {
	start := WeekStartDate(ws, ref)
	var out [7]time.Time
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// DateForDay returns the date of day within the week containing ref.
func DateForDay(day DayOfWeek, ws WeekStart, ref time.Time) time.Time {
	dates := WeekDates(ws, ref)
	for i, d := range OrderedDays(ws) {
		if d == day {
			return dates[i]
		}
	}
	return dates[0]
}

func DayOfWeekFromDate(t time.Time) DayOfWeek {
	if t.Weekday() == time.Sunday {
		return Sunday
	}
	return days[int(t.Weekday())-1]
}

func FormatISODate(t time.Time) string {
	return t.Format(isoLayout)
}

// ParseISODate parses YYYY-MM-DD as a local-calendar date in UTC.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func IsSameWeek(a, b time.Time, ws WeekStart) bool {
	sa := WeekStartDate(ws, a)
	sb := WeekStartDate(ws, inLocation(b, a.Location()))
	return sa.Equal(sb)
}

// IsDateInWeek reports whether the ISO date falls in the week containing ref.
// Unparseable dates are never in any week.
func IsDateInWeek(iso string, ws WeekStart, ref time.Time) bool {
	d, err := ParseISODate(iso)
	if err != nil {
		return false
	}
	y, m, day := ref.Date()
	return IsSameWeek(d, time.Date(y, m, day, 0, 0, 0, 0, time.UTC), ws)
}

// CalendarMonth returns a 6x7 grid covering the given month.
func CalendarMonth(year int, month time.Month, ws WeekStart) [6][7]time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := WeekStartDate(ws, first)
	var grid [6][7]time.Time
	for w := 0; w < 6; w++ {
		for d := 0; d < 7; d++ {
			grid[w][d] = start.AddDate(0, 0, w*7+d)
		}
	}
	return grid
}

// FormatWeekRange renders "Feb 3 - 9, 2026" or "Jan 27 - Feb 2, 2026".
func FormatWeekRange(ws WeekStart, ref time.Time) string {
	dates := WeekDates(ws, ref)
	start, end := dates[0], dates[6]
	if start.Month() == end.Month() {
		return fmt.Sprintf("%s %d - %d, %d", start.Format("Jan"), start.Day(), end.Day(), end.Year())
	}
	return fmt.Sprintf("%s %d - %s %d, %d", start.Format("Jan"), start.Day(), end.Format("Jan"), end.Day(), end.Year())
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
