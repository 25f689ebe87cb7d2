package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the wire and storage format of calendar days.
const DateLayout = "2006-01-02"

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a YYYY-MM string.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return Period{}, NewValidationError("period must be in YYYY-MM format")
	}

	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, NewValidationError("period must be in YYYY-MM format")
	}

	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns the first day of the month at midnight UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last calendar day of the month at midnight UTC.
func (p Period) End() time.Time {
	last := now.With(p.Start()).EndOfMonth()
	return time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
}

// LastDay returns the number of days in the month.
func (p Period) LastDay() int {
	return p.End().Day()
}

// Day returns the given day of the month, clamped into [1, LastDay].
func (p Period) Day(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := p.LastDay(); day > last {
		day = last
	}
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidInput)
	}
	return t, nil
}

// FormatDate formats a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDay reports whether a and b are the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
