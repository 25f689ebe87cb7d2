package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FixedEntryType classifies a recurring entry.
type FixedEntryType string

const (
	FixedTypeExpense FixedEntryType = "expense"
	FixedTypeIncome  FixedEntryType = "income"
)

// IsValid reports whether t is a known fixed entry type.
func (t FixedEntryType) IsValid() bool {
	return t == FixedTypeExpense || t == FixedTypeIncome
}

// FixedEntry is a monthly recurring income or expense.
type FixedEntry struct {
	ID            string
	LedgerID      string
	UserID        string
	Type          FixedEntryType
	Title         string
	Category      string
	Amount        decimal.Decimal
	DayOfMonth    int
	Memo          *string
	ExcludedDates []time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OccurrenceIn returns the date the entry falls on in period p. DayOfMonth is
// clamped to the month's length. ok is false when that date is excluded.
func (f *FixedEntry) OccurrenceIn(p Period) (date time.Time, ok bool) {
	date = p.Day(f.DayOfMonth)
	return date, !f.IsExcluded(date)
}

// IsExcluded reports whether the recurrence is suppressed on day d.
func (f *FixedEntry) IsExcluded(d time.Time) bool {
	for _, ex := range f.ExcludedDates {
		if SameDay(ex, d) {
			return true
		}
	}
	return false
}

// Label is the settlement label: the title, or the category when the title is blank.
func (f *FixedEntry) Label() string {
	if t := strings.TrimSpace(f.Title); t != "" {
		return t
	}
	return strings.TrimSpace(f.Category)
}

// FixedEntryFields are the fields for creating a fixed entry.
type FixedEntryFields struct {
	LedgerID   string
	Type       FixedEntryType
	Title      string
	Category   string
	Amount     decimal.Decimal
	DayOfMonth int
	Memo       *string
}

// Validate checks the create fields.
func (f FixedEntryFields) Validate() error {
	var errs validationErrors

	if err := ValidateLedgerID(f.LedgerID); err != nil {
		errs.add(err.Error())
	}
	if !f.Type.IsValid() {
		errs.add("type must be expense or income")
	}
	if tooLong(strings.TrimSpace(f.Title), MaxFixedTitleLength) {
		errs.add(fmt.Sprintf("title must be at most %d characters", MaxFixedTitleLength))
	}
	if tooLong(strings.TrimSpace(f.Category), MaxCategoryLength) {
		errs.add(fmt.Sprintf("category must be at most %d characters", MaxCategoryLength))
	}
	if strings.TrimSpace(f.Title) == "" && strings.TrimSpace(f.Category) == "" {
		errs.add("title or category is required")
	}
	if err := ValidateAmount(f.Amount); err != nil {
		errs.add(err.Error())
	}
	if err := validateDayOfMonth(f.DayOfMonth); err != nil {
		errs.add(err.Error())
	}
	if f.Memo != nil && tooLong(strings.TrimSpace(*f.Memo), MaxFixedMemoLength) {
		errs.add(fmt.Sprintf("memo must be at most %d characters", MaxFixedMemoLength))
	}

	return errs.err()
}

// FixedEntryPatch is a partial update. Nil fields are left unchanged; a Memo
// pointing at an empty string clears the memo.
type FixedEntryPatch struct {
	Type          *FixedEntryType
	Title         *string
	Category      *string
	Amount        *decimal.Decimal
	DayOfMonth    *int
	Memo          *string
	ExcludedDates []string
	SetExcluded   bool
}

// Validate checks the patch fields that are present.
func (p FixedEntryPatch) Validate() error {
	var errs validationErrors

	if p.Type != nil && !p.Type.IsValid() {
		errs.add("type must be expense or income")
	}
	if p.Title != nil && tooLong(strings.TrimSpace(*p.Title), MaxFixedTitleLength) {
		errs.add(fmt.Sprintf("title must be at most %d characters", MaxFixedTitleLength))
	}
	if p.Category != nil && tooLong(strings.TrimSpace(*p.Category), MaxCategoryLength) {
		errs.add(fmt.Sprintf("category must be at most %d characters", MaxCategoryLength))
	}
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			errs.add(err.Error())
		}
	}
	if p.DayOfMonth != nil {
		if err := validateDayOfMonth(*p.DayOfMonth); err != nil {
			errs.add(err.Error())
		}
	}
	if p.Memo != nil && tooLong(strings.TrimSpace(*p.Memo), MaxFixedMemoLength) {
		errs.add(fmt.Sprintf("memo must be at most %d characters", MaxFixedMemoLength))
	}
	if p.SetExcluded {
		if len(p.ExcludedDates) > MaxExcludedDates {
			errs.add(fmt.Sprintf("excludedDates must have at most %d items", MaxExcludedDates))
		}
		for _, d := range p.ExcludedDates {
			if ValidateDateString(d) != nil {
				errs.add("excludedDates items must be in YYYY-MM-DD format")
				break
			}
		}
	}

	return errs.err()
}

// Apply copies the present fields onto f.
func (p FixedEntryPatch) Apply(f *FixedEntry) {
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Title != nil {
		f.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		f.Category = strings.TrimSpace(*p.Category)
	}
	if p.Amount != nil {
		f.Amount = *p.Amount
	}
	if p.DayOfMonth != nil {
		f.DayOfMonth = *p.DayOfMonth
	}
	if p.Memo != nil {
		f.Memo = trimmedOrNil(p.Memo)
	}
	if p.SetExcluded {
		f.ExcludedDates = normalizeDates(p.ExcludedDates)
	}
}

func validateDayOfMonth(day int) error {
	if day < 1 || day > 31 {
		return NewValidationError("dayOfMonth must be an integer between 1 and 31")
	}
	return nil
}

// normalizeDates parses, de-duplicates and sorts validated date strings.
func normalizeDates(values []string) []time.Time {
	seen := make(map[string]bool, len(values))
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		d, err := ParseDate(v)
		if err != nil {
			continue
		}
		seen[v] = true
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
