package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies an ad-hoc ledger entry.
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
	EntryTypeSavings EntryType = "savings"
)

// IsValid reports whether t is a known entry type.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeIncome, EntryTypeExpense, EntryTypeSavings:
		return true
	}
	return false
}

// Entry is a single income, expense or savings record in a ledger.
type Entry struct {
	ID        string
	LedgerID  string
	UserID    string
	Type      EntryType
	Amount    decimal.Decimal
	Title     string
	Category  *string
	Memo      *string
	Date      time.Time
	CreatedAt time.Time
}

// EntryFields are the user-supplied fields of an entry, used for create and update.
type EntryFields struct {
	LedgerID string
	Type     EntryType
	Amount   decimal.Decimal
	Title    string
	Category *string
	Memo     *string
	Date     string
}

// Validate checks the fields and returns a ValidationError listing every problem.
func (f EntryFields) Validate() error {
	var errs validationErrors

	if err := ValidateLedgerID(f.LedgerID); err != nil {
		errs.add(err.Error())
	}

	if !f.Type.IsValid() {
		errs.add("type must be one of income, expense, savings")
	}

	if err := ValidateAmount(f.Amount); err != nil {
		errs.add(err.Error())
	}

	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		errs.add("title is required")
	case tooLong(title, MaxEntryTitleLength):
		errs.add(fmt.Sprintf("title must be at most %d characters", MaxEntryTitleLength))
	}

	if f.Category != nil && tooLong(strings.TrimSpace(*f.Category), MaxCategoryLength) {
		errs.add(fmt.Sprintf("category must be at most %d characters", MaxCategoryLength))
	}
	if f.Type == EntryTypeSavings && (f.Category == nil || strings.TrimSpace(*f.Category) == "") {
		errs.add("category is required for savings")
	}

	if err := ValidateDateString(f.Date); err != nil {
		errs.add(err.Error())
	}

	return errs.err()
}

// Apply copies validated fields onto e.
func (f EntryFields) Apply(e *Entry) {
	date, _ := ParseDate(f.Date)

	e.LedgerID = f.LedgerID
	e.Type = f.Type
	e.Amount = f.Amount
	e.Title = strings.TrimSpace(f.Title)
	e.Category = trimmedOrNil(f.Category)
	e.Memo = trimmedOrNil(f.Memo)
	e.Date = date
}

// CategoryAmount is a summed amount for one category.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	LedgerID string
	Period   *Period
	Limit    int
	Offset   int
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
