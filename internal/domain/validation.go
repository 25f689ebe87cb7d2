package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAmount             = "999999999999.99" // numeric(14,2)
	MinAmount             = "0.01"
	MaxEntryTitleLength   = 255
	MaxFixedTitleLength   = 100
	MaxCategoryLength     = 100
	MaxFixedMemoLength    = 500
	MaxLedgerNameLength   = 100
	MaxNicknameLength     = 50
	MaxExcludedDates      = 366
	VerificationCodeDigit = 6
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	sixDigits   = regexp.MustCompile(`^\d{6}$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidateAmount validates a money amount: positive, at most two decimal places,
// and within the storage range.
func ValidateAmount(amount decimal.Decimal) error {
	minAmount, _ := decimal.NewFromString(MinAmount)
	if amount.LessThan(minAmount) {
		return NewValidationError("amount must be positive")
	}

	if !amount.Equal(amount.Truncate(2)) {
		return NewValidationError("amount must have at most 2 decimal places")
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return NewValidationError(fmt.Sprintf("amount must not exceed %s", MaxAmount))
	}

	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(NormalizeEmail(email)) {
		return NewValidationError("a valid email address is required")
	}
	return nil
}

// ValidateLedgerID validates a 6-digit ledger id.
func ValidateLedgerID(id string) error {
	if !sixDigits.MatchString(id) {
		return NewValidationError("ledgerId must be a 6-digit number")
	}
	return nil
}

// NormalizeInviteCode strips whitespace from a user-typed invite code and
// validates the result.
func NormalizeInviteCode(code string) (string, error) {
	normalized := strings.Join(strings.Fields(code), "")
	if !sixDigits.MatchString(normalized) {
		return "", NewValidationError("invite code must be a 6-digit number")
	}
	return normalized, nil
}

// ValidateVerificationCode validates a 6-digit email verification code.
func ValidateVerificationCode(code string) error {
	if !sixDigits.MatchString(code) {
		return NewValidationError("verification code must be a 6-digit number")
	}
	return nil
}

// ValidateDateString validates a YYYY-MM-DD string that is also a real calendar day.
func ValidateDateString(s string) error {
	if !datePattern.MatchString(s) {
		return NewValidationError("date must be in YYYY-MM-DD format")
	}
	if _, err := ParseDate(s); err != nil {
		return NewValidationError("date must be in YYYY-MM-DD format")
	}
	return nil
}

// ValidateLedgerName validates an optional ledger display name.
func ValidateLedgerName(name string) error {
	if utf8.RuneCountInString(name) > MaxLedgerNameLength {
		return NewValidationError(fmt.Sprintf("ledger name must be at most %d characters", MaxLedgerNameLength))
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}
