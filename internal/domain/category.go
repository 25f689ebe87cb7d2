package domain

import "strings"

// Settlement labels that are not categories.
const (
	SavingsLabel = "savings"
	OtherLabel   = "other"
)

// ExpenseCategories is the catalogue of expense categories that get their own
// settlement line. Anything else is reported under OtherLabel.
var ExpenseCategories = []string{
	"food",
	"cafe",
	"transport",
	"shopping",
	"housing",
	"utilities",
	"telecom",
	"medical",
	"culture",
	"education",
	"travel",
	"gift",
}

// SavingsCategories are the default savings categories offered to clients.
// Users may type their own.
var SavingsCategories = []string{"deposit", "installment_savings", "stocks", "bonds"}

// FixedExpenseCategories are the default categories for recurring expenses.
var FixedExpenseCategories = []string{"rent", "maintenance_fee", "telecom", "ott", "subscription", "loan"}

// FixedIncomeCategories are the default categories for recurring income.
var FixedIncomeCategories = []string{"salary", "side_job"}

var knownExpenseCategories = func() map[string]bool {
	m := make(map[string]bool, len(ExpenseCategories))
	for _, c := range ExpenseCategories {
		m[c] = true
	}
	return m
}()

// IsKnownExpenseCategory reports whether category has its own settlement line.
func IsKnownExpenseCategory(category string) bool {
	return knownExpenseCategories[strings.TrimSpace(category)]
}
