package domain

import "github.com/shopspring/decimal"

// Summary is the month's totals of ad-hoc entries.
type Summary struct {
	Period       Period
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	TotalSavings decimal.Decimal
}

// NewSummary builds a summary from per-type sums. Missing types count as zero.
func NewSummary(p Period, sums map[EntryType]decimal.Decimal) Summary {
	return Summary{
		Period:       p,
		TotalIncome:  sums[EntryTypeIncome],
		TotalExpense: sums[EntryTypeExpense],
		TotalSavings: sums[EntryTypeSavings],
	}
}

// Balance is income minus expenses. Savings stay on the household's side
// of the ledger and are reported separately.
func (s Summary) Balance() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpense)
}
