package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementItemType tags a settlement line.
type SettlementItemType string

const (
	SettlementItemFixed   SettlementItemType = "fixed"
	SettlementItemSavings SettlementItemType = "savings"
	SettlementItemExpense SettlementItemType = "expense"
)

// SettlementItem is one line of the monthly breakdown.
type SettlementItem struct {
	Label  string
	Amount decimal.Decimal
	Type   SettlementItemType
}

// SettlementDebug carries the intermediate values of a computation.
type SettlementDebug struct {
	Start             time.Time
	End               time.Time
	IncomeFromEntries decimal.Decimal
	FixedIncome       decimal.Decimal
	IncomeEntries     []Entry
}

// Settlement is the monthly settlement report of a ledger.
type Settlement struct {
	Period      Period
	TotalIncome decimal.Decimal
	Items       []SettlementItem
	Debug       *SettlementDebug
}

// SettlementInput holds the aggregates fetched for one ledger and month.
type SettlementInput struct {
	Period            Period
	IncomeFromEntries decimal.Decimal
	SavingsTotal      decimal.Decimal
	ExpenseByCategory []CategoryAmount
	FixedEntries      []FixedEntry

	// IncomeEntries is only set when debug output was requested.
	IncomeEntries []Entry
	Debug         bool
}

// BuildSettlement merges ad-hoc aggregates with the month's recurring
// occurrences and returns the line items sorted by amount, largest first.
func BuildSettlement(in SettlementInput) Settlement {
	fixedIncome := decimal.Zero
	items := make([]SettlementItem, 0, len(in.FixedEntries)+len(ExpenseCategories)+2)

	for i := range in.FixedEntries {
		fe := &in.FixedEntries[i]
		if _, ok := fe.OccurrenceIn(in.Period); !ok {
			continue
		}
		switch fe.Type {
		case FixedTypeIncome:
			fixedIncome = fixedIncome.Add(fe.Amount)
		case FixedTypeExpense:
			items = append(items, SettlementItem{
				Label:  fe.Label(),
				Amount: fe.Amount,
				Type:   SettlementItemFixed,
			})
		}
	}

	if in.SavingsTotal.IsPositive() {
		items = append(items, SettlementItem{
			Label:  SavingsLabel,
			Amount: in.SavingsTotal,
			Type:   SettlementItemSavings,
		})
	}

	known := make(map[string]decimal.Decimal, len(ExpenseCategories))
	other := decimal.Zero
	for _, ca := range in.ExpenseByCategory {
		category := strings.TrimSpace(ca.Category)
		if IsKnownExpenseCategory(category) {
			known[category] = known[category].Add(ca.Amount)
			continue
		}
		other = other.Add(ca.Amount)
	}
	for _, category := range ExpenseCategories {
		if amount, ok := known[category]; ok && amount.IsPositive() {
			items = append(items, SettlementItem{
				Label:  category,
				Amount: amount,
				Type:   SettlementItemExpense,
			})
		}
	}
	if other.IsPositive() {
		items = append(items, SettlementItem{
			Label:  OtherLabel,
			Amount: other,
			Type:   SettlementItemExpense,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Amount.GreaterThan(items[j].Amount)
	})

	s := Settlement{
		Period:      in.Period,
		TotalIncome: in.IncomeFromEntries.Add(fixedIncome),
		Items:       items,
	}

	if in.Debug {
		s.Debug = &SettlementDebug{
			Start:             in.Period.Start(),
			End:               in.Period.End(),
			IncomeFromEntries: in.IncomeFromEntries,
			FixedIncome:       fixedIncome,
			IncomeEntries:     in.IncomeEntries,
		}
	}

	return s
}
