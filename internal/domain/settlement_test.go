package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildSettlement_TotalIncomeIncludesRecurring(t *testing.T) {
	t.Parallel()

	s := BuildSettlement(SettlementInput{
		Period:            Period{Year: 2024, Month: time.March},
		IncomeFromEntries: dec("3000"),
		FixedEntries: []FixedEntry{
			{Type: FixedTypeIncome, Title: "Salary", Amount: dec("1000"), DayOfMonth: 25},
		},
	})

	if !s.TotalIncome.Equal(dec("4000")) {
		t.Fatalf("expected %s, got %s", dec("4000"), s.TotalIncome)
	}
	if len(s.Items) != 0 {
		t.Fatalf("expected empty s.Items, got %v", s.Items)
	}
	if s.Debug != nil {
		t.Fatalf("expected nil s.Debug, got %v", s.Debug)
	}
}

func TestBuildSettlement_ExcludedIncomeIsSkipped(t *testing.T) {
	t.Parallel()

	excluded, err := ParseDate("2024-03-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := BuildSettlement(SettlementInput{
		Period:            Period{Year: 2024, Month: time.March},
		IncomeFromEntries: dec("3000"),
		FixedEntries: []FixedEntry{
			{Type: FixedTypeIncome, Amount: dec("1000"), DayOfMonth: 25, ExcludedDates: []time.Time{excluded}},
		},
	})

	if !s.TotalIncome.Equal(dec("3000")) {
		t.Fatalf("expected %s, got %s", dec("3000"), s.TotalIncome)
	}
}

func TestBuildSettlement_Items(t *testing.T) {
	t.Parallel()

	s := BuildSettlement(SettlementInput{
		Period:       Period{Year: 2024, Month: time.February},
		SavingsTotal: dec("300"),
		ExpenseByCategory: []CategoryAmount{
			{Category: "food", Amount: dec("200")},
			{Category: "cafe", Amount: dec("0")},
			{Category: "pets", Amount: dec("40")},
			{Category: "", Amount: dec("60")},
			{Category: "transport", Amount: dec("500")},
		},
		FixedEntries: []FixedEntry{
			{Type: FixedTypeExpense, Title: "Rent", Category: "rent", Amount: dec("500"), DayOfMonth: 31},
			{Type: FixedTypeExpense, Category: "ott", Amount: dec("15"), DayOfMonth: 3},
		},
	})

	want := []SettlementItem{
		{Label: "Rent", Amount: dec("500"), Type: SettlementItemFixed},
		{Label: "transport", Amount: dec("500"), Type: SettlementItemExpense},
		{Label: SavingsLabel, Amount: dec("300"), Type: SettlementItemSavings},
		{Label: "food", Amount: dec("200"), Type: SettlementItemExpense},
		{Label: OtherLabel, Amount: dec("100"), Type: SettlementItemExpense},
		{Label: "ott", Amount: dec("15"), Type: SettlementItemFixed},
	}

	if len(s.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(s.Items))
	}
	for i, w := range want {
		if s.Items[i].Label != w.Label {
			t.Fatalf("item %d: expected label %q, got %q", i, w.Label, s.Items[i].Label)
		}
		if s.Items[i].Type != w.Type {
			t.Fatalf("item %d: expected type %s, got %s", i, w.Type, s.Items[i].Type)
		}
		if !w.Amount.Equal(s.Items[i].Amount) {
			t.Fatalf("item %d: expected amount %s, got %s", i, w.Amount, s.Items[i].Amount)
		}
	}
	if !s.TotalIncome.IsZero() {
		t.Fatalf("expected zero total income, got %s", s.TotalIncome)
	}
}

func TestBuildSettlement_ZeroSavingsAndOtherOmitted(t *testing.T) {
	t.Parallel()

	s := BuildSettlement(SettlementInput{
		Period:       Period{Year: 2024, Month: time.January},
		SavingsTotal: decimal.Zero,
		ExpenseByCategory: []CategoryAmount{
			{Category: "food", Amount: dec("10")},
		},
	})

	if len(s.Items) != 1 {
		t.Fatalf("expected %d items, got %d", 1, len(s.Items))
	}
	if s.Items[0].Label != "food" {
		t.Fatalf("expected %q, got %q", "food", s.Items[0].Label)
	}
}

func TestBuildSettlement_Debug(t *testing.T) {
	t.Parallel()

	incomes := []Entry{{ID: "e1", Type: EntryTypeIncome, Amount: dec("3000")}}
	s := BuildSettlement(SettlementInput{
		Period:            Period{Year: 2024, Month: time.February},
		IncomeFromEntries: dec("3000"),
		IncomeEntries:     incomes,
		FixedEntries: []FixedEntry{
			{Type: FixedTypeIncome, Amount: dec("1000"), DayOfMonth: 1},
		},
		Debug: true,
	})

	if s.Debug == nil {
		t.Fatalf("expected s.Debug to be set")
	}
	if FormatDate(s.Debug.Start) != "2024-02-01" {
		t.Fatalf("expected %q, got %q", "2024-02-01", FormatDate(s.Debug.Start))
	}
	if FormatDate(s.Debug.End) != "2024-02-29" {
		t.Fatalf("expected %q, got %q", "2024-02-29", FormatDate(s.Debug.End))
	}
	if !s.Debug.IncomeFromEntries.Equal(dec("3000")) {
		t.Fatalf("expected %s, got %s", dec("3000"), s.Debug.IncomeFromEntries)
	}
	if !s.Debug.FixedIncome.Equal(dec("1000")) {
		t.Fatalf("expected %s, got %s", dec("1000"), s.Debug.FixedIncome)
	}
	if len(s.Debug.IncomeEntries) != 1 || s.Debug.IncomeEntries[0].ID != "e1" {
		t.Fatalf("expected the income entries to be echoed, got %v", s.Debug.IncomeEntries)
	}
}

func TestSummary_Balance(t *testing.T) {
	t.Parallel()

	s := NewSummary(Period{Year: 2024, Month: time.May}, map[EntryType]decimal.Decimal{
		EntryTypeIncome:  dec("5000"),
		EntryTypeExpense: dec("1200.50"),
		EntryTypeSavings: dec("700"),
	})

	if !s.TotalSavings.Equal(dec("700")) {
		t.Fatalf("expected %s, got %s", dec("700"), s.TotalSavings)
	}
	if !s.Balance().Equal(dec("3799.50")) {
		t.Fatalf("expected %s, got %s", dec("3799.50"), s.Balance())
	}
}
