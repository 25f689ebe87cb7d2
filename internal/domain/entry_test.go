package domain

import (
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestEntryFields_Validate(t *testing.T) {
	t.Parallel()

	base := EntryFields{
		LedgerID: "123456",
		Type:     EntryTypeExpense,
		Amount:   decimal.NewFromInt(12000),
		Title:    "Lunch",
		Category: strPtr("food"),
		Date:     "2024-03-14",
	}

	tests := []struct {
		name    string
		mutate  func(f *EntryFields)
		wantMsg string
	}{
		{name: "valid", mutate: func(*EntryFields) {}},
		{
			name:    "savings requires category",
			mutate:  func(f *EntryFields) { f.Type = EntryTypeSavings; f.Category = strPtr("  ") },
			wantMsg: "category is required for savings",
		},
		{
			name:    "blank title",
			mutate:  func(f *EntryFields) { f.Title = "   " },
			wantMsg: "title is required",
		},
		{
			name:    "bad type",
			mutate:  func(f *EntryFields) { f.Type = "transfer" },
			wantMsg: "type must be one of income, expense, savings",
		},
		{
			name:    "bad date",
			mutate:  func(f *EntryFields) { f.Date = "14/03/2024" },
			wantMsg: "date must be in YYYY-MM-DD format",
		},
		{
			name:    "bad ledger id",
			mutate:  func(f *EntryFields) { f.LedgerID = "12" },
			wantMsg: "ledgerId must be a 6-digit number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)

			err := f.Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if !slices.Contains(verr.Messages, tt.wantMsg) {
				t.Fatalf("expected %v to contain %q", verr.Messages, tt.wantMsg)
			}
		})
	}
}

func TestEntryFields_Apply(t *testing.T) {
	t.Parallel()

	f := EntryFields{
		LedgerID: "123456",
		Type:     EntryTypeIncome,
		Amount:   decimal.NewFromInt(3000),
		Title:    "  Salary ",
		Category: strPtr(" "),
		Memo:     strPtr(" March "),
		Date:     "2024-03-25",
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var e Entry
	f.Apply(&e)

	if e.Title != "Salary" {
		t.Fatalf("expected %q, got %q", "Salary", e.Title)
	}
	if e.Category != nil {
		t.Fatalf("expected nil e.Category, got %v", e.Category)
	}
	if e.Memo == nil {
		t.Fatalf("expected e.Memo to be set")
	}
	if *e.Memo != "March" {
		t.Fatalf("expected %q, got %q", "March", *e.Memo)
	}
	if FormatDate(e.Date) != "2024-03-25" {
		t.Fatalf("expected %q, got %q", "2024-03-25", FormatDate(e.Date))
	}
	if e.LedgerID != "123456" {
		t.Fatalf("expected %q, got %q", "123456", e.LedgerID)
	}
}
