package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/ourllet/internal/domain"
)

var entryRowColumns = []string{"id", "ledger_id", "user_id", "type", "amount", "title", "category", "memo", "date", "created_at"}

func TestEntryRepositoryCreate(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	category := "food"
	entry := &domain.Entry{
		ID:        "e1",
		LedgerID:  "123456",
		UserID:    "u1",
		Type:      domain.EntryTypeExpense,
		Amount:    decimal.NewFromInt(12000),
		Title:     "lunch",
		Category:  &category,
		Date:      date,
		CreatedAt: date,
	}

	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_entries")).
		WithArgs("e1", "123456", "u1", "expense", pgxmock.AnyArg(), "lunch", &category, entry.Memo, date, date).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	category := "food"
	rows := pgxmock.NewRows(entryRowColumns).
		AddRow("e1", "123456", "u1", "expense", "12000", "lunch", &category, (*string)(nil), date, date)

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM ledger_entries WHERE id = $1")).
		WithArgs("e1").
		WillReturnRows(rows)

	entry, err := repo.GetByID(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Type != domain.EntryTypeExpense {
		t.Fatalf("expected %v, got %v", domain.EntryTypeExpense, entry.Type)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected %s, got %s", decimal.NewFromInt(12000), entry.Amount)
	}
	if *entry.Category != "food" {
		t.Fatalf("expected %q, got %q", "food", *entry.Category)
	}
	if entry.Memo != nil {
		t.Fatalf("expected nil entry.Memo, got %v", entry.Memo)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM ledger_entries WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected %v, got %v", domain.ErrNotFound, err)
	}
}

func TestEntryRepositoryListWithPeriod(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	period := domain.Period{Year: 2024, Month: time.May}
	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE ledger_id = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC, created_at DESC LIMIT 20 OFFSET 40")).
		WithArgs("123456", period.Start(), period.End()).
		WillReturnRows(pgxmock.NewRows(entryRowColumns).
			AddRow("e2", "123456", "u1", "income", "3000000", "salary", (*string)(nil), (*string)(nil), date, date).
			AddRow("e1", "123456", "u2", "expense", "12000", "lunch", (*string)(nil), (*string)(nil), date, date))

	entries, err := repo.List(context.Background(), domain.EntryFilter{
		LedgerID: "123456",
		Period:   &period,
		Limit:    20,
		Offset:   40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected %d items, got %d", 2, len(entries))
	}
	if entries[0].ID != "e2" {
		t.Fatalf("expected %q, got %q", "e2", entries[0].ID)
	}
	if entries[0].Type != domain.EntryTypeIncome {
		t.Fatalf("expected %v, got %v", domain.EntryTypeIncome, entries[0].Type)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositoryListWithoutPeriod(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE ledger_id = $1 ORDER BY date DESC, created_at DESC LIMIT 50 OFFSET 0")).
		WithArgs("123456").
		WillReturnRows(pgxmock.NewRows(entryRowColumns))

	entries, err := repo.List(context.Background(), domain.EntryFilter{LedgerID: "123456", Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty entries, got %v", entries)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositoryUpdateMissing(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	mockPool.ExpectExec(regexp.QuoteMeta("UPDATE ledger_entries")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Entry{ID: "missing", Type: domain.EntryTypeIncome})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected %v, got %v", domain.ErrNotFound, err)
	}
}

func TestEntryRepositoryDelete(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM ledger_entries WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), "e1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositorySumByType(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	period := domain.Period{Year: 2024, Month: time.February}
	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0)")).
		WithArgs("123456", "savings", period.Start(), period.End()).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow("150000"))

	sum, err := repo.SumByType(context.Background(), "123456", domain.EntryTypeSavings, period.Start(), period.End())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("expected %s, got %s", decimal.NewFromInt(150000), sum)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositorySumsByType(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	period := domain.Period{Year: 2024, Month: time.May}
	mockPool.ExpectQuery(regexp.QuoteMeta("GROUP BY type")).
		WithArgs("123456", period.Start(), period.End()).
		WillReturnRows(pgxmock.NewRows([]string{"type", "sum"}).
			AddRow("income", "3000000").
			AddRow("expense", "420000.5"))

	sums, err := repo.SumsByType(context.Background(), "123456", period.Start(), period.End())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sums[domain.EntryTypeIncome].Equal(decimal.NewFromInt(3000000)) {
		t.Fatalf("expected %s, got %s", decimal.NewFromInt(3000000), sums[domain.EntryTypeIncome])
	}
	if !sums[domain.EntryTypeExpense].Equal(decimal.RequireFromString("420000.5")) {
		t.Fatalf("expected %s, got %s", decimal.RequireFromString("420000.5"), sums[domain.EntryTypeExpense])
	}
	if _, ok := sums[domain.EntryTypeSavings]; ok {
		t.Fatalf("expected no savings sum without savings rows")
	}
}

func TestEntryRepositorySumExpensesByCategory(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	period := domain.Period{Year: 2024, Month: time.May}
	mockPool.ExpectQuery(regexp.QuoteMeta("type = 'expense'")).
		WithArgs("123456", period.Start(), period.End()).
		WillReturnRows(pgxmock.NewRows([]string{"category", "sum"}).
			AddRow("food", "50000").
			AddRow("", "7000"))

	result, err := repo.SumExpensesByCategory(context.Background(), "123456", period.Start(), period.End())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected %d items, got %d", 2, len(result))
	}
	if result[0].Category != "food" {
		t.Fatalf("expected %q, got %q", "food", result[0].Category)
	}
	if result[1].Category != "" {
		t.Fatalf("expected %q, got %q", "", result[1].Category)
	}
	if !result[1].Amount.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("expected %s, got %s", decimal.NewFromInt(7000), result[1].Amount)
	}
}

func TestEntryRepositoryListByType(t *testing.T) {
	mockPool := newMockPool(t)
	repo := newEntryRepository(mockPool)

	period := domain.Period{Year: 2024, Month: time.May}
	date := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE ledger_id = $1 AND type = $2 AND date BETWEEN $3 AND $4 ORDER BY date, created_at")).
		WithArgs("123456", "income", period.Start(), period.End()).
		WillReturnRows(pgxmock.NewRows(entryRowColumns).
			AddRow("e1", "123456", "u1", "income", "3000000", "salary", (*string)(nil), (*string)(nil), date, date))

	entries, err := repo.ListByType(context.Background(), "123456", domain.EntryTypeIncome, period.Start(), period.End())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected %d items, got %d", 1, len(entries))
	}
	if entries[0].Title != "salary" {
		t.Fatalf("expected %q, got %q", "salary", entries[0].Title)
	}
}
