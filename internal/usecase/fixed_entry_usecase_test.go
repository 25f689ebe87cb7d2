package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
	"github.com/iho/ourllet/internal/usecase/mocks"
)

func TestFixedEntryUseCase_Create(t *testing.T) {
	ctrl := gomock.NewController(t)

	members := mocks.NewMockMembershipChecker(ctrl)
	members.EXPECT().EnsureMember(gomock.Any(), "user-1", "123456").Return(nil)

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("fixed-1")

	repo := mocks.NewMockFixedEntryRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	uc := usecase.NewFixedEntryUseCase(repo, members, idGen)

	fixed, err := uc.CreateFixedEntry(context.Background(), "user-1", domain.FixedEntryFields{
		LedgerID:   "123456",
		Type:       domain.FixedTypeExpense,
		Title:      " Rent ",
		Category:   "rent",
		Amount:     decimal.NewFromInt(500000),
		DayOfMonth: 31,
		Memo:       strPtr("  "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed.ID != "fixed-1" {
		t.Fatalf("expected %q, got %q", "fixed-1", fixed.ID)
	}
	if fixed.Title != "Rent" {
		t.Fatalf("expected %q, got %q", "Rent", fixed.Title)
	}
	if fixed.Memo != nil {
		t.Fatalf("expected nil fixed.Memo, got %v", fixed.Memo)
	}
	if fixed.ExcludedDates == nil {
		t.Fatalf("expected fixed.ExcludedDates to be set")
	}
}

func TestFixedEntryUseCase_Create_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)

	uc := usecase.NewFixedEntryUseCase(
		mocks.NewMockFixedEntryRepository(ctrl),
		mocks.NewMockMembershipChecker(ctrl),
		mocks.NewMockIDGenerator(ctrl),
	)

	_, err := uc.CreateFixedEntry(context.Background(), "user-1", domain.FixedEntryFields{
		LedgerID:   "123456",
		Type:       domain.FixedTypeIncome,
		Title:      "Salary",
		Amount:     decimal.NewFromInt(1),
		DayOfMonth: 0,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected %v, got %v", domain.ErrInvalidInput, err)
	}
}

func TestFixedEntryUseCase_Update(t *testing.T) {
	ctrl := gomock.NewController(t)

	existing := &domain.FixedEntry{
		ID:         "fixed-1",
		LedgerID:   "123456",
		Type:       domain.FixedTypeExpense,
		Title:      "Gym",
		Amount:     decimal.NewFromInt(50),
		DayOfMonth: 5,
	}

	repo := mocks.NewMockFixedEntryRepository(ctrl)
	repo.EXPECT().GetByID(gomock.Any(), "fixed-1").Return(existing, nil)
	repo.EXPECT().Update(gomock.Any(), existing).Return(nil)

	members := mocks.NewMockMembershipChecker(ctrl)
	members.EXPECT().EnsureMember(gomock.Any(), "user-1", "123456").Return(nil)

	uc := usecase.NewFixedEntryUseCase(repo, members, mocks.NewMockIDGenerator(ctrl))

	amount := decimal.NewFromInt(60)
	updated, err := uc.UpdateFixedEntry(context.Background(), "user-1", "fixed-1", domain.FixedEntryPatch{
		Amount:        &amount,
		ExcludedDates: []string{"2024-07-05", "2024-07-05"},
		SetExcluded:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Amount.Equal(amount) {
		t.Fatalf("expected %s, got %s", amount, updated.Amount)
	}
	if updated.DayOfMonth != 5 {
		t.Fatalf("expected %v, got %v", 5, updated.DayOfMonth)
	}
	if len(updated.ExcludedDates) != 1 {
		t.Fatalf("expected %d items, got %d", 1, len(updated.ExcludedDates))
	}
	if updated.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be set")
	}
}

func TestFixedEntryUseCase_Update_BlankLabel(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockFixedEntryRepository(ctrl)
	repo.EXPECT().GetByID(gomock.Any(), "fixed-1").Return(&domain.FixedEntry{
		ID: "fixed-1", LedgerID: "123456", Title: "Gym",
	}, nil)

	members := mocks.NewMockMembershipChecker(ctrl)
	members.EXPECT().EnsureMember(gomock.Any(), "user-1", "123456").Return(nil)

	uc := usecase.NewFixedEntryUseCase(repo, members, mocks.NewMockIDGenerator(ctrl))

	_, err := uc.UpdateFixedEntry(context.Background(), "user-1", "fixed-1", domain.FixedEntryPatch{Title: strPtr(" ")})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected %v, got %v", domain.ErrInvalidInput, err)
	}
}

func TestFixedEntryUseCase_Delete_NotMember(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockFixedEntryRepository(ctrl)
	repo.EXPECT().GetByID(gomock.Any(), "fixed-1").Return(&domain.FixedEntry{ID: "fixed-1", LedgerID: "123456"}, nil)

	members := mocks.NewMockMembershipChecker(ctrl)
	members.EXPECT().EnsureMember(gomock.Any(), "stranger", "123456").Return(domain.ErrNotFound)

	uc := usecase.NewFixedEntryUseCase(repo, members, mocks.NewMockIDGenerator(ctrl))

	if err := uc.DeleteFixedEntry(context.Background(), "stranger", "fixed-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected %v, got %v", domain.ErrNotFound, err)
	}
}
