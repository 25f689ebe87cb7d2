package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iho/ourllet/internal/domain"
)

// FixedEntryUseCase handles recurring monthly entries.
type FixedEntryUseCase struct {
	fixedRepo FixedEntryRepository
	members   MembershipChecker
	idGen     IDGenerator
}

// NewFixedEntryUseCase creates a new FixedEntryUseCase.
func NewFixedEntryUseCase(fixedRepo FixedEntryRepository, members MembershipChecker, idGen IDGenerator) *FixedEntryUseCase {
	return &FixedEntryUseCase{
		fixedRepo: fixedRepo,
		members:   members,
		idGen:     idGen,
	}
}

// ListFixedEntries lists a ledger's fixed entries ordered by type, day of month
// and creation time. Callers gate membership.
func (uc *FixedEntryUseCase) ListFixedEntries(ctx context.Context, ledgerID string) ([]*domain.FixedEntry, error) {
	if err := domain.ValidateLedgerID(ledgerID); err != nil {
		return nil, err
	}

	return uc.fixedRepo.ListByLedger(ctx, ledgerID)
}

// CreateFixedEntry stores a new fixed entry in a ledger userID belongs to.
func (uc *FixedEntryUseCase) CreateFixedEntry(ctx context.Context, userID string, fields domain.FixedEntryFields) (*domain.FixedEntry, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	if err := uc.members.EnsureMember(ctx, userID, fields.LedgerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fixed := &domain.FixedEntry{
		ID:            uc.idGen.Generate(),
		LedgerID:      fields.LedgerID,
		UserID:        userID,
		Type:          fields.Type,
		Title:         strings.TrimSpace(fields.Title),
		Category:      strings.TrimSpace(fields.Category),
		Amount:        fields.Amount,
		DayOfMonth:    fields.DayOfMonth,
		ExcludedDates: []time.Time{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if fields.Memo != nil {
		domain.FixedEntryPatch{Memo: fields.Memo}.Apply(fixed)
	}

	if err := uc.fixedRepo.Create(ctx, fixed); err != nil {
		return nil, fmt.Errorf("create fixed entry: %w", err)
	}

	return fixed, nil
}

// UpdateFixedEntry applies a partial update.
func (uc *FixedEntryUseCase) UpdateFixedEntry(ctx context.Context, userID, id string, patch domain.FixedEntryPatch) (*domain.FixedEntry, error) {
	fixed, err := uc.authorizedFixedEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	patch.Apply(fixed)
	if fixed.Label() == "" {
		return nil, domain.NewValidationError("title or category is required")
	}
	fixed.UpdatedAt = time.Now().UTC()

	if err := uc.fixedRepo.Update(ctx, fixed); err != nil {
		return nil, fmt.Errorf("update fixed entry: %w", err)
	}

	return fixed, nil
}

// DeleteFixedEntry removes a fixed entry.
func (uc *FixedEntryUseCase) DeleteFixedEntry(ctx context.Context, userID, id string) error {
	if _, err := uc.authorizedFixedEntry(ctx, userID, id); err != nil {
		return err
	}

	return uc.fixedRepo.Delete(ctx, id)
}

func (uc *FixedEntryUseCase) authorizedFixedEntry(ctx context.Context, userID, id string) (*domain.FixedEntry, error) {
	fixed, err := uc.fixedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.members.EnsureMember(ctx, userID, fixed.LedgerID); err != nil {
		return nil, err
	}

	return fixed, nil
}
