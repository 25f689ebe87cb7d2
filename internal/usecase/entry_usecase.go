package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/ourllet/internal/domain"
)

// EntryUseCase handles ad-hoc ledger entries.
type EntryUseCase struct {
	entryRepo EntryRepository
	members   MembershipChecker
	idGen     IDGenerator
	metrics   MetricsRecorder
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository, members MembershipChecker, idGen IDGenerator) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
		members:   members,
		idGen:     idGen,
		metrics:   noopMetrics{},
	}
}

// WithMetrics sets the metrics recorder.
func (uc *EntryUseCase) WithMetrics(m MetricsRecorder) *EntryUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// CreateEntry validates fields and stores a new entry in a ledger userID belongs to.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, userID string, fields domain.EntryFields) (*domain.Entry, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	if err := uc.members.EnsureMember(ctx, userID, fields.LedgerID); err != nil {
		return nil, err
	}

	return uc.create(ctx, userID, fields)
}

func (uc *EntryUseCase) create(ctx context.Context, userID string, fields domain.EntryFields) (*domain.Entry, error) {
	entry := &domain.Entry{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	fields.Apply(entry)

	if err := uc.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	return entry, nil
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	LedgerID string
	Period   string
	Limit    int
	Offset   int
}

// ListEntries lists a ledger's entries, newest first. Callers gate membership.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	if err := domain.ValidateLedgerID(input.LedgerID); err != nil {
		return nil, err
	}

	filter := domain.EntryFilter{LedgerID: input.LedgerID}
	filter.Limit, filter.Offset = domain.ValidatePagination(input.Limit, input.Offset)

	if input.Period != "" {
		p, err := domain.ParsePeriod(input.Period)
		if err != nil {
			return nil, err
		}
		filter.Period = &p
	}

	return uc.entryRepo.List(ctx, filter)
}

// UpdateEntry replaces every field of an entry. Both the current and the target
// ledger must belong to userID.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, userID, id string, fields domain.EntryFields) (*domain.Entry, error) {
	entry, err := uc.authorizedEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := fields.Validate(); err != nil {
		return nil, err
	}

	if fields.LedgerID != entry.LedgerID {
		if err := uc.members.EnsureMember(ctx, userID, fields.LedgerID); err != nil {
			return nil, err
		}
	}

	fields.Apply(entry)

	if err := uc.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	return entry, nil
}

// DeleteEntry removes an entry.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, userID, id string) error {
	if _, err := uc.authorizedEntry(ctx, userID, id); err != nil {
		return err
	}

	return uc.entryRepo.Delete(ctx, id)
}

func (uc *EntryUseCase) authorizedEntry(ctx context.Context, userID, id string) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.members.EnsureMember(ctx, userID, entry.LedgerID); err != nil {
		return nil, err
	}

	return entry, nil
}

// ImportItem is one element of an import batch. DecodeErr is set when the raw
// payload could not be decoded into Fields.
type ImportItem struct {
	Fields    domain.EntryFields
	DecodeErr error
}

// ImportResult reports the outcome of an import batch.
type ImportResult struct {
	Created int
	Failed  int
	Entries []*domain.Entry
	Errors  []string
}

const importSaveFailedMessage = "failed to save entry"

// ImportEntries creates each item independently. A failing item is reported in
// Errors as "[index] message" and does not stop the batch.
func (uc *EntryUseCase) ImportEntries(ctx context.Context, userID string, items []ImportItem) *ImportResult {
	result := &ImportResult{
		Entries: make([]*domain.Entry, 0, len(items)),
		Errors:  make([]string, 0),
	}

	allowed := make(map[string]error)

	for i, item := range items {
		if item.DecodeErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("[%d] %s", i, item.DecodeErr.Error()))
			continue
		}

		if err := item.Fields.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("[%d] %s", i, err.Error()))
			continue
		}

		memberErr, checked := allowed[item.Fields.LedgerID]
		if !checked {
			memberErr = uc.members.EnsureMember(ctx, userID, item.Fields.LedgerID)
			allowed[item.Fields.LedgerID] = memberErr
		}
		if memberErr != nil {
			msg := importSaveFailedMessage
			if errors.Is(memberErr, domain.ErrNotFound) {
				msg = memberErr.Error()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("[%d] %s", i, msg))
			continue
		}

		entry, err := uc.create(ctx, userID, item.Fields)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("[%d] %s", i, importSaveFailedMessage))
			continue
		}

		result.Entries = append(result.Entries, entry)
	}

	result.Created = len(result.Entries)
	result.Failed = len(result.Errors)
	uc.metrics.RecordEntriesImported(result.Created, result.Failed)

	return result
}
