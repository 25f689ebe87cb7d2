package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/ourllet/internal/domain"
)

// LedgerUseCase handles ledger creation, membership and invite codes.
type LedgerUseCase struct {
	txManager  TransactionManager
	ledgerRepo LedgerRepository
	codeGen    CodeGenerator
	retrier    Retrier
	metrics    MetricsRecorder
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	codeGen CodeGenerator,
	retrier Retrier,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:  txManager,
		ledgerRepo: ledgerRepo,
		codeGen:    codeGen,
		retrier:    retrier,
		metrics:    noopMetrics{},
	}
}

// WithMetrics sets the metrics recorder.
func (uc *LedgerUseCase) WithMetrics(m MetricsRecorder) *LedgerUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// CreateLedger creates an unnamed ledger with userID as its first member.
func (uc *LedgerUseCase) CreateLedger(ctx context.Context, userID string) (*domain.Ledger, error) {
	return uc.CreateLedgerWithName(ctx, userID, "")
}

// CreateLedgerWithName creates a ledger with a display name. A blank name leaves it unnamed.
func (uc *LedgerUseCase) CreateLedgerWithName(ctx context.Context, userID, name string) (*domain.Ledger, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateLedgerName(name); err != nil {
		return nil, err
	}

	var ledger *domain.Ledger
	err := uc.inTx(ctx, func(tx Transaction) error {
		var err error
		ledger, err = uc.createInTx(ctx, tx, userID, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	return ledger, nil
}

// createInTx inserts a ledger under a fresh invite code and adds userID as a member.
func (uc *LedgerUseCase) createInTx(ctx context.Context, tx Transaction, userID, name string) (*domain.Ledger, error) {
	now := time.Now().UTC()
	ledger := &domain.Ledger{
		CreatedAt: now,
		UpdatedAt: now,
	}
	if name != "" {
		ledger.Name = &name
	}

	if err := uc.insertWithFreshCode(ctx, tx, ledger); err != nil {
		return nil, err
	}

	err := uc.ledgerRepo.AddMemberTx(ctx, tx, &domain.LedgerMember{
		LedgerID: ledger.ID,
		UserID:   userID,
		JoinedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("add ledger member: %w", err)
	}

	return ledger, nil
}

// insertWithFreshCode draws invite codes until the insert claims a free one.
// Codes taken by committed or concurrent ledgers are skipped.
func (uc *LedgerUseCase) insertWithFreshCode(ctx context.Context, tx Transaction, ledger *domain.Ledger) error {
	for range MaxInviteCodeAttempts {
		code, err := uc.codeGen.Generate()
		if err != nil {
			return fmt.Errorf("generate invite code: %w", err)
		}

		ledger.ID = code
		inserted, err := uc.ledgerRepo.CreateTx(ctx, tx, ledger)
		if err != nil {
			return fmt.Errorf("create ledger: %w", err)
		}
		if inserted {
			return nil
		}
	}

	return domain.ErrInviteCodeExhausted
}

// JoinByCode adds userID to the ledger named by an invite code.
// Joining a ledger the user already belongs to is a no-op.
func (uc *LedgerUseCase) JoinByCode(ctx context.Context, userID, code string) (*domain.Ledger, error) {
	ledgerID, err := domain.NormalizeInviteCode(code)
	if err != nil {
		return nil, err
	}

	var (
		ledger *domain.Ledger
		result string
	)

	err = uc.inTx(ctx, func(tx Transaction) error {
		l, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, ledgerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				result = JoinResultNotFound
			}
			return err
		}

		member, err := uc.ledgerRepo.IsMemberTx(ctx, tx, ledgerID, userID)
		if err != nil {
			return err
		}
		if member {
			ledger, result = l, JoinResultAlreadyMember
			return nil
		}

		count, err := uc.ledgerRepo.CountMembersTx(ctx, tx, ledgerID)
		if err != nil {
			return err
		}
		if count >= domain.MaxMembersPerLedger {
			result = JoinResultFull
			return domain.ErrLedgerFull
		}

		err = uc.ledgerRepo.AddMemberTx(ctx, tx, &domain.LedgerMember{
			LedgerID: ledgerID,
			UserID:   userID,
			JoinedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("add ledger member: %w", err)
		}

		ledger, result = l, JoinResultJoined
		return nil
	})

	if result != "" {
		uc.metrics.RecordLedgerJoin(result)
	}
	if err != nil {
		return nil, err
	}

	return ledger, nil
}

// EnsureMember returns domain.ErrNotFound unless userID belongs to ledgerID.
// Missing ledgers and foreign ledgers are indistinguishable to the caller.
func (uc *LedgerUseCase) EnsureMember(ctx context.Context, userID, ledgerID string) error {
	ok, err := uc.ledgerRepo.IsMember(ctx, ledgerID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// ListLedgers returns the ledgers userID belongs to, optionally filtered by exact name.
func (uc *LedgerUseCase) ListLedgers(ctx context.Context, userID string, name *string) ([]*domain.Ledger, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	return uc.ledgerRepo.ListByUser(ctx, userID, name)
}

// UpdateLedger renames a ledger. An empty name clears it. Callers gate membership.
func (uc *LedgerUseCase) UpdateLedger(ctx context.Context, ledgerID, name string) (*domain.Ledger, error) {
	name = strings.TrimSpace(name)
	if err := domain.ValidateLedgerName(name); err != nil {
		return nil, err
	}

	var newName *string
	if name != "" {
		newName = &name
	}

	if err := uc.ledgerRepo.UpdateName(ctx, ledgerID, newName, time.Now().UTC()); err != nil {
		return nil, err
	}

	return uc.ledgerRepo.GetByID(ctx, ledgerID)
}

// DeleteLedger removes a ledger with its members, entries and fixed entries.
// Callers gate membership.
func (uc *LedgerUseCase) DeleteLedger(ctx context.Context, ledgerID string) error {
	return uc.inTx(ctx, func(tx Transaction) error {
		if _, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, ledgerID); err != nil {
			return err
		}
		return uc.ledgerRepo.DeleteTx(ctx, tx, ledgerID)
	})
}

// inTx runs fn in a transaction, retrying the whole transaction on transient failures.
func (uc *LedgerUseCase) inTx(ctx context.Context, fn func(tx Transaction) error) error {
	return uc.retrier.Retry(ctx, func() error {
		return runInTx(ctx, uc.txManager, fn)
	})
}

func runInTx(ctx context.Context, txManager TransactionManager, fn func(tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
