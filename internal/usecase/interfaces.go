package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ourllet/internal/domain"
)

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	CreateTx(ctx context.Context, tx Transaction, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// LedgerRepository defines data access for ledgers and their members.
type LedgerRepository interface {
	// CreateTx reports false when the ledger id is already taken.
	CreateTx(ctx context.Context, tx Transaction, ledger *domain.Ledger) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Ledger, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Ledger, error)
	ListByUser(ctx context.Context, userID string, name *string) ([]*domain.Ledger, error)
	UpdateName(ctx context.Context, id string, name *string, updatedAt time.Time) error
	DeleteTx(ctx context.Context, tx Transaction, id string) error
	AddMemberTx(ctx context.Context, tx Transaction, member *domain.LedgerMember) error
	IsMember(ctx context.Context, ledgerID, userID string) (bool, error)
	IsMemberTx(ctx context.Context, tx Transaction, ledgerID, userID string) (bool, error)
	CountMembersTx(ctx context.Context, tx Transaction, ledgerID string) (int, error)
}

// EntryRepository defines data access for ad-hoc entries and their aggregates.
type EntryRepository interface {
	Create(ctx context.Context, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error)
	Update(ctx context.Context, entry *domain.Entry) error
	Delete(ctx context.Context, id string) error
	SumByType(ctx context.Context, ledgerID string, entryType domain.EntryType, start, end time.Time) (decimal.Decimal, error)
	SumsByType(ctx context.Context, ledgerID string, start, end time.Time) (map[domain.EntryType]decimal.Decimal, error)
	SumExpensesByCategory(ctx context.Context, ledgerID string, start, end time.Time) ([]domain.CategoryAmount, error)
	ListByType(ctx context.Context, ledgerID string, entryType domain.EntryType, start, end time.Time) ([]*domain.Entry, error)
}

// FixedEntryRepository defines data access for recurring entries.
type FixedEntryRepository interface {
	Create(ctx context.Context, entry *domain.FixedEntry) error
	GetByID(ctx context.Context, id string) (*domain.FixedEntry, error)
	ListByLedger(ctx context.Context, ledgerID string) ([]*domain.FixedEntry, error)
	Update(ctx context.Context, entry *domain.FixedEntry) error
	Delete(ctx context.Context, id string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// CodeGenerator generates random numeric codes (invite codes, verification codes).
type CodeGenerator interface {
	Generate() (string, error)
}

// MembershipChecker gates access to a ledger's data.
type MembershipChecker interface {
	EnsureMember(ctx context.Context, userID, ledgerID string) error
}

// VerificationStore keeps short-lived email verification codes.
type VerificationStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// ConsumeIfValid removes the stored value for key and reports whether it matched value.
	ConsumeIfValid(ctx context.Context, key, value string) (bool, error)
}

// Mailer delivers verification codes.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// TokenIssuer issues and parses the tokens handed to clients.
type TokenIssuer interface {
	GenerateSession(userID, email string) (string, error)
	GenerateSignup(email string) (string, error)
	VerifySignup(token string) (email string, err error)
}

// GoogleIdentity is the verified profile of a Google account.
type GoogleIdentity struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier verifies Google ID tokens.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// GoogleOAuth runs the Google authorization-code flow.
type GoogleOAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleIdentity, error)
}

// MetricsRecorder records domain metrics.
type MetricsRecorder interface {
	RecordSettlement(duration time.Duration, items int)
	RecordEntriesImported(created, failed int)
	RecordLedgerJoin(result string)
	RecordVerificationCode(result string)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

type noopMetrics struct{}

func (noopMetrics) RecordSettlement(time.Duration, int) {}
func (noopMetrics) RecordEntriesImported(int, int)      {}
func (noopMetrics) RecordLedgerJoin(string)             {}
func (noopMetrics) RecordVerificationCode(string)       {}
