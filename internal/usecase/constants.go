package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// MaxInviteCodeAttempts bounds the search for an unused ledger id.
	MaxInviteCodeAttempts = 100

	// DefaultVerificationCodeTTL is how long an emailed code stays valid.
	DefaultVerificationCodeTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	verificationKeyPrefix = "email-verification:"
)

// Ledger join outcomes reported to metrics.
const (
	JoinResultJoined        = "joined"
	JoinResultAlreadyMember = "already_member"
	JoinResultFull          = "full"
	JoinResultNotFound      = "not_found"
)

// Verification outcomes reported to metrics.
const (
	VerificationSent     = "sent"
	VerificationAccepted = "accepted"
	VerificationRejected = "rejected"
)
