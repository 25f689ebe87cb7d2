package domain

import "time"

// MaxMembersPerLedger caps how many users can share one ledger.
const MaxMembersPerLedger = 2

// InviteCodeLength is the number of digits in a ledger id.
const InviteCodeLength = 6

// Ledger is a shared budget book. Its ID is also the invite code.
type Ledger struct {
	ID        string
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerMember links a user to a ledger.
type LedgerMember struct {
	LedgerID string
	UserID   string
	JoinedAt time.Time
}

// DisplayName returns the ledger name or an empty string.
func (l *Ledger) DisplayName() string {
	if l.Name == nil {
		return ""
	}
	return *l.Name
}
