package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

// SendCodeRequest asks for an email verification code.
type SendCodeRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest submits an email verification code.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RegisterRequest completes signup for a verified email.
type RegisterRequest struct {
	SignupToken string `json:"signupToken"`
	Nickname    string `json:"nickname"`
	LedgerName  string `json:"ledgerName"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		SignupToken: r.SignupToken,
		Nickname:    r.Nickname,
		LedgerName:  r.LedgerName,
	}
}

// GoogleLoginRequest carries a Google ID token from a client-side sign-in.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// EntryRequest creates or replaces an entry.
type EntryRequest struct {
	LedgerID string           `json:"ledgerId"`
	Type     domain.EntryType `json:"type"`
	Amount   decimal.Decimal  `json:"amount"`
	Title    string           `json:"title"`
	Category *string          `json:"category,omitempty"`
	Memo     *string          `json:"memo,omitempty"`
	Date     string           `json:"date"`
}

// ToFields converts to domain fields.
func (r *EntryRequest) ToFields() domain.EntryFields {
	return domain.EntryFields{
		LedgerID: r.LedgerID,
		Type:     r.Type,
		Amount:   r.Amount,
		Title:    r.Title,
		Category: r.Category,
		Memo:     r.Memo,
		Date:     r.Date,
	}
}

// ImportEntriesRequest is a batch of raw entry payloads.
type ImportEntriesRequest struct {
	Entries []json.RawMessage `json:"entries"`
}

// ToImportItems decodes every payload independently. Items that cannot be
// decoded carry a DecodeErr instead of failing the whole batch.
func (r *ImportEntriesRequest) ToImportItems() []usecase.ImportItem {
	items := make([]usecase.ImportItem, len(r.Entries))
	for i, raw := range r.Entries {
		var req EntryRequest
		if err := decodeImportItem(raw, &req); err != nil {
			items[i] = usecase.ImportItem{DecodeErr: err}
			continue
		}
		items[i] = usecase.ImportItem{Fields: req.ToFields()}
	}
	return items
}

func decodeImportItem(raw json.RawMessage, req *EntryRequest) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.NewValidationError("entry must be a JSON object")
	}

	if err := json.Unmarshal(trimmed, req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError(fmt.Sprintf("%s has an invalid type", typeErr.Field))
		}
		return domain.NewValidationError("entry is not valid JSON")
	}

	return nil
}

// CreateFixedEntryRequest creates a fixed entry.
type CreateFixedEntryRequest struct {
	LedgerID   string                `json:"ledgerId"`
	Type       domain.FixedEntryType `json:"type"`
	Title      string                `json:"title"`
	Category   string                `json:"category"`
	Amount     decimal.Decimal       `json:"amount"`
	DayOfMonth int                   `json:"dayOfMonth"`
	Memo       *string               `json:"memo,omitempty"`
}

// ToFields converts to domain fields.
func (r *CreateFixedEntryRequest) ToFields() domain.FixedEntryFields {
	return domain.FixedEntryFields{
		LedgerID:   r.LedgerID,
		Type:       r.Type,
		Title:      r.Title,
		Category:   r.Category,
		Amount:     r.Amount,
		DayOfMonth: r.DayOfMonth,
		Memo:       r.Memo,
	}
}

// UpdateFixedEntryRequest is a partial update. Absent fields are untouched.
type UpdateFixedEntryRequest struct {
	Type          *domain.FixedEntryType `json:"type,omitempty"`
	Title         *string                `json:"title,omitempty"`
	Category      *string                `json:"category,omitempty"`
	Amount        *decimal.Decimal       `json:"amount,omitempty"`
	DayOfMonth    *int                   `json:"dayOfMonth,omitempty"`
	Memo          *string                `json:"memo,omitempty"`
	ExcludedDates *[]string              `json:"excludedDates,omitempty"`
}

// ToPatch converts to a domain patch.
func (r *UpdateFixedEntryRequest) ToPatch() domain.FixedEntryPatch {
	patch := domain.FixedEntryPatch{
		Type:       r.Type,
		Title:      r.Title,
		Category:   r.Category,
		Amount:     r.Amount,
		DayOfMonth: r.DayOfMonth,
		Memo:       r.Memo,
	}
	if r.ExcludedDates != nil {
		patch.SetExcluded = true
		patch.ExcludedDates = *r.ExcludedDates
	}
	return patch
}

// JoinLedgerRequest joins a ledger by invite code.
type JoinLedgerRequest struct {
	Code string `json:"code"`
}

// UpdateLedgerRequest renames a ledger. An empty name clears it.
type UpdateLedgerRequest struct {
	Name string `json:"name"`
}
