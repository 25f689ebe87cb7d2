package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

func init() {
	// Amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    *string `json:"name,omitempty"`
	Picture *string `json:"picture,omitempty"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
	}
}

// TokenResponse carries a session token.
type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// LoginFromResult converts a login result to a response.
func LoginFromResult(r *usecase.LoginResult) *TokenResponse {
	return &TokenResponse{Token: r.Token, User: UserFromDomain(r.User)}
}

// VerifyCodeResponse is either a session for a known user or a signup token.
type VerifyCodeResponse struct {
	Token       string        `json:"token,omitempty"`
	User        *UserResponse `json:"user,omitempty"`
	SignupToken string        `json:"signupToken,omitempty"`
	IsNewUser   bool          `json:"isNewUser,omitempty"`
}

// VerifyFromResult converts a verification result to a response.
func VerifyFromResult(r *usecase.VerifyResult) *VerifyCodeResponse {
	return &VerifyCodeResponse{
		Token:       r.Token,
		User:        UserFromDomain(r.User),
		SignupToken: r.SignupToken,
		IsNewUser:   r.IsNewUser,
	}
}

// RegisterResponse is returned after signup.
type RegisterResponse struct {
	Token    string        `json:"token"`
	User     *UserResponse `json:"user"`
	LedgerID string        `json:"ledgerId"`
}

// RegisterFromResult converts a registration result to a response.
func RegisterFromResult(r *usecase.RegisterResult) *RegisterResponse {
	return &RegisterResponse{
		Token:    r.Token,
		User:     UserFromDomain(r.User),
		LedgerID: r.Ledger.ID,
	}
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID        string          `json:"id"`
	LedgerID  string          `json:"ledgerId"`
	UserID    string          `json:"userId"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Title     string          `json:"title"`
	Category  *string         `json:"category"`
	Memo      *string         `json:"memo"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:        e.ID,
		LedgerID:  e.LedgerID,
		UserID:    e.UserID,
		Type:      string(e.Type),
		Amount:    e.Amount,
		Title:     e.Title,
		Category:  e.Category,
		Memo:      e.Memo,
		Date:      domain.FormatDate(e.Date),
		CreatedAt: e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ImportEntriesResponse reports a batch import.
type ImportEntriesResponse struct {
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Entries []*EntryResponse `json:"entries"`
	Errors  []string         `json:"errors"`
}

// ImportFromResult converts an import result to a response.
func ImportFromResult(r *usecase.ImportResult) *ImportEntriesResponse {
	return &ImportEntriesResponse{
		Created: r.Created,
		Failed:  r.Failed,
		Entries: EntriesFromDomain(r.Entries),
		Errors:  r.Errors,
	}
}

// EntryCategoriesResponse lists the default entry categories.
type EntryCategoriesResponse struct {
	Savings []string `json:"savings"`
	Expense []string `json:"expense"`
}

// FixedEntryResponse represents a fixed entry in API responses.
type FixedEntryResponse struct {
	ID            string          `json:"id"`
	LedgerID      string          `json:"ledgerId"`
	UserID        string          `json:"userId"`
	Type          string          `json:"type"`
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	DayOfMonth    int             `json:"dayOfMonth"`
	Memo          *string         `json:"memo"`
	ExcludedDates []string        `json:"excludedDates"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// FixedEntryFromDomain converts a domain fixed entry to a response.
func FixedEntryFromDomain(f *domain.FixedEntry) *FixedEntryResponse {
	excluded := make([]string, len(f.ExcludedDates))
	for i, d := range f.ExcludedDates {
		excluded[i] = domain.FormatDate(d)
	}

	return &FixedEntryResponse{
		ID:            f.ID,
		LedgerID:      f.LedgerID,
		UserID:        f.UserID,
		Type:          string(f.Type),
		Title:         f.Title,
		Category:      f.Category,
		Amount:        f.Amount,
		DayOfMonth:    f.DayOfMonth,
		Memo:          f.Memo,
		ExcludedDates: excluded,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// FixedEntriesFromDomain converts domain fixed entries to responses.
func FixedEntriesFromDomain(list []*domain.FixedEntry) []*FixedEntryResponse {
	result := make([]*FixedEntryResponse, len(list))
	for i, f := range list {
		result[i] = FixedEntryFromDomain(f)
	}
	return result
}

// FixedCategoriesResponse lists the default fixed entry categories.
type FixedCategoriesResponse struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

// InviteCodeResponse is returned when a ledger is created for inviting.
type InviteCodeResponse struct {
	LedgerID string `json:"ledgerId"`
	Code     string `json:"code"`
}

// LedgerResponse represents a ledger in API responses.
type LedgerResponse struct {
	LedgerID string  `json:"ledgerId"`
	Name     *string `json:"name"`
}

// LedgerFromDomain converts a domain ledger to a response.
func LedgerFromDomain(l *domain.Ledger) *LedgerResponse {
	return &LedgerResponse{LedgerID: l.ID, Name: l.Name}
}

// ListLedgersResponse lists the caller's ledgers.
type ListLedgersResponse struct {
	Ledgers []*LedgerResponse `json:"ledgers"`
}

// LedgersFromDomain converts domain ledgers to a list response.
func LedgersFromDomain(ledgers []*domain.Ledger) *ListLedgersResponse {
	result := make([]*LedgerResponse, len(ledgers))
	for i, l := range ledgers {
		result[i] = LedgerFromDomain(l)
	}
	return &ListLedgersResponse{Ledgers: result}
}

// JoinLedgerResponse is returned after joining a ledger.
type JoinLedgerResponse struct {
	LedgerID string `json:"ledgerId"`
}

// SettlementItemResponse is one settlement line.
type SettlementItemResponse struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

// SettlementRange is the inclusive date range of a settlement.
type SettlementRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SettlementDebugResponse exposes the intermediate sums of a settlement.
type SettlementDebugResponse struct {
	Range             SettlementRange  `json:"range"`
	IncomeFromEntries decimal.Decimal  `json:"incomeFromEntries"`
	FixedIncome       decimal.Decimal  `json:"fixedIncome"`
	IncomeEntries     []*EntryResponse `json:"incomeEntries"`
}

// SettlementResponse is the monthly settlement.
type SettlementResponse struct {
	Period      string                    `json:"period"`
	TotalIncome decimal.Decimal           `json:"totalIncome"`
	Items       []*SettlementItemResponse `json:"items"`
	Debug       *SettlementDebugResponse  `json:"debug,omitempty"`
}

// SettlementFromDomain converts a domain settlement to a response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	items := make([]*SettlementItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = &SettlementItemResponse{
			Label:  item.Label,
			Amount: item.Amount,
			Type:   string(item.Type),
		}
	}

	resp := &SettlementResponse{
		Period:      s.Period.String(),
		TotalIncome: s.TotalIncome,
		Items:       items,
	}

	if d := s.Debug; d != nil {
		incomeEntries := make([]*EntryResponse, len(d.IncomeEntries))
		for i := range d.IncomeEntries {
			incomeEntries[i] = EntryFromDomain(&d.IncomeEntries[i])
		}
		resp.Debug = &SettlementDebugResponse{
			Range: SettlementRange{
				Start: domain.FormatDate(d.Start),
				End:   domain.FormatDate(d.End),
			},
			IncomeFromEntries: d.IncomeFromEntries,
			FixedIncome:       d.FixedIncome,
			IncomeEntries:     incomeEntries,
		}
	}

	return resp
}

// SummaryResponse is the monthly summary.
type SummaryResponse struct {
	Period       string          `json:"period"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
	Balance      decimal.Decimal `json:"balance"`
}

// SummaryFromDomain converts a domain summary to a response.
func SummaryFromDomain(s *domain.Summary) *SummaryResponse {
	return &SummaryResponse{
		Period:       s.Period.String(),
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		TotalSavings: s.TotalSavings,
		Balance:      s.Balance(),
	}
}
