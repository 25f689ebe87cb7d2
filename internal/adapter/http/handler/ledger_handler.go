package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ourllet/internal/adapter/http/dto"
	"github.com/iho/ourllet/internal/domain"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CreateLedger(ctx context.Context, userID string) (*domain.Ledger, error)
	JoinByCode(ctx context.Context, userID, code string) (*domain.Ledger, error)
	ListLedgers(ctx context.Context, userID string, name *string) ([]*domain.Ledger, error)
	UpdateLedger(ctx context.Context, ledgerID, name string) (*domain.Ledger, error)
	DeleteLedger(ctx context.Context, ledgerID string) error
}

// LedgerHandler handles ledger membership requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// InviteCode creates a ledger whose ID doubles as the invite code.
func (h *LedgerHandler) InviteCode(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	ledger, err := h.ledgerUC.CreateLedger(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InviteCodeResponse{LedgerID: ledger.ID, Code: ledger.ID})
}

// Join joins a ledger by invite code.
func (h *LedgerHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req dto.JoinLedgerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	ledger, err := h.ledgerUC.JoinByCode(r.Context(), userID, req.Code)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JoinLedgerResponse{LedgerID: ledger.ID})
}

// List lists the caller's ledgers, optionally filtered by exact name.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var name *string
	if r.URL.Query().Has("name") {
		n := r.URL.Query().Get("name")
		name = &n
	}

	ledgers, err := h.ledgerUC.ListLedgers(r.Context(), userID, name)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgersFromDomain(ledgers))
}

// Update renames a ledger. Membership is checked by middleware.
func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateLedgerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	ledger, err := h.ledgerUC.UpdateLedger(r.Context(), chi.URLParam(r, "ledgerID"), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// Delete removes a ledger with all of its data. Membership is checked by middleware.
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerUC.DeleteLedger(r.Context(), chi.URLParam(r, "ledgerID")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
