package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ourllet/internal/adapter/http/dto"
	"github.com/iho/ourllet/internal/domain"
)

// FixedEntryService defines the behavior needed by FixedEntryHandler.
type FixedEntryService interface {
	ListFixedEntries(ctx context.Context, ledgerID string) ([]*domain.FixedEntry, error)
	CreateFixedEntry(ctx context.Context, userID string, fields domain.FixedEntryFields) (*domain.FixedEntry, error)
	UpdateFixedEntry(ctx context.Context, userID, id string, patch domain.FixedEntryPatch) (*domain.FixedEntry, error)
	DeleteFixedEntry(ctx context.Context, userID, id string) error
}

// FixedEntryHandler handles recurring entry requests.
type FixedEntryHandler struct {
	fixedUC FixedEntryService
}

// NewFixedEntryHandler creates a new FixedEntryHandler.
func NewFixedEntryHandler(fixedUC FixedEntryService) *FixedEntryHandler {
	return &FixedEntryHandler{fixedUC: fixedUC}
}

// List lists a ledger's fixed entries. Membership is checked by middleware.
func (h *FixedEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.fixedUC.ListFixedEntries(r.Context(), r.URL.Query().Get("ledgerId"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FixedEntriesFromDomain(list))
}

// Categories returns the default fixed entry categories.
func (h *FixedEntryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.FixedCategoriesResponse{
		Expense: domain.FixedExpenseCategories,
		Income:  domain.FixedIncomeCategories,
	})
}

// Create creates a fixed entry.
func (h *FixedEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req dto.CreateFixedEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	f, err := h.fixedUC.CreateFixedEntry(r.Context(), userID, req.ToFields())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.FixedEntryFromDomain(f))
}

// Update applies a partial update.
func (h *FixedEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req dto.UpdateFixedEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	f, err := h.fixedUC.UpdateFixedEntry(r.Context(), userID, chi.URLParam(r, "id"), req.ToPatch())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FixedEntryFromDomain(f))
}

// Delete removes a fixed entry.
func (h *FixedEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.fixedUC.DeleteFixedEntry(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
