package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ourllet/internal/adapter/http/dto"
	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	CreateEntry(ctx context.Context, userID string, fields domain.EntryFields) (*domain.Entry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
	UpdateEntry(ctx context.Context, userID, id string, fields domain.EntryFields) (*domain.Entry, error)
	DeleteEntry(ctx context.Context, userID, id string) error
	ImportEntries(ctx context.Context, userID string, items []usecase.ImportItem) *usecase.ImportResult
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// List lists a ledger's entries. Membership is checked by middleware.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		LedgerID: r.URL.Query().Get("ledgerId"),
		Period:   r.URL.Query().Get("period"),
		Limit:    parseIntQuery(r, "limit", 0),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Categories returns the default entry categories.
func (h *EntryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.EntryCategoriesResponse{
		Savings: domain.SavingsCategories,
		Expense: domain.ExpenseCategories,
	})
}

// Create creates an entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req dto.EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := h.entryUC.CreateEntry(r.Context(), userID, req.ToFields())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Import creates a batch of entries, reporting failures per item.
func (h *EntryHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req dto.ImportEntriesRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Entries == nil {
		writeError(w, http.StatusBadRequest, "entries must be an array")
		return
	}

	result := h.entryUC.ImportEntries(r.Context(), userID, req.ToImportItems())

	writeJSON(w, http.StatusCreated, dto.ImportFromResult(result))
}

// Update replaces an entry.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req dto.EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := h.entryUC.UpdateEntry(r.Context(), userID, chi.URLParam(r, "id"), req.ToFields())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Delete removes an entry.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.entryUC.DeleteEntry(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
