package handler

import (
	"context"
	"net/http"

	"github.com/iho/ourllet/internal/adapter/http/dto"
	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	GetSettlement(ctx context.Context, input usecase.SettlementInput) (*domain.Settlement, error)
	GetSummary(ctx context.Context, ledgerID, period string) (*domain.Summary, error)
}

// SettlementHandler serves the monthly reports. Membership is checked by middleware.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Settlement returns the monthly settlement.
func (h *SettlementHandler) Settlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.settlementUC.GetSettlement(r.Context(), usecase.SettlementInput{
		LedgerID: r.URL.Query().Get("ledgerId"),
		Period:   r.URL.Query().Get("period"),
		Debug:    parseBoolQuery(r, "debug"),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// Summary returns the monthly totals of ad-hoc entries.
func (h *SettlementHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.settlementUC.GetSummary(r.Context(), r.URL.Query().Get("ledgerId"), r.URL.Query().Get("period"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}
