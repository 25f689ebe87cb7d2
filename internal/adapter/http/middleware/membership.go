package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/ourllet/internal/domain"
)

// LedgerIDParam is the route parameter naming a ledger.
const LedgerIDParam = "ledgerID"

// MembershipChecker reports whether a user belongs to a ledger.
type MembershipChecker interface {
	EnsureMember(ctx context.Context, userID, ledgerID string) error
}

// RequireLedgerMember rejects requests for ledgers the caller does not belong
// to. The ledger is taken from the {ledgerID} route parameter or the ledgerId
// query parameter. Unknown ledgers and foreign ledgers both answer 404.
func RequireLedgerMember(checker MembershipChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
				return
			}

			ledgerID := chi.URLParam(r, LedgerIDParam)
			if ledgerID == "" {
				ledgerID = r.URL.Query().Get("ledgerId")
			}

			if err := domain.ValidateLedgerID(ledgerID); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			if err := checker.EnsureMember(r.Context(), user.ID, ledgerID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeError(w, http.StatusNotFound, domain.ErrNotFound.Error())
					return
				}
				zerolog.Ctx(r.Context()).Error().Err(err).Str("ledger_id", ledgerID).Msg("membership check failed")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
