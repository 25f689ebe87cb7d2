package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/ourllet/internal/adapter/http/dto"
	"github.com/iho/ourllet/internal/adapter/http/middleware"
	"github.com/iho/ourllet/internal/domain"
)

const internalErrorMessage = "internal server error"

// publicErrors are the sentinels whose text is shown to callers as-is.
var publicErrors = []error{
	domain.ErrNotFound,
	domain.ErrLedgerFull,
	domain.ErrAlreadyRegistered,
	domain.ErrUnauthorized,
	domain.ErrInvalidToken,
	domain.ErrExpiredToken,
	domain.ErrInvalidCode,
	domain.ErrInvalidInput,
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken),
		errors.Is(err, domain.ErrInvalidCode):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLedgerFull),
		errors.Is(err, domain.ErrAlreadyRegistered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage strips wrapping context so only the domain message is exposed.
func errorMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, sentinel := range publicErrors {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return internalErrorMessage
}

// handleError writes the response for err. Unexpected errors are logged and
// reported without detail.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, status, internalErrorMessage)
		return
	}

	writeError(w, status, errorMessage(err))
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	return nil
}

// currentUserID returns the authenticated user's ID.
func currentUserID(r *http.Request) (string, error) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return user.ID, nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseBoolQuery reports whether a query flag is set to a true value.
func parseBoolQuery(r *http.Request, key string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && b
}
