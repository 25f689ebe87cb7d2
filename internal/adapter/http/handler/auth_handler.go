package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/iho/ourllet/internal/adapter/http/dto"
	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

const (
	oauthStateCookie = "ourllet_oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// AuthService defines the behavior needed by AuthHandler.
type AuthService interface {
	SendCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*usecase.VerifyResult, error)
	Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*usecase.LoginResult, error)
	LoginWithGoogleIdentity(ctx context.Context, identity *usecase.GoogleIdentity) (*usecase.LoginResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authUC      AuthService
	google      usecase.GoogleOAuth
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler. google may be nil when the
// authorization-code flow is not configured.
func NewAuthHandler(authUC AuthService, google usecase.GoogleOAuth, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authUC:      authUC,
		google:      google,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// SendCode emails a verification code.
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req dto.SendCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.authUC.SendCode(r.Context(), req.Email); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Verify checks a verification code.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := h.authUC.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyFromResult(result))
}

// Register completes a signup.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := h.authUC.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisterFromResult(result))
}

// Google signs in with a Google ID token.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req dto.GoogleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := h.authUC.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginFromResult(result))
}

// GoogleLogin redirects to the Google consent page.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	state := oauth2.GenerateVerifier()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback finishes the authorization-code flow.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	query := r.URL.Query()
	state := query.Get("state")

	cookie, err := r.Cookie(oauthStateCookie)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	if reason := query.Get("error"); reason != "" {
		h.finishGoogle(w, r, "", reason)
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	identity, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := h.authUC.LoginWithGoogleIdentity(r.Context(), identity)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if h.frontendURL == "" {
		writeJSON(w, http.StatusOK, dto.LoginFromResult(result))
		return
	}
	h.finishGoogle(w, r, result.Token, "")
}

// finishGoogle hands the outcome to the frontend in the URL fragment.
func (h *AuthHandler) finishGoogle(w http.ResponseWriter, r *http.Request, token, reason string) {
	if h.frontendURL == "" {
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	fragment := url.Values{}
	if token != "" {
		fragment.Set("token", token)
	} else {
		fragment.Set("error", reason)
	}

	http.Redirect(w, r, h.frontendURL+"/#"+fragment.Encode(), http.StatusFound)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	user, err := h.authUC.GetUser(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
