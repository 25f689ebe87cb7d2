package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/iho/ourllet/internal/domain"
	"github.com/iho/ourllet/internal/usecase"
)

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier implements usecase.GoogleVerifier with Google's public keys.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

// NewGoogleVerifier creates a verifier accepting tokens issued for clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

// VerifyIDToken checks signature, audience and expiry, then extracts the profile.
func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*usecase.GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured: %w", domain.ErrUnauthorized)
	}

	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", domain.ErrInvalidToken)
	}

	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, domain.ErrInvalidToken
	}

	return &usecase.GoogleIdentity{
		Sub:     payload.Subject,
		Email:   stringClaim(payload.Claims, "email"),
		Name:    stringClaim(payload.Claims, "name"),
		Picture: stringClaim(payload.Claims, "picture"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// GoogleOAuth implements usecase.GoogleOAuth with the authorization-code flow.
type GoogleOAuth struct {
	config   *oauth2.Config
	verifier *GoogleVerifier
}

// NewGoogleOAuth creates the code-flow client.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		verifier: NewGoogleVerifier(clientID),
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's verified identity.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*usecase.GoogleIdentity, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", domain.ErrInvalidCode)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("token response without id_token: %w", domain.ErrInvalidToken)
	}

	return g.verifier.VerifyIDToken(ctx, rawIDToken)
}
