package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"

	"github.com/iho/ourllet/internal/domain"
)

func fakeValidator(t *testing.T, wantToken string, payload *idtoken.Payload) validateFunc {
	t.Helper()
	return func(_ context.Context, idToken, audience string) (*idtoken.Payload, error) {
		if idToken != wantToken {
			return nil, errors.New("idtoken: invalid signature")
		}
		if audience != "client-1" {
			t.Fatalf("expected %q, got %q", "client-1", audience)
		}
		return payload, nil
	}
}

func TestGoogleVerifierExtractsProfile(t *testing.T) {
	v := NewGoogleVerifier("client-1")
	v.validate = fakeValidator(t, "good", &idtoken.Payload{
		Subject: "sub-1",
		Claims: map[string]interface{}{
			"email":          "Mina@Example.com",
			"email_verified": true,
			"name":           "Mina",
			"picture":        "https://example.com/p.png",
		},
	})

	identity, err := v.VerifyIDToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Sub != "sub-1" {
		t.Fatalf("expected %q, got %q", "sub-1", identity.Sub)
	}
	if identity.Email != "Mina@Example.com" {
		t.Fatalf("expected %q, got %q", "Mina@Example.com", identity.Email)
	}
	if identity.Name != "Mina" {
		t.Fatalf("expected %q, got %q", "Mina", identity.Name)
	}
	if identity.Picture != "https://example.com/p.png" {
		t.Fatalf("expected %q, got %q", "https://example.com/p.png", identity.Picture)
	}
}

func TestGoogleVerifierRejectsInvalidToken(t *testing.T) {
	v := NewGoogleVerifier("client-1")
	v.validate = fakeValidator(t, "good", &idtoken.Payload{})

	_, err := v.VerifyIDToken(context.Background(), "forged")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected %v, got %v", domain.ErrInvalidToken, err)
	}
}

func TestGoogleVerifierRejectsUnverifiedEmail(t *testing.T) {
	v := NewGoogleVerifier("client-1")
	v.validate = fakeValidator(t, "good", &idtoken.Payload{
		Subject: "sub-1",
		Claims:  map[string]interface{}{"email": "a@example.com", "email_verified": false},
	})

	_, err := v.VerifyIDToken(context.Background(), "good")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected %v, got %v", domain.ErrInvalidToken, err)
	}
}

func TestGoogleVerifierRequiresClientID(t *testing.T) {
	v := NewGoogleVerifier("")

	_, err := v.VerifyIDToken(context.Background(), "anything")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected %v, got %v", domain.ErrUnauthorized, err)
	}
}

func TestGoogleOAuthAuthCodeURLCarriesState(t *testing.T) {
	g := NewGoogleOAuth("client-1", "secret", "https://api.example.com/callback")

	u, err := url.Parse(g.AuthCodeURL("state-xyz"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-xyz" {
		t.Fatalf("expected %q, got %q", "state-xyz", q.Get("state"))
	}
	if q.Get("client_id") != "client-1" {
		t.Fatalf("expected %q, got %q", "client-1", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "https://api.example.com/callback" {
		t.Fatalf("expected %q, got %q", "https://api.example.com/callback", q.Get("redirect_uri"))
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Fatalf("expected %q to contain %q", q.Get("scope"), "email")
	}
}

func TestGoogleOAuthExchangeVerifiesIDToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Form.Get("code") != "auth-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"good"}`))
	}))
	defer srv.Close()

	g := NewGoogleOAuth("client-1", "secret", "https://api.example.com/callback")
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.verifier.validate = fakeValidator(t, "good", &idtoken.Payload{
		Subject: "sub-1",
		Claims:  map[string]interface{}{"email": "a@example.com"},
	})

	identity, err := g.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Sub != "sub-1" {
		t.Fatalf("expected %q, got %q", "sub-1", identity.Sub)
	}

	_, err = g.Exchange(context.Background(), "bad-code")
	if !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected %v, got %v", domain.ErrInvalidCode, err)
	}
}
