package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/ourllet/internal/domain"
)

// Token purposes. A token is only accepted for the purpose it was issued for.
const (
	PurposeSession = "session"
	PurposeSignup  = "signup"
)

// Claims represents the JWT claims. Subject carries the user ID of session tokens.
type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// UserID returns the subject of a session token.
func (c *Claims) UserID() string {
	return c.Subject
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey  []byte
	sessionTTL time.Duration
	signupTTL  time.Duration
	now        func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, sessionTTL, signupTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		sessionTTL: sessionTTL,
		signupTTL:  signupTTL,
		now:        time.Now,
	}
}

// GenerateSession issues a session token for a user.
func (m *JWTManager) GenerateSession(userID, email string) (string, error) {
	return m.sign(Claims{
		Email:            email,
		Purpose:          PurposeSession,
		RegisteredClaims: m.registered(userID, m.sessionTTL),
	})
}

// GenerateSignup issues a short-lived token proving email ownership.
func (m *JWTManager) GenerateSignup(email string) (string, error) {
	return m.sign(Claims{
		Email:            email,
		Purpose:          PurposeSignup,
		RegisteredClaims: m.registered("", m.signupTTL),
	})
}

// VerifySession verifies a session token and returns its claims.
func (m *JWTManager) VerifySession(tokenString string) (*Claims, error) {
	claims, err := m.verify(tokenString, PurposeSession)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// VerifySignup verifies a signup token and returns the email it was issued for.
func (m *JWTManager) VerifySignup(tokenString string) (string, error) {
	claims, err := m.verify(tokenString, PurposeSignup)
	if err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Email, nil
}

func (m *JWTManager) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := m.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func (m *JWTManager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.Purpose, err)
	}
	return signed, nil
}

func (m *JWTManager) verify(tokenString, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
