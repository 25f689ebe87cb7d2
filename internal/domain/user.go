package domain

import (
	"errors"
	"time"
)

// User represents a registered household member.
type User struct {
	ID        string
	Email     string
	GoogleSub *string
	Name      *string
	Picture   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidCode  = errors.New("verification code is invalid or expired")
)

// DisplayName returns the user's name or an empty string.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
