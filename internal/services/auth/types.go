package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAccountDisabled = errors.New("account disabled")
	ErrSessionNotFound = errors.New("session not found")
	ErrRefreshNotFound = errors.New("refresh token not found")
)

type SessionRecord struct {
	SID       string
	AdminID   int64
	Role      string
	ExpiresAt time.Time
}

type AccessClaims struct {
	AdminID   int64
	SID       string
	Role      string
	ExpiresAt time.Time
}

type Me struct {
	ID          int64
	Email       string
	DisplayName string
	Role        string
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
