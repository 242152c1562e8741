package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a login account. The member row with ProfileID == User.ID is the
// user's primary account member.
type User struct {
	Base
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at" db:"last_login_at"`
}

type TokenType string

const (
	TokenTypeVerification TokenType = "verification"
	TokenTypeReset        TokenType = "reset"
	TokenTypeRevoked      TokenType = "revoked"
)

// UserToken is a single-use token: email verification, password reset, or a
// revoked refresh token kept until it would have expired.
type UserToken struct {
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Token     string     `json:"-" db:"token"`
	Type      TokenType  `json:"type" db:"type"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (t *UserToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
