package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(Config{Secret: "access-secret", RefreshSecret: "refresh-secret", Issuer: "safefam"})
	userID := uuid.New()

	access, exp, err := svc.GenerateAccessToken(userID, "demo@safefam.app")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "demo@safefam.app", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	refresh, _, err := svc.GenerateRefreshToken(userID, "demo@safefam.app")
	require.NoError(t, err)

	claims, err = svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestJWTService_RejectsCrossedTokenTypes(t *testing.T) {
	svc := NewJWTService(Config{Secret: "same-secret"})
	userID := uuid.New()

	refresh, _, err := svc.GenerateRefreshToken(userID, "a@b.c")
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(Config{Secret: "s", AccessTTL: time.Minute}).(*jwtService)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateAccessToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, _, err := NewJWTService(Config{Secret: "one"}).GenerateAccessToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = NewJWTService(Config{Secret: "two"}).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
