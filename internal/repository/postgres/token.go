package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
)

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

// Store keeps one outstanding verification or reset token per user; a new
// one replaces the previous.
func (r *tokenRepository) Store(ctx context.Context, token *model.UserToken) error {
	if token.Type == model.TokenTypeRevoked {
		return fmt.Errorf("revoked tokens must be stored with Revoke")
	}
	token.CreatedAt = time.Now()

	query := `
		INSERT INTO user_tokens (user_id, token, type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, type) WHERE type <> 'revoked' DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at,
			used_at = NULL, created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query, token.UserID, token.Token, token.Type, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store %s token: %w", token.Type, err)
	}
	return nil
}

// Revoke inserts the revoked row under idx_user_tokens_revoked, so of any
// concurrent callers presenting the same token exactly one sees true.
func (r *tokenRepository) Revoke(ctx context.Context, token *model.UserToken) (bool, error) {
	token.Type = model.TokenTypeRevoked
	token.CreatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO user_tokens (user_id, token, type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) WHERE type = 'revoked' DO NOTHING
	`, token.UserID, token.Token, token.Type, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return n == 1, nil
}

func (r *tokenRepository) Consume(ctx context.Context, token string, tokenType model.TokenType) (uuid.UUID, error) {
	query := `
		UPDATE user_tokens
		SET used_at = NOW()
		WHERE token = $1
		AND type = $2
		AND expires_at > NOW()
		AND used_at IS NULL
		RETURNING user_id
	`
	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID, query, token, tokenType)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, apperrors.BadRequest("invalid or expired token", nil)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume token: %w", err)
	}
	return userID, nil
}

func (r *tokenRepository) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}
