package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
)

const uniqueViolation = "23505"

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, email_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	user.ID = uuid.New()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, email_verified, last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, notFound("user", "get user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, email_verified, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, notFound("user", "get user by email", err)
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectRows(result, "user")
}

func (r *userRepository) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET email_verified = $1, updated_at = NOW() WHERE id = $2
	`, verified, id)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	return expectRows(result, "user")
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = $1 WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
