package repotest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	apperrors "github.com/safefam/api/pkg/errors"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.s.Users {
		if u.Email == user.Email {
			return apperrors.Conflict("an account with this email already exists")
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = r.s.stamp()
	user.UpdatedAt = user.CreatedAt
	c := *user
	r.s.Users[c.ID] = &c
	return nil
}

func (r *userRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	u, ok := r.s.Users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	c := *u
	return &c, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.Users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (r *userRepo) update(id uuid.UUID, fn func(u *model.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	u, ok := r.s.Users[id]
	if !ok {
		return apperrors.NotFound("user", nil)
	}
	fn(u)
	u.UpdatedAt = r.s.stamp()
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (r *userRepo) UpdateEmailVerified(_ context.Context, id uuid.UUID, verified bool) error {
	return r.update(id, func(u *model.User) { u.EmailVerified = verified })
}

func (r *userRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, func(u *model.User) { u.LastLoginAt = &at })
}

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Store(_ context.Context, token *model.UserToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	token.CreatedAt = r.s.stamp()
	c := *token
	for i, t := range r.s.Tokens {
		if t.UserID == token.UserID && t.Type == token.Type {
			r.s.Tokens[i] = &c
			return nil
		}
	}
	r.s.Tokens = append(r.s.Tokens, &c)
	return nil
}

func (r *tokenRepo) Consume(_ context.Context, token string, tokenType model.TokenType) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return uuid.Nil, r.s.Err
	}

	now := r.s.Now()
	for _, t := range r.s.Tokens {
		if t.Token == token && t.Type == tokenType && t.UsedAt == nil && !t.Expired(now) {
			t.UsedAt = &now
			return t.UserID, nil
		}
	}
	return uuid.Nil, apperrors.BadRequest("invalid or expired token", nil)
}

func (r *tokenRepo) Revoke(_ context.Context, token *model.UserToken) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}

	for _, t := range r.s.Tokens {
		if t.Token == token.Token && t.Type == model.TokenTypeRevoked {
			return false, nil
		}
	}
	token.Type = model.TokenTypeRevoked
	token.CreatedAt = r.s.stamp()
	c := *token
	r.s.Tokens = append(r.s.Tokens, &c)
	return true, nil
}

func (r *tokenRepo) DeleteExpiredBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}

	kept := r.s.Tokens[:0]
	var n int64
	for _, t := range r.s.Tokens {
		if t.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	r.s.Tokens = kept
	return n, nil
}
