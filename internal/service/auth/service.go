package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/safefam/api/internal/email"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	"github.com/safefam/api/pkg/auth"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

const (
	resetTokenExpiry  = 1 * time.Hour
	verifyTokenExpiry = 48 * time.Hour
	bearerTokenType   = "Bearer"
)

// ContextResolver maps a user onto their family, if any.
type ContextResolver interface {
	ResolveContext(ctx context.Context, userID uuid.UUID) (*model.FamilyContext, error)
}

type Service struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	emailSvc email.Service
	resolver ContextResolver
	now      func() time.Time
}

func NewService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	resolver ContextResolver,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		emailSvc: emailSvc,
		resolver: resolver,
		now:      time.Now,
	}
}

// Register creates an unverified account and emails a verification link.
// A failed email does not fail registration.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, apperrors.BadRequest("passwords do not match", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.BadRequest(err.Error(), nil)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Email: req.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to send verification email")
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, emailAddr, password string) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}
	user.LastLoginAt = &now

	return s.generateTokens(user)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked before the pair is issued, so it can be redeemed at most once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.validateRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.revoke(ctx, claims, refreshToken); err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, err
	}
	return s.generateTokens(user)
}

// Logout revokes the refresh token. Access tokens simply expire.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.validateRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.revoke(ctx, claims, refreshToken)
}

// ForgotPassword never reveals whether the address has an account.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.Error().Err(err).Msg("failed to look up user for password reset")
		}
		return nil
	}

	token := uuid.NewString()
	if err := s.tokens.Store(ctx, &model.UserToken{
		UserID:    user.ID,
		Token:     token,
		Type:      model.TokenTypeReset,
		ExpiresAt: s.now().Add(resetTokenExpiry),
	}); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to store reset token")
		return nil
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, token); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to send password reset email")
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return apperrors.BadRequest(err.Error(), nil)
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.tokens.Consume(ctx, token, model.TokenTypeReset)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Consume(ctx, token, model.TokenTypeVerification)
	if err != nil {
		return err
	}
	if err := s.users.UpdateEmailVerified(ctx, userID, true); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("verified user could not be reloaded")
		return nil
	}
	if err := s.emailSvc.SendWelcome(ctx, user.Email, displayName(user.Email)); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to send welcome email")
	}
	return nil
}

// ResendVerification is silent for unknown addresses.
func (s *Service) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.EmailVerified {
		return apperrors.BadRequest("email already verified", nil)
	}
	return s.sendVerification(ctx, user)
}

// Me describes the caller and whether they still need to onboard.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.MeResponse, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, err
	}

	resp := &model.MeResponse{User: user}
	fc, err := s.resolver.ResolveContext(ctx, userID)
	switch {
	case apperrors.HasCode(err, apperrors.ErrOnboardingRequired):
		resp.OnboardingRequired = true
	case err != nil:
		return nil, err
	default:
		resp.Family = fc
	}
	return resp, nil
}

func (s *Service) validateRefresh(refreshToken string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) revoke(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	expiresAt := s.now().Add(resetTokenExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	fresh, err := s.tokens.Revoke(ctx, &model.UserToken{
		UserID:    claims.UserID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !fresh {
		return apperrors.Unauthorized(ErrTokenRevoked)
	}
	return nil
}

func (s *Service) sendVerification(ctx context.Context, user *model.User) error {
	token := uuid.NewString()
	if err := s.tokens.Store(ctx, &model.UserToken{
		UserID:    user.ID,
		Token:     token,
		Type:      model.TokenTypeVerification,
		ExpiresAt: s.now().Add(verifyTokenExpiry),
	}); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	return s.emailSvc.SendVerification(ctx, user.Email, token)
}

func (s *Service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, expiresAt, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, _, err := s.jwtSvc.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    bearerTokenType,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

func displayName(emailAddr string) string {
	if at := strings.Index(emailAddr, "@"); at > 0 {
		return emailAddr[:at]
	}
	return emailAddr
}
