package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims carried by both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	TokenType string    `json:"token_type"`
}

type JWTService interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID, email string) (string, time.Time, error)
	ValidateToken(token string) (*Claims, error)
	ValidateRefreshToken(token string) (*Claims, error)
}

type Config struct {
	Secret        string        `mapstructure:"secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	Issuer        string        `mapstructure:"issuer"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type jwtService struct {
	cfg Config
	now func() time.Time
}

func NewJWTService(cfg Config) JWTService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.Secret
	}
	return &jwtService{cfg: cfg, now: time.Now}
}

func (s *jwtService) GenerateAccessToken(userID uuid.UUID, email string) (string, time.Time, error) {
	return s.sign(userID, email, TokenTypeAccess, s.cfg.AccessTTL, s.cfg.Secret)
}

func (s *jwtService) GenerateRefreshToken(userID uuid.UUID, email string) (string, time.Time, error) {
	return s.sign(userID, email, TokenTypeRefresh, s.cfg.RefreshTTL, s.cfg.RefreshSecret)
}

func (s *jwtService) sign(userID uuid.UUID, email, tokenType string, ttl time.Duration, secret string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *jwtService) ValidateToken(token string) (*Claims, error) {
	return s.parse(token, TokenTypeAccess, s.cfg.Secret)
}

func (s *jwtService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.parse(token, TokenTypeRefresh, s.cfg.RefreshSecret)
}

func (s *jwtService) parse(token, tokenType, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
