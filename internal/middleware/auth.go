package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/safefam/api/pkg/auth"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/httputil"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

var (
	errMissingAuthHeader = errors.New("missing authorization header")
	errInvalidAuthFormat = errors.New("invalid authorization format")
	errInvalidToken      = errors.New("invalid or expired token")
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate verifies the bearer access token and puts the caller's id
// and email on the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errMissingAuthHeader))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errInvalidAuthFormat))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(errInvalidToken))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
