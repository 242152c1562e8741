package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/httputil"
)

const ContextFamily = "family_context"

var errNoSession = errors.New("authentication required")

type FamilyResolver interface {
	ResolveContext(ctx context.Context, userID uuid.UUID) (*model.FamilyContext, error)
}

type FamilyMiddleware struct {
	resolver FamilyResolver
}

func NewFamilyMiddleware(resolver FamilyResolver) *FamilyMiddleware {
	return &FamilyMiddleware{resolver: resolver}
}

// RequireFamilyContext gates family data. Callers without a session get a
// 401 pointing at login; callers without a family get a 403 pointing at
// onboarding.
func (m *FamilyMiddleware) RequireFamilyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(errNoSession))
			return
		}

		fc, err := m.resolver.ResolveContext(c.Request.Context(), userID)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextFamily, fc)
		c.Set(event.FamilyIDKey, fc.FamilyID)
		c.Next()
	}
}

// Family returns the context resolved by RequireFamilyContext.
func Family(c *gin.Context) *model.FamilyContext {
	if v, ok := c.Get(ContextFamily); ok {
		if fc, ok := v.(*model.FamilyContext); ok {
			return fc
		}
	}
	return nil
}
