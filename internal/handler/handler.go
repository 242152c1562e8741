// Package handler holds the helpers shared by the resource handlers in its
// subpackages. Errors are attached with c.Error and rendered by the error
// middleware.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/safefam/api/internal/middleware"
	apperrors "github.com/safefam/api/pkg/errors"
)

// Fail attaches err to the request and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// BindJSON binds the body into obj. On failure the binding error is handed
// to the validation middleware and false is returned.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		c.Abort()
		return false
	}
	return true
}

// ParseID reads a uuid path parameter.
func ParseID(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		Fail(c, apperrors.BadRequest("invalid "+resource+" ID", nil))
		return uuid.Nil, false
	}
	return id, true
}

// OptionalUUID reads an optional uuid query parameter.
func OptionalUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		Fail(c, apperrors.BadRequest("invalid "+name, nil))
		return nil, false
	}
	return &id, true
}

// FamilyID is the caller's family, resolved by the family gate.
func FamilyID(c *gin.Context) uuid.UUID {
	if fc := middleware.Family(c); fc != nil {
		return fc.FamilyID
	}
	return uuid.Nil
}
