package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safefam/api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status   string      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Code     string      `json:"code,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError sends an error response. Write failures are surfaced
// verbatim; anything that is not an AppError is reported as a 500.
func RespondWithError(c *gin.Context, err error) {
	status := StatusCode(err)

	resp := Response{Status: "error", Message: err.Error()}
	if appErr, ok := errors.As(err); ok {
		switch appErr.Code {
		case errors.ErrUnauthorized:
			resp.Redirect = "/auth/login"
		case errors.ErrOnboardingRequired:
			resp.Code = "onboarding_required"
			resp.Redirect = "/onboarding"
		case errors.ErrInternal:
			resp.Message = appErr.Message
		}
	}

	c.AbortWithStatusJSON(status, resp)
}

// StatusCode resolves the HTTP status for err.
func StatusCode(err error) int {
	if appErr, ok := errors.As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}
