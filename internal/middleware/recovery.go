package middleware

import (
	"errors"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/httputil"
)

// Recovery handles panics and logs them with the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("Request panic recovered")

				httputil.RespondWithError(c, apperrors.Internal(errors.New("panic recovered")))
			}
		}()
		c.Next()
	}
}
