package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID reuses an incoming X-Request-ID or mints one and echoes it
// back. The request context carries a zerolog logger tagged with the id,
// so zerolog.Ctx(ctx) in services logs it too.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)

		ctxLogger := log.With().Str(ContextRequestID, rid).Logger()
		c.Request = c.Request.WithContext(ctxLogger.WithContext(c.Request.Context()))
		c.Next()
	}
}
