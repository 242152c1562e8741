package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger logs one line per request. Bodies are never logged since they
// carry health data and credentials.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		msg := "Request processed"
		switch {
		case status >= 500:
			ev, msg = log.Error(), "Server error"
		case status >= 400:
			ev, msg = log.Warn(), "Client error"
		default:
			ev = log.Info()
		}

		ev.Str("request_id", c.GetString(ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
