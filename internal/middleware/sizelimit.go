package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safefam/api/pkg/httputil"
)

type SizeLimitConfig struct {
	MaxBodySize   int64
	MaxHeaderSize int
	SkipPaths     []string
}

func DefaultSizeLimitConfig(maxBody int64) SizeLimitConfig {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return SizeLimitConfig{
		MaxBodySize:   maxBody,
		MaxHeaderSize: 1 << 14,
	}
}

// SizeLimit rejects oversized requests up front and caps the body reader
// for requests that do not declare a length.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		if c.Request.ContentLength > config.MaxBodySize {
			tooLarge(c, fmt.Sprintf("request body exceeds %d bytes", config.MaxBodySize))
			return
		}

		headerSize := 0
		for name, values := range c.Request.Header {
			headerSize += len(name)
			for _, value := range values {
				headerSize += len(value)
			}
		}
		if headerSize > config.MaxHeaderSize {
			tooLarge(c, fmt.Sprintf("request headers exceed %d bytes", config.MaxHeaderSize))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		}
		c.Next()
	}
}

func tooLarge(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.Response{Status: "error", Message: msg})
}
