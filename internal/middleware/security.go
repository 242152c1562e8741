package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

type SecurityConfig struct {
	HSTS                  bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	CSPDirectives         []string
}

// DefaultSecurityConfig suits a JSON API: nothing may be framed or loaded.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTS:                  true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "no-referrer",
		CSPDirectives: []string{
			"default-src 'none'",
			"frame-ancestors 'none'",
		},
	}
}

func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	hsts := ""
	if config.HSTS {
		hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}
	csp := strings.Join(config.CSPDirectives, "; ")

	return func(c *gin.Context) {
		if hsts != "" {
			c.Header("Strict-Transport-Security", hsts)
		}
		c.Header("X-Frame-Options", config.FrameOptions)
		c.Header("X-Content-Type-Options", config.ContentTypeOptions)
		c.Header("Referrer-Policy", config.ReferrerPolicy)
		if csp != "" {
			c.Header("Content-Security-Policy", csp)
		}

		c.Next()
	}
}
