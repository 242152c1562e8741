package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CacheConfig struct {
	MaxAge         int
	Private        bool
	NoStore        bool
	MustRevalidate bool
	Vary           []string
}

// NoStoreCacheConfig keeps health data out of browser and proxy caches.
func NoStoreCacheConfig() CacheConfig {
	return CacheConfig{
		Private: true,
		NoStore: true,
		Vary:    []string{"Authorization"},
	}
}

func Cache(config CacheConfig) gin.HandlerFunc {
	directives := make([]string, 0, 4)
	if config.Private {
		directives = append(directives, "private")
	} else {
		directives = append(directives, "public")
	}
	if config.NoStore {
		directives = append(directives, "no-store")
	} else if config.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}
	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	cacheControl := strings.Join(directives, ", ")
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Header("Cache-Control", "no-store")
		} else {
			c.Header("Cache-Control", cacheControl)
			if config.NoStore {
				c.Header("Pragma", "no-cache")
			}
		}
		if vary != "" {
			c.Header("Vary", vary)
		}

		c.Next()
	}
}
