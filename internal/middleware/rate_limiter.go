package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/safefam/api/pkg/httputil"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// IdleTTL drops the limiter of a client that has been quiet this long.
	IdleTTL time.Duration
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	config   RateLimiterConfig
	limiters *gocache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:   config,
		limiters: gocache.New(config.IdleTTL, 2*config.IdleTTL),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		rl.limiters.Set(key, l, gocache.DefaultExpiration)
		return l
	}
	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	// Add fails if a concurrent request created one first; use theirs.
	if err := rl.limiters.Add(key, l, gocache.DefaultExpiration); err != nil {
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.Response{
				Status:  "error",
				Message: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
