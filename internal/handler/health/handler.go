package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sqlx.DB and by the redis client wrapper.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type Handler struct {
	db      Pinger
	redis   Pinger
	timeout time.Duration
}

// NewHandler builds the probe handler. redis may be nil when the in-process
// broker is in use.
func NewHandler(db Pinger, redis Pinger) *Handler {
	return &Handler{
		db:      db,
		redis:   redis,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health/live", h.LivenessCheck)
	r.GET("/health/ready", h.ReadinessCheck)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": "database connection failed",
		})
		return
	}
	if h.redis != nil {
		if err := h.redis.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "DOWN",
				"reason": "redis connection failed",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
