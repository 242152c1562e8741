package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	authhandler "github.com/safefam/api/internal/handler/auth"
	dashboardhandler "github.com/safefam/api/internal/handler/dashboard"
	familyhandler "github.com/safefam/api/internal/handler/family"
	"github.com/safefam/api/internal/handler/health"
	"github.com/safefam/api/internal/handler/prometheus"
	"github.com/safefam/api/internal/middleware"
	"github.com/safefam/api/pkg/event"
)

// Handlers groups everything the router mounts. Resources are the
// family-scoped handlers whose mutations are tracked.
type Handlers struct {
	Auth      *authhandler.Handler
	Family    *familyhandler.Handler
	Dashboard *dashboardhandler.Handler
	Health    *health.Handler
	Metrics   *prometheus.Handler
	Resources []event.EventHandler
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	MetricsPath      string
}

type Router struct {
	engine       *gin.Engine
	config       RouterConfig
	auth         *middleware.AuthMiddleware
	family       *middleware.FamilyMiddleware
	eventTracker *event.EventTrackerMiddleware
	handlers     Handlers
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	family *middleware.FamilyMiddleware,
	eventTracker *event.EventTrackerMiddleware,
	handlers Handlers,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine := gin.New()

	r := &Router{
		engine:       engine,
		config:       config,
		auth:         auth,
		family:       family,
		eventTracker: eventTracker,
		handlers:     handlers,
	}

	// Validation sits inside ErrorHandler so binding errors get the
	// field-level body before the generic renderer sees them.
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Validation(middleware.DefaultValidationConfig()),
	)
	if handlers.Metrics != nil {
		engine.Use(handlers.Metrics.Middleware())
	}
	engine.Use(
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig(config.MaxBodyBytes)),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.setupOps()

	api := r.engine.Group("/api/v1")
	public := api.Group("")

	authed := api.Group("")
	authed.Use(r.auth.Authenticate())

	r.handlers.Auth.RegisterRoutes(public, authed)
	r.handlers.Family.RegisterOnboarding(authed, r.eventTracker)

	gated := authed.Group("")
	gated.Use(
		r.family.RequireFamilyContext(),
		middleware.Cache(middleware.NoStoreCacheConfig()),
	)
	r.setupFamilyRoutes(gated)
}

func (r *Router) setupOps() {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(r.engine)
	}
	if r.handlers.Metrics != nil {
		path := r.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, r.handlers.Metrics.Handler())
	}
}

func (r *Router) setupFamilyRoutes(rg *gin.RouterGroup) {
	r.handlers.Family.RegisterRoutesWithEvents(rg, r.eventTracker)
	r.handlers.Dashboard.RegisterRoutes(rg)
	for _, h := range r.handlers.Resources {
		h.RegisterRoutesWithEvents(rg, r.eventTracker)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
