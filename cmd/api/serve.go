package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/safefam/api/config"
	"github.com/safefam/api/internal/email"
	appointmenthandler "github.com/safefam/api/internal/handler/appointment"
	authhandler "github.com/safefam/api/internal/handler/auth"
	dashboardhandler "github.com/safefam/api/internal/handler/dashboard"
	familyhandler "github.com/safefam/api/internal/handler/family"
	"github.com/safefam/api/internal/handler/health"
	medicationhandler "github.com/safefam/api/internal/handler/medication"
	"github.com/safefam/api/internal/handler/prometheus"
	recordhandler "github.com/safefam/api/internal/handler/record"
	vaccinationhandler "github.com/safefam/api/internal/handler/vaccination"
	"github.com/safefam/api/internal/middleware"
	"github.com/safefam/api/internal/repository/postgres"
	"github.com/safefam/api/internal/router"
	appointmentservice "github.com/safefam/api/internal/service/appointment"
	authservice "github.com/safefam/api/internal/service/auth"
	dashboardservice "github.com/safefam/api/internal/service/dashboard"
	eventservice "github.com/safefam/api/internal/service/event"
	familyservice "github.com/safefam/api/internal/service/family"
	medicationservice "github.com/safefam/api/internal/service/medication"
	recordservice "github.com/safefam/api/internal/service/record"
	vaccinationservice "github.com/safefam/api/internal/service/vaccination"
	"github.com/safefam/api/pkg/auth"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/messaging"
	"github.com/safefam/api/pkg/messaging/redis"
	"github.com/safefam/api/pkg/security"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func setupLogger(cfg *config.Config) *logger.Logger {
	lc := cfg.Logging.ToLoggerConfig()
	l := logger.NewLogger(&lc)
	l.SetGlobal()
	return l
}

// newBroker connects to Redis when a URL is configured. Without one the
// API runs single-process on the in-memory broker and the returned client
// is nil.
func newBroker(ctx context.Context, cfg *config.Config, l *logger.Logger) (messaging.Broker, *goredis.Client, error) {
	if cfg.Redis.URL == "" {
		l.Warn("redis.url not set, using in-memory broker")
		return messaging.NewMemoryBroker(), nil, nil
	}
	client, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
	if err != nil {
		return nil, nil, err
	}
	return redis.NewRedisBroker(client, l.ZL), client, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	l := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := middleware.InstallValidators(); err != nil {
		return fmt.Errorf("failed to install validators: %w", err)
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	broker, redisClient, err := newBroker(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer broker.Close()

	emailSvc, err := email.NewFromConfig(ctx, cfg.Email, l.ZL)
	if err != nil {
		return err
	}

	// Repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)
	familyRepo := postgres.NewFamilyRepository(base)
	memberRepo := postgres.NewMemberRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	medicationLogRepo := postgres.NewMedicationLogRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	vaccinationRepo := postgres.NewVaccinationRepository(db)
	recordRepo := postgres.NewHealthRecordRepository(db)
	insightsRepo := postgres.NewInsightsRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.ToAuthConfig())
	familySvc := familyservice.NewService(familyRepo, memberRepo, medicationRepo, appointmentRepo, vaccinationRepo)
	authSvc := authservice.NewService(
		userRepo,
		tokenRepo,
		jwtSvc,
		security.NewBcryptHasher(cfg.Security.BcryptCost),
		emailSvc,
		familySvc,
	)
	eventSvc := eventservice.NewService(outboxRepo)

	var snapshotCache dashboardservice.SnapshotCache
	if redisClient != nil {
		snapshotCache = dashboardservice.NewRedisCache(redisClient, cfg.Dashboard.CacheTTL)
	}
	dashboardSvc := dashboardservice.NewService(dashboardservice.Repositories{
		Families:     familyRepo,
		Members:      memberRepo,
		Appointments: appointmentRepo,
		Medications:  medicationRepo,
		Insights:     insightsRepo,
	}, snapshotCache, cfg.Dashboard.FetchTimeout)

	go func() {
		if err := dashboardSvc.WatchEvents(ctx, broker); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("dashboard event watcher stopped")
		}
	}()

	// Handlers
	var redisPing health.Pinger
	if redisClient != nil {
		redisPing = health.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	handlers := router.Handlers{
		Auth:      authhandler.NewHandler(authSvc),
		Family:    familyhandler.NewHandler(familySvc),
		Dashboard: dashboardhandler.NewHandler(dashboardSvc),
		Health:    health.NewHandler(db, redisPing),
		Resources: []event.EventHandler{
			medicationhandler.NewHandler(medicationservice.NewService(medicationRepo, medicationLogRepo, memberRepo)),
			appointmenthandler.NewHandler(appointmentservice.NewService(appointmentRepo, memberRepo)),
			vaccinationhandler.NewHandler(vaccinationservice.NewService(vaccinationRepo, memberRepo)),
			recordhandler.NewHandler(recordservice.NewService(recordRepo, memberRepo)),
		},
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = prometheus.New()
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		middleware.NewFamilyMiddleware(familySvc),
		event.NewEventTrackerMiddleware(eventSvc),
		handlers,
		router.RouterConfig{
			Mode:             serverMode(cfg.Server.Mode),
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       middleware.DefaultCORSConfig(cfg.Security.AllowedOrigins),
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			MetricsPath:      cfg.Metrics.Path,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	l.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	l.Info("server exited properly")
	return nil
}

func serverMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
