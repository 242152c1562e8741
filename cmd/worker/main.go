package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/safefam/api/config"
	"github.com/safefam/api/internal/email"
	"github.com/safefam/api/internal/repository/postgres"
	eventservice "github.com/safefam/api/internal/service/event"
	"github.com/safefam/api/internal/service/reminder"
	internalworker "github.com/safefam/api/internal/worker"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/messaging"
	"github.com/safefam/api/pkg/messaging/redis"
	"github.com/safefam/api/pkg/metrics"
	"github.com/safefam/api/pkg/worker"
)

var (
	configFile string
	listenAddr string
)

func main() {
	root := &cobra.Command{
		Use:           "safefam-worker",
		Short:         "Publishes outbox events, cleans up old rows and sends reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "path to config file (default: ./config.yml)")
	root.Flags().StringVar(&listenAddr, "listen", ":8081", "address for the health and metrics endpoints")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("worker failed")
		os.Exit(1)
	}
}

func setupOps(l *logger.Logger, reg *prometheus.Registry, metricsPath string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: listenAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error(err, "ops server failed")
		}
	}()
	return srv
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	lc := cfg.Logging.ToLoggerConfig()
	l := logger.NewLogger(&lc).WithFields(map[string]interface{}{"component": "worker"})
	l.SetGlobal()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var broker messaging.Broker
	if cfg.Redis.URL == "" {
		l.Warn("redis.url not set, outbox events will not leave this process")
		broker = messaging.NewMemoryBroker()
	} else {
		client, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
		if err != nil {
			return err
		}
		broker = redis.NewRedisBroker(client, l.ZL)
	}
	defer broker.Close()

	emailSvc, err := email.NewFromConfig(ctx, cfg.Email, l.ZL)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New("safefam_worker", reg)

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	reminderRepo := postgres.NewReminderRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		l,
		m,
	)
	cleanup := internalworker.NewOutboxCleanupWorker(
		outboxRepo,
		tokenRepo,
		cfg.Outbox.Retention,
		cfg.Outbox.CleanupInterval,
		l,
		m,
	)

	var wg sync.WaitGroup
	start := func(name string, fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Info(fmt.Sprintf("%s started", name))
			fn(ctx)
			l.Info(fmt.Sprintf("%s stopped", name))
		}()
	}

	start("outbox processor", processor.Start)
	start("outbox cleanup", cleanup.Start)
	if cfg.Reminder.Enabled {
		reminderSvc := reminder.NewService(
			reminderRepo,
			notificationRepo,
			emailSvc,
			eventservice.NewService(outboxRepo),
			m,
			l,
		)
		start("reminder worker", internalworker.NewReminderWorker(reminderSvc, cfg.Reminder.Interval, l).Start)
	}

	srv := setupOps(l, reg, cfg.Metrics.Path)

	<-ctx.Done()
	l.Info("shutting down")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
