package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mediplus/clinic-platform/cmd/mainconfig"
	"github.com/mediplus/clinic-platform/internal/api/router"
	"github.com/mediplus/clinic-platform/internal/appointments"
	"github.com/mediplus/clinic-platform/internal/auth"
	appconfig "github.com/mediplus/clinic-platform/internal/config"
	"github.com/mediplus/clinic-platform/internal/doctors"
	"github.com/mediplus/clinic-platform/internal/matching"
	"github.com/mediplus/clinic-platform/internal/notify"
	"github.com/mediplus/clinic-platform/internal/observability/metrics"
	"github.com/mediplus/clinic-platform/internal/patients"
	"github.com/mediplus/clinic-platform/internal/prescriptions"
	"github.com/mediplus/clinic-platform/internal/schedule"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	defer pool.Close()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed to build token issuer", "error", err)
		os.Exit(1)
	}

	// Metrics registry shared by every service.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)
	matchingMetrics := metrics.NewMatchingMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Stores
	patientStore := patients.NewStore(pool)
	doctorStore := doctors.NewStore(pool)
	scheduleRegistry := schedule.NewRegistry(pool)
	appointmentStore := appointments.NewStore(pool)
	prescriptionStore := prescriptions.NewStore(pool)

	// Notifications
	notifier := notify.NewService(newEmailSender(ctx, cfg, logger), patientStore, logger)

	// Services
	patientService := patients.NewService(patientStore, logger)
	appointmentService := appointments.NewService(appointmentStore, scheduleRegistry, notifier, bookingMetrics, logger)
	prescriptionService := prescriptions.NewService(appointmentStore, prescriptionStore, bookingMetrics, logger)

	redisClient := newRedisClient(ctx, cfg, logger)

	// Handlers
	patientsHandler := patients.NewHandler(patientService, issuer, logger)
	doctorsHandler := doctors.NewHandler(doctorStore, issuer, logger)
	appointmentsHandler := appointments.NewHandler(appointmentService, logger)
	prescriptionsHandler := prescriptions.NewHandler(prescriptionService, logger)
	matchingHandler := setupMatching(ctx, cfg, doctorStore, appointmentService, redisClient, matchingMetrics, logger)

	routerCfg := &router.Config{
		Logger:               logger,
		Issuer:               issuer,
		PatientsHandler:      patientsHandler,
		DoctorsHandler:       doctorsHandler,
		AppointmentsHandler:  appointmentsHandler,
		PrescriptionsHandler: prescriptionsHandler,
		MatchingHandler:      matchingHandler,
		MetricsHandler:       metricsHandler,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// connectPostgresPool returns nil when no database URL is configured or
// the pool cannot be created.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// newRedisClient returns nil when Redis is not configured or not
// reachable; callers treat a nil client as caching disabled.
func newRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, match caching disabled", "error", err)
		return nil
	}
	return client
}

// newEmailSender selects the delivery backend from EMAIL_PROVIDER,
// falling back to the stub sender when the provider is missing
// credentials.
func newEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, using stub sender")
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("failed to load AWS config, using stub sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("ses selected but not configured, using stub sender")
	}
	return notify.NewStubEmailSender(logger)
}

// setupMatching wires the Gemini-backed recommendation path. Returns nil
// when no API key is configured, which disables the endpoint.
func setupMatching(ctx context.Context, cfg *appconfig.Config, store *doctors.Store, availability matching.AvailabilitySource, redisClient *redis.Client, m *metrics.MatchingMetrics, logger *logging.Logger) *matching.Handler {
	if cfg.GeminiAPIKey == "" {
		logger.Info("GEMINI_API_KEY not set, doctor matching disabled")
		return nil
	}

	matcher, err := matching.NewGeminiMatcher(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, cfg.GeminiEmbedModelID)
	if err != nil {
		logger.Error("failed to create gemini matcher, doctor matching disabled", "error", err)
		return nil
	}

	directory := doctors.NewDirectory(store, matcher, logger)
	if err := directory.Refresh(ctx); err != nil {
		logger.Warn("initial doctor index refresh failed", "error", err)
	}
	go directory.Run(ctx, cfg.DirectoryRefreshInterval)

	cache := matching.NewCache(redisClient, cfg.MatchCacheTTL, logger)
	engine := matching.NewEngine(directory, matcher, matcher, logger)
	service := matching.NewService(engine, cache, availability, m, logger)
	return matching.NewHandler(service, logger)
}
