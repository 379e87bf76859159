package cmd

import (
	"context"
	"fmt"

	"wagerhub/application"
	"wagerhub/config"
	"wagerhub/database"
	"wagerhub/domain/interfaces"
	"wagerhub/domain/services"
	"wagerhub/infrastructure"
	"wagerhub/infrastructure/observability"
	"wagerhub/infrastructure/payments"
	"wagerhub/server"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the platform API
func Run(ctx context.Context) error {
	cfg := config.Get()
	cfg.ConfigureLogging()
	log.WithField("environment", cfg.Environment).Info("Starting wagerhub...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.PoolConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// NATS is optional, events stay in-process without it
	subjectMapper := infrastructure.NewEventSubjectMapper()
	var messagePublisher infrastructure.MessagePublisher
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()
		if err := natsClient.EnsureStream(subjectMapper.GetAllSubjects()); err != nil {
			return fmt.Errorf("failed to ensure NATS stream: %w", err)
		}
		messagePublisher = natsClient
	} else {
		log.Info("NATS_SERVERS not set, publishing events in-process only")
	}

	// Redis backs the token rate cache and the login rate limiter when configured
	var (
		rdb          *redis.Client
		rateCache    interfaces.TokenRateCache
		loginLimiter server.RateLimiter
	)
	if cfg.RedisURL != "" {
		rdb, err = infrastructure.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Error("Error closing redis connection")
			}
		}()
		rateCache = infrastructure.NewRedisTokenRateCache(rdb, cfg.TokenRateCacheTTL)
		loginLimiter = infrastructure.NewRedisRateLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
		log.Info("Redis connection established successfully")
	} else {
		loginLimiter = server.NewMemoryRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
		log.Info("REDIS_URL not set, token rate cache disabled")
	}

	// Metrics stay no-ops unless OTEL_ENABLED is set
	metrics := observability.NewMetricsProvider(observability.MetricsConfig{
		Enabled:        cfg.OTelEnabled,
		ServiceName:    cfg.OTelServiceName,
		Environment:    cfg.Environment,
		ExporterType:   cfg.OTelExporterType,
		OTLPEndpoint:   cfg.OTelOTLPEndpoint,
		ExportInterval: cfg.OTelExportInterval,
	})
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize event publishing and unit of work factory
	eventBus := infrastructure.NewEventBus()
	eventPublisher := infrastructure.NewNATSEventPublisher(eventBus, messagePublisher, subjectMapper)
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)

	runner := application.NewServiceRunner(uowFactory, services.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL), rateCache)
	application.RegisterApplicationSubscriptions(uowFactory, runner)
	application.RegisterMetricsSubscriptions(uowFactory, metrics)

	paymentWorkflow := application.NewPaymentWorkflow(runner, payments.NewDefaultRegistry(cfg.PaymentProviderLatency)).
		WithMetrics(metrics)

	srv, err := server.New(cfg.HTTPAddr, server.Dependencies{
		Runner:         runner,
		Payments:       paymentWorkflow,
		LoginLimiter:   loginLimiter,
		Metrics:        metrics,
		TrustedProxies: cfg.TrustedProxies,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return err
	}

	// Background jobs
	scheduler, err := application.NewScheduler(runner, cfg.SchedulerTimezone)
	if err != nil {
		return err
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			scheduler.Stop()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	scheduler.Stop()

	// Let in-flight event handlers finish before the pool closes
	handlersDone := make(chan struct{})
	go func() {
		eventBus.Wait()
		close(handlersDone)
	}()
	select {
	case <-handlersDone:
		log.Info("Shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	}

	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to flush metrics")
	}

	return nil
}
