package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/civicworks/facilitycare/internal/adapters/cache"
	"github.com/civicworks/facilitycare/internal/adapters/database"
	"github.com/civicworks/facilitycare/internal/adapters/events"
	"github.com/civicworks/facilitycare/internal/adapters/storage"
	"github.com/civicworks/facilitycare/internal/api/handlers"
	"github.com/civicworks/facilitycare/internal/api/routes"
	"github.com/civicworks/facilitycare/internal/application/services"
	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/clients/postgres"
	"github.com/civicworks/facilitycare/internal/infrastructure/clients/redis"
	"github.com/civicworks/facilitycare/internal/infrastructure/observability"
	"github.com/civicworks/facilitycare/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional: without it the service runs uncached and without
	// real-time events.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache and events")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	// Attachment storage is optional: uploads are rejected when no bucket is
	// configured.
	var attachmentSink providers.AttachmentSink
	if cfg.Storage.Bucket != "" {
		sink, err := storage.NewS3Sink(ctx, &cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize attachment storage")
		} else {
			attachmentSink = sink
			log.Info().Str("bucket", cfg.Storage.Bucket).Msg("attachment storage initialized")
		}
	}

	// Adapters

	var facilityAdapter repositories.FacilityRepository = database.NewFacilityAdapter(pgClient)
	if cacheProvider != nil {
		facilityAdapter = database.NewCachedFacilityAdapter(facilityAdapter, cacheProvider)
	}
	issueAdapter := database.NewIssueAdapter(pgClient)
	scheduleAdapter := database.NewScheduleAdapter(pgClient)
	attachmentAdapter := database.NewAttachmentAdapter(pgClient)
	uow := database.NewUnitOfWork(pgClient, cacheProvider)

	// Services

	synchronizer := services.NewStatusSynchronizer(metrics)
	facilityService := services.NewFacilityService(facilityAdapter, eventBus)
	issueService := services.NewIssueService(uow, issueAdapter, facilityAdapter, synchronizer, eventBus, metrics)
	scheduleService := services.NewScheduleService(
		uow, scheduleAdapter, facilityAdapter, attachmentAdapter,
		attachmentSink, synchronizer, eventBus, metrics,
	)

	// Handlers and router

	router := routes.NewRouter(
		handlers.NewFacilityHandler(facilityService),
		handlers.NewIssueHandler(issueService),
		handlers.NewScheduleHandler(scheduleService),
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
