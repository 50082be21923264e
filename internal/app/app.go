package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artiqmind/Lookali/internal/catalog"
	"github.com/artiqmind/Lookali/internal/config"
	"github.com/artiqmind/Lookali/internal/event"
	"github.com/artiqmind/Lookali/internal/geo"
	handler "github.com/artiqmind/Lookali/internal/handler/http"
	"github.com/artiqmind/Lookali/internal/ranking"
	"github.com/artiqmind/Lookali/internal/search"
	"github.com/artiqmind/Lookali/internal/store"
	"github.com/artiqmind/Lookali/pkg/health"
	"github.com/artiqmind/Lookali/pkg/httpclient"
	pkgkafka "github.com/artiqmind/Lookali/pkg/kafka"
	"github.com/artiqmind/Lookali/pkg/tracing"
)

// App wires together all dependencies and runs the search service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	consumers       []*pkgkafka.Consumer
	httpServer      *http.Server
	redisClient     *redis.Client
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracingCfg := tracing.DefaultConfig("search-service")
	tracingCfg.Enabled = cfg.OTELEnabled
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Environment = cfg.Environment
	tracingShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Core search state.
	idx := geo.New(cfg.GeoCellSizeDeg)
	listingStore := store.New()
	ranker := ranking.NewEngine(ranking.Weights{
		TextMatch: cfg.WeightTextMatch,
		Proximity: cfg.WeightProximity,
		Rating:    cfg.WeightRating,
		Promotion: cfg.WeightPromotion,
	})

	searchService := search.NewService(idx, listingStore, ranker, search.Config{
		MaxRadiusKm:         cfg.MaxRadiusKm,
		DefaultPageSize:     cfg.DefaultPageSize,
		MaxPageSize:         cfg.MaxPageSize,
		MaxPromotedFraction: cfg.MaxPromotedFraction,
	}, logger)
	catalogService := catalog.NewService(listingStore, idx, logger)

	// Reindexer pulls the full catalog over HTTP behind a circuit breaker.
	httpClient := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(httpClient,
		httpclient.DefaultCircuitBreakerConfig("catalog-export"), logger)
	reindexer := catalog.NewReindexer(catalogService, cbClient, cfg.CatalogServiceURL, cfg.ReindexPageSize, logger)

	// Redis-backed event deduplication when configured, in-memory otherwise.
	var redisClient *redis.Client
	var idemStore pkgkafka.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		idemStore = pkgkafka.NewRedisIdempotencyStore(redisClient, cfg.EventDedupTTL)
		logger.Info("redis event deduplication enabled", slog.String("addr", cfg.RedisAddr))
	} else {
		idemStore = pkgkafka.NewMemoryIdempotencyStore(cfg.EventDedupTTL)
	}

	// Kafka consumers for catalog change events.
	var consumers []*pkgkafka.Consumer
	if cfg.KafkaConsumeEvents {
		listingHandler := event.NewListingHandler(catalogService, logger)
		dedupedHandler := pkgkafka.IdempotentHandler(idemStore, listingHandler.Handle, logger)

		topics := []string{
			event.TopicListingCreated,
			event.TopicListingUpdated,
			event.TopicListingDeleted,
		}
		for _, topic := range topics {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.KafkaGroupID,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}
			consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, dedupedHandler, logger))
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", len(topics)),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	if cfg.KafkaConsumeEvents {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := handler.NewRouter(searchService, catalogService, reindexer, healthHandler, handler.RouterConfig{
		Environment:        cfg.Environment,
		JWTSecret:          cfg.JWTSecret,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		consumers:       consumers,
		httpServer:      httpServer,
		redisClient:     redisClient,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
