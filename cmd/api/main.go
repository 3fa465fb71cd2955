package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decor-shop/internal/auth"
	"decor-shop/internal/cache"
	"decor-shop/internal/catalog"
	"decor-shop/internal/config"
	"decor-shop/internal/database"
	"decor-shop/internal/events"
	"decor-shop/internal/handler"
	"decor-shop/internal/metrics"
	"decor-shop/internal/pricing"
	"decor-shop/internal/repository"
	"decor-shop/internal/router"
	"decor-shop/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting decor-shop API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	productCache := newCache(ctx, cfg.Redis, logger)
	defer productCache.Close()

	publisher, err := events.New(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()

	appMetrics := metrics.New()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	if err := importCatalog(ctx, cfg, productRepo, productCache, logger); err != nil {
		return err
	}

	calculator := pricing.NewCalculator(pricing.Config{
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		StandardShippingCost:  cfg.Pricing.StandardShippingCost,
		TaxRate:               cfg.Pricing.TaxRate,
	})

	// Initialize services
	productService := service.NewProductService(productRepo, productCache, logger)
	cartService := service.NewCartService(cartRepo, productRepo, calculator, logger)
	orderService := service.NewOrderService(
		orderRepo,
		productRepo,
		cartRepo,
		calculator,
		productCache,
		publisher,
		appMetrics,
		cfg.Orders.StrictTransitions,
		logger,
	)

	mux := router.New(
		router.Handlers{
			Product: handler.NewProductHandler(productService, logger),
			Cart:    handler.NewCartHandler(cartService, logger),
			Order:   handler.NewOrderHandler(orderService, logger),
			Health:  handler.NewHealthHandler(pool, logger),
		},
		router.Options{
			Tokens:         tokens,
			Metrics:        appMetrics.Middleware,
			MetricsHandler: appMetrics.Handler(),
		},
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCache connects to Redis when enabled. An unreachable Redis is not fatal;
// the service then runs uncached.
func newCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) cache.Cache {
	if !cfg.Enabled {
		logger.Info().Msg("product cache disabled")
		return cache.NewNop()
	}

	redisCache, err := cache.NewRedis(ctx, cfg, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("failed to connect to redis, running without product cache")
		return cache.NewNop()
	}

	return redisCache
}

// importCatalog loads the configured product feeds before the server starts.
func importCatalog(
	ctx context.Context,
	cfg *config.Config,
	productRepo repository.ProductRepository,
	productCache cache.Cache,
	logger zerolog.Logger,
) error {
	if len(cfg.Catalog.FeedPaths) == 0 {
		return nil
	}

	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.Loader

	if cfg.S3.Enabled {
		loader, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else {
		logger.Info().Msg("using local file system for catalog feeds (S3 disabled)")
	}

	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Loader != nil, logger)
	importer := catalog.NewImporter(loader, productRepo, productCache, logger)

	count, err := importer.Import(ctx, cfg.Catalog.FeedPaths)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	logger.Info().Int("products", count).Msg("catalog imported")
	return nil
}
