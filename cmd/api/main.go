package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"green-kart/internal/config"
	"green-kart/internal/database"
	"green-kart/internal/gateway"
	"green-kart/internal/handler"
	"green-kart/internal/reconcile"
	"green-kart/internal/redisx"
	"green-kart/internal/repository"
	"green-kart/internal/router"
	"green-kart/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting green-kart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize payment gateway adapter
	gatewayClient := gateway.NewClient(gateway.ClientConfig{
		BaseURL:    cfg.Gateway.BaseURL,
		Timeout:    time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.Gateway.MaxRetries,
	}, logger)
	verifier := gateway.NewVerifier(cfg.Gateway.WebhookSecret)

	// Optional Redis for webhook event dedup
	var dedupClient *redis.Client
	if cfg.Redis.Enabled {
		dedupClient = redisx.New(cfg.Redis.Addr)
		if err := dedupClient.Ping(ctx).Err(); err != nil {
			logger.Warn().
				Err(err).
				Str("addr", cfg.Redis.Addr).
				Msg("redis unreachable, webhook dedup disabled")
			dedupClient = nil
		} else {
			defer dedupClient.Close()
		}
	} else {
		logger.Info().Msg("webhook event dedup disabled (redis not enabled)")
	}

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, logger)
	orderService := service.NewOrderService(orderRepo, catalogRepo, gatewayClient, logger)
	reconciler := reconcile.NewReconciler(orderService, dedupClient, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(catalogService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	webhookHandler := handler.NewWebhookHandler(verifier, reconciler, logger)

	// Initialize router
	mux := router.New(productHandler, orderHandler, webhookHandler, cfg.Auth, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
