package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decor-store/internal/auth"
	"decor-store/internal/config"
	"decor-store/internal/database"
	"decor-store/internal/handler"
	"decor-store/internal/middleware"
	"decor-store/internal/repository"
	"decor-store/internal/router"
	"decor-store/internal/service"
	"decor-store/internal/shipping"
	"decor-store/internal/validation"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
)

const sessionSweepInterval = time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting decor-store API server")

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrateOnStartup {
		if err := database.Migrate(cfg.Database.MigrationURL(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	rates, err := shipping.Load()
	if err != nil {
		return fmt.Errorf("failed to load shipping reference: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	sessionRepo := repository.NewSessionRepository(pool, logger)

	validate := validation.New()
	signer := auth.NewSigner(cfg.Session.Secret)

	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, rates, validate, logger)
	authService := service.NewAuthService(userRepo, sessionRepo, validate, cfg.Session.TTL(), logger)

	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, validate, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Shipping: handler.NewShippingHandler(rates, validate, logger),
		Auth:     handler.NewAuthHandler(authService, signer, cfg.Session.CookieSecure, logger),
	}, router.Options{
		CORSAllowedOrigin: cfg.Server.CORSAllowedOrigin,
		Session:           middleware.Session(signer, authService, logger),
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sweepSessions(gctx, sessionRepo, logger)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	return g.Wait()
}

// sweepSessions deletes expired login sessions until ctx is cancelled.
func sweepSessions(ctx context.Context, sessions repository.SessionRepository, logger zerolog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error().Err(err).Msg("failed to delete expired sessions")
				}
				continue
			}
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("expired sessions removed")
			}
		}
	}
}
