// Package app wires the storefront's dependency graph and runs the HTTP
// server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imamaffandi/gloam-storefront/internal/admin"
	"github.com/imamaffandi/gloam-storefront/internal/auth"
	"github.com/imamaffandi/gloam-storefront/internal/config"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/gateway"
	handler "github.com/imamaffandi/gloam-storefront/internal/handler/http"
	"github.com/imamaffandi/gloam-storefront/internal/health"
	"github.com/imamaffandi/gloam-storefront/internal/httpclient"
	"github.com/imamaffandi/gloam-storefront/internal/imaging"
	"github.com/imamaffandi/gloam-storefront/internal/middleware"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	rdb          *redis.Client
	reconciler   *admin.Reconciler
	loginLimiter *middleware.RateLimiter
	httpServer   *http.Server
}

// NewApp creates an application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Redis holds admin drafts.
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

	// Backend API client: retries wrapped in a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.BackendTimeout
	backendClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("backend-api"),
		logger,
	)

	catalog := domain.Catalog{
		Categories: cfg.Categories,
		Sizes:      cfg.Sizes,
		Colors:     cfg.Colors,
	}

	products := gateway.NewProductGateway(cfg.BackendURL, backendClient, logger)
	blogs := gateway.NewBlogGateway(cfg.BackendURL, backendClient, logger)

	drafts := admin.NewDraftStore(rdb, cfg.DraftTTL)
	reconciler := admin.NewReconciler(products, blogs, logger)
	pipeline := imaging.NewPipeline(cfg.MaxImageBytes, logger)
	manager := admin.NewManager(drafts, products, blogs, pipeline, reconciler, catalog, logger)

	credentials := auth.NewCredentials(cfg.AdminUsername, cfg.AdminPasswordHash)
	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionExpiry)

	// Readiness gates on every dependency, not a single shared flag.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("backend-api", func(ctx context.Context) error {
		_, err := products.List(ctx)
		return err
	})

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, logger)

	router := handler.NewRouter(
		handler.NewPublicHandler(products, blogs, catalog, logger),
		handler.NewAuthHandler(credentials, sessions, logger),
		handler.NewAdminHandler(manager, reconciler, products, logger),
		sessions,
		healthHandler,
		handler.RouterConfig{
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			LoginLimiter:       loginLimiter,
		},
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		rdb:          rdb,
		reconciler:   reconciler,
		loginLimiter: loginLimiter,
		httpServer:   httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	// Warm both admin lists before serving; a cold backend is not fatal,
	// the lists load lazily on first use.
	warmCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if err := a.reconciler.Load(warmCtx); err != nil {
		a.logger.Warn("initial list load failed", slog.String("error", err.Error()))
	}
	cancel()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.loginLimiter.Stop()

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
