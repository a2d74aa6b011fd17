// Package app wires the storefront BFF together from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qkart/storefront/config"
	httpDelivery "github.com/qkart/storefront/internal/delivery/http"
	"github.com/qkart/storefront/internal/infrastructure/session"
	"github.com/qkart/storefront/internal/infrastructure/shopapi"
	"github.com/qkart/storefront/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired storefront server
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	sessions session.Store
	views    *usecase.ViewRegistry
	router   *gin.Engine
}

// NewShopClient builds the shop API client described by cfg
func NewShopClient(cfg *config.Config, logger *zap.Logger) *shopapi.Client {
	client := shopapi.NewClient(cfg.Shop.BaseURL, shopapi.Options{
		Timeout:   cfg.Shop.Timeout,
		RateLimit: cfg.Shop.RateLimit,
		Burst:     cfg.Shop.Burst,
		Logger:    logger,
	})
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}
	return client
}

// ViewOptions derives storefront view options from cfg
func ViewOptions(cfg *config.Config) usecase.ViewOptions {
	return usecase.ViewOptions{
		Debounce:         cfg.Search.Debounce,
		SearchTimeout:    cfg.Shop.Timeout,
		MaxSnack:         cfg.Notifications.MaxSnack,
		PreventDuplicate: cfg.Notifications.PreventDuplicate,
	}
}

// New builds the server. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	sessions, err := session.Open(ctx, cfg.Session.Type, cfg.Session.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	svc := usecase.NewStorefrontService(NewShopClient(cfg, logger), logger)
	views := usecase.NewViewRegistry(svc, ViewOptions(cfg), cfg.Session.TTL)
	handler := httpDelivery.NewHandler(views, sessions, cfg.Session.TTL, logger)

	logger.Info("storefront configured",
		zap.String("environment", cfg.Server.Environment),
		zap.String("shop_base_url", cfg.Shop.BaseURL),
		zap.String("session_store", cfg.Session.Type),
		zap.Duration("search_debounce", cfg.Search.Debounce))

	return &App{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		views:    views,
		router:   httpDelivery.SetupRouter(cfg, handler, logger),
	}, nil
}

// Handler returns the HTTP handler of the app
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the views and the session store
func (a *App) Close() error {
	a.views.Close()
	return a.sessions.Close()
}
