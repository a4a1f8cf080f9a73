package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/attribution"
	"github.com/SergeiKhy/utm-tracker/internal/auth"
	"github.com/SergeiKhy/utm-tracker/internal/handler"
	"github.com/SergeiKhy/utm-tracker/internal/middleware"
	"github.com/SergeiKhy/utm-tracker/internal/repository"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the redirect endpoint and the click workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	if err != nil {
		return err
	}

	s, err := a.openStores(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()
	logger.Info("Connected to PostgreSQL and Redis")

	if err := repository.Migrate(ctx, s.db); err != nil {
		return err
	}

	// Инициализация сервисов
	linkService := a.linkService(s)
	clickService := service.NewClickService(s.clicks, s.links, logger)
	catalogService := service.NewCatalogService(s.catalogs, logger)

	// Инициализация процессора кликов (Worker Pool)
	clickProcessor := service.NewClickProcessor(
		clickService,
		attribution.NewIPAPIClient(cfg.Geo.Endpoint, cfg.Geo.Timeout),
		service.ClickProcessorConfig{
			Workers:     cfg.Analytics.Workers,
			BufferSize:  cfg.Analytics.BufferSize,
			EnqueueWait: cfg.Analytics.EnqueueWait,
		},
		logger,
	)
	clickProcessor.Start()

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})
	defer rateLimiter.Stop()

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("API_KEYS is empty, POST /api/v1/clicks will reject every request")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Настройка роутера
	router := handler.NewRouter(handler.Services{
		Links:     linkService,
		Clicks:    clickService,
		Stats:     a.statsService(s),
		Catalogs:  catalogService,
		Users:     service.NewUserService(s.users),
		Processor: clickProcessor,
	}, handler.RouterDeps{
		Tokens:      issuer,
		APIKeys:     cfg.Auth.APIKeys,
		RateLimiter: rateLimiter,
		DB:          s.db,
		Cache:       s.redis,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.App.Port),
			zap.String("base_url", cfg.App.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful Shutdown
	quit, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-quit.Done():
	case err := <-serverErr:
		if err != nil {
			_ = clickProcessor.Stop(context.Background())
			return err
		}
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Новых кликов больше нет, дожидаемся очереди
	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Analytics.DrainTimeout)
	defer drainCancel()
	if err := clickProcessor.Stop(drainCtx); err != nil {
		logger.Warn("Click queue not fully drained", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}
