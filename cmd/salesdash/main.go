// Package main запускает HTTP-сервер панели продаж.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/sales-dashboard/internal/config"
	"github.com/mmeshcher/sales-dashboard/internal/handler"
	"github.com/mmeshcher/sales-dashboard/internal/middleware"
	"github.com/mmeshcher/sales-dashboard/internal/repository"
	"github.com/mmeshcher/sales-dashboard/internal/salesapi"
	"github.com/mmeshcher/sales-dashboard/internal/service"
	"github.com/mmeshcher/sales-dashboard/internal/view"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var repo service.Repository
	if cfg.DatabaseURI != "" {
		pgRepo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		repo = pgRepo
		sugar.Info("sessions are stored in postgres")
	} else {
		repo = repository.NewMemoryRepository()
		sugar.Info("sessions are stored in memory")
	}

	client := salesapi.NewClient(cfg.SalesAPIURL, cfg.SalesAPITokenType, cfg.SalesAPITimeout, logger)

	svc := service.NewService(repo, client, logger, service.Options{
		SessionTTL:       cfg.SessionTTL,
		SessionRetention: cfg.SessionRetention,
	})
	defer svc.Close()

	renderer, err := view.NewRenderer()
	if err != nil {
		sugar.Fatalw("template initialization error", "error", err.Error())
	}

	sessions := middleware.NewSessionMiddleware(cfg.SessionSecret, cfg.SecureCookie)
	if cfg.SessionSecret == "" {
		sugar.Warn("SESSION_SECRET is not set, sessions will not survive a restart")
	}

	h := handler.NewHandler(svc, renderer, logger, sessions, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Очистка неактивных сессий
	g.Go(func() error {
		svc.StartSessionSweeper(ctx)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting sales dashboard", "addr", cfg.RunAddress, "salesAPI", cfg.SalesAPIURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
