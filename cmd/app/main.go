package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"optionstracker/configs"
	"optionstracker/internal/adapter"
	"optionstracker/internal/database"
	delivery "optionstracker/internal/delivery/http"
	"optionstracker/internal/domain"
	"optionstracker/internal/infra"
	"optionstracker/internal/logger"
	"optionstracker/internal/middleware"
	"optionstracker/internal/repository"
	"optionstracker/internal/table"
	"optionstracker/internal/usecase"
)

func main() {
	envErr := godotenv.Load()

	cfg := configs.Load()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if envErr != nil {
		zl.Info(".env file not found, using environment variables")
	}

	if err := run(cfg, zl); err != nil {
		zl.Fatal("optionstracker stopped", zap.Error(err))
	}
}

func run(cfg *configs.Config, zl *zap.Logger) error {
	ctx := context.Background()

	states, closeStates, err := newViewStateRepository(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeStates()

	gateway := adapter.NewPositionsAPI(cfg.Gateway.URL, cfg.Gateway.Timeout, zl.Named("gateway"))
	if err := gateway.Ping(ctx); err != nil {
		zl.Warn("positions backend is not reachable yet", zap.String("url", cfg.Gateway.URL), zap.Error(err))
	}

	engine := table.NewEngine(table.DefaultRegistry(), zl.Named("table"))
	dashboard := usecase.NewDashboardService(gateway, states, engine, zl.Named("dashboard"))

	janitor := infra.NewScheduler(dashboard, cfg.Janitor.MaxIdle, zl.Named("janitor"))
	if err := janitor.Start(cfg.Janitor.Schedule); err != nil {
		return err
	}
	defer janitor.Stop()

	templates, err := delivery.ParseTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	sessions := middleware.NewSessions(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Server.IsProduction(), zl.Named("session"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		WebHandler: delivery.NewWebHandler(templates, dashboard, zl.Named("web")),
		Sessions:   sessions.Middleware,
		Logger:     zl.Named("http"),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      newOpsRouter(e, gateway, states, zl.Named("ops")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("optionstracker starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Server.Env),
			zap.String("positions_api", cfg.Gateway.URL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	zl.Info("server exited gracefully")
	return nil
}

// newViewStateRepository picks Redis, then Postgres, then memory
func newViewStateRepository(ctx context.Context, cfg *configs.Config, zl *zap.Logger) (domain.ViewStateRepository, func(), error) {
	switch {
	case cfg.Redis.URL != "":
		client, err := infra.NewRedis(ctx, cfg.Redis.URL, zl)
		if err != nil {
			return nil, nil, err
		}
		zl.Info("view states stored in redis", zap.Duration("ttl", cfg.Redis.ViewStateTTL))
		return repository.NewRedisViewStateRepository(client, cfg.Redis.ViewStateTTL), func() { _ = client.Close() }, nil

	case cfg.Database.URL != "":
		db, err := infra.NewDatabase(ctx, cfg.Database.URL, zl)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, db, zl); err != nil {
			db.Close()
			return nil, nil, err
		}
		zl.Info("view states stored in postgres")
		return repository.NewPostgresViewStateRepository(db), db.Close, nil
	}

	zl.Info("view states stored in memory")
	return repository.NewMemoryViewStateRepository(), func() {}, nil
}
