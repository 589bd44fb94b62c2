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

	"shipping/cmd"
	httpin "shipping/internal/adapters/in/http"
	"shipping/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	v, err := cmd.NewViper(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}
	configs, err := cmd.LoadConfig(v)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := cmd.NewLogger(configs.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configs, logger); err != nil {
		logger.Error("shipping service stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, configs cmd.Config, logger *zap.Logger) error {
	db, err := postgres.Open(configs.DBDriver, configs.DSN(), configs.PoolSettings())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, db, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	if err := app.EnsureCarrierDefaults(ctx); err != nil {
		return fmt.Errorf("store carrier defaults: %w", err)
	}

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, app, configs.HTTPPort, logger)
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, logger *zap.Logger) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover(), middleware.RequestID(), httpin.RequestLogger(logger), middleware.BodyLimit("1M"))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	openapi, err := httpin.LoadOpenAPI(ctx)
	if err != nil {
		return err
	}
	server, err := app.CreateHTTPServer(openapi)
	if err != nil {
		return err
	}
	if err := server.Register(e); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
