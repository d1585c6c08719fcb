package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	appLogger "github.com/FACorreiaa/rotinaai-settings/app/logger"
	"github.com/FACorreiaa/rotinaai-settings/app/observability/metrics"
	"github.com/FACorreiaa/rotinaai-settings/app/tracer"
	"github.com/FACorreiaa/rotinaai-settings/config"
	"github.com/FACorreiaa/rotinaai-settings/internal/api/auth"
	"github.com/FACorreiaa/rotinaai-settings/internal/container"
	api "github.com/FACorreiaa/rotinaai-settings/internal/router"
)

const serviceName = "rotinaai-settings"

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := appLogger.New(os.Getenv("APP_ENV"), os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Error("Application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metricsHandler, shutdownTelemetry, err := tracer.InitTracingAndMetrics(serviceName)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.Any("error", err))
		}
	}()
	metrics.InitAppMetrics()

	c, err := container.NewContainer(ctx, cfg, metrics.Get(), logger)
	if err != nil {
		return fmt.Errorf("building dependencies: %w", err)
	}
	defer c.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      newHTTPHandler(cfg, c, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Handlers.Prometheus.Port),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(srv, "HTTP", logger) })
	g.Go(func() error { return serve(metricsSrv, "Prometheus", logger) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

// newHTTPHandler mounts the API router behind the server-wide middleware.
func newHTTPHandler(cfg *config.Config, c *container.Container, logger *slog.Logger) http.Handler {
	timeout := cfg.Server.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	mainRouter := api.SetupRouter(&api.Config{
		SettingsHandler:        c.SettingsHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
		AllowedOrigins:         cfg.Settings.AllowedOrigins,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)
	return router
}

func serve(srv *http.Server, name string, logger *slog.Logger) error {
	logger.Info("Starting "+name+" server", slog.String("address", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
