// tabtime daemon: receives browser activity and serves reports.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/tabtime/internal/api"
	"github.com/ashureev/tabtime/internal/config"
	"github.com/ashureev/tabtime/internal/identity"
	"github.com/ashureev/tabtime/internal/ingest"
	"github.com/ashureev/tabtime/internal/middleware"
	"github.com/ashureev/tabtime/internal/store"
	"github.com/ashureev/tabtime/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "db_path", cfg.DBPath, "timezone", cfg.Location.String())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if cfg.AllowsAnyOrigin() {
		slog.Warn("ALLOWED_ORIGINS admits any origin; restrict it to the extension origin outside development")
	}

	// Initialize services.
	registry := ingest.NewRegistry()

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, registry, cfg.Location)
	wsHandler := ingest.NewWebSocketHandler(repo, registry, ingest.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		HostQueryTimeout: cfg.HostQueryTimeout,
		EventQueueSize:   cfg.EventQueueSize,
	})

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(identity.Middleware)

	api.NewReportHandler(baseHandler).RegisterRoutes(r)
	api.NewSessionsHandler(baseHandler).RegisterRoutes(r)
	api.NewStatusHandler(baseHandler).RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/events", wsHandler.ServeHTTP)

	if cfg.ServeWeb {
		// Serve embedded report page (SPA catch-all).
		r.Handle("/*", web.SPAHandler())
	}

	// WebSocket connections are long-lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingest.StartSweeper(ctx, registry, cfg.ClientTTL, cfg.SweepInterval)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close browser connections first so in-progress sessions are flushed
	// before the database closes.
	registry.CloseAll()
	if err := wsHandler.Wait(shutdownCtx); err != nil {
		slog.Warn("Timed out flushing browser sessions", "error", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
