// main is the entry point of the Students API.
//
// Startup sequence:
//  1. Load configuration (env, optional .env, optional YAML)
//  2. Initialise the logger
//  3. Connect to the database and sync the schema
//  4. Build the router
//  5. Serve HTTP in a separate goroutine
//  6. Block until SIGINT/SIGTERM, then shut down gracefully
//
// Running the server:
//
//	DATABASE_NAME=school DATABASE_PASSWORD=secret go run ./cmd/students-api
//
// or with a config file:
//
//	go run ./cmd/students-api --config=config/local.yaml
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

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/router"
	"github.com/aanand-mishra/students-api/internal/storage/connector"
	"github.com/aanand-mishra/students-api/internal/storage/gormstore"
)

const version = "1.0.0"

func main() {
	startedAt := time.Now()

	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	// ── 3. Connect to the database ────────────────────────────────────────
	// A connection failure here is fatal: without a database no route
	// can do anything useful.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	conn, err := connector.Open(ctx, cfg.Database,
		connector.WithLogger(log),
		connector.WithSQLTrace(cfg.Env == config.EnvDevelopment),
	)
	if err != nil {
		cancel()
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := conn.Sync(ctx, cfg.ForceSync()); err != nil {
		cancel()
		log.Error("failed to sync schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cancel()

	log.Info("storage initialised",
		slog.String("dialect", conn.Dialect()),
		slog.Bool("forced_sync", cfg.ForceSync()),
		slog.Bool("reset_sequence", cfg.Database.ResetSequence))

	store := gormstore.New(conn,
		gormstore.WithSequenceReset(cfg.Database.ResetSequence),
		gormstore.WithLogger(log),
	)

	// ── 4. Build the router ───────────────────────────────────────────────
	handler := router.New(router.Options{
		Env:       cfg.Env,
		Store:     store,
		Logger:    log,
		StartedAt: startedAt,
	})

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr(),
		Handler: handler,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 5. Serve ──────────────────────────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", server.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for shutdown signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
	}
	if err := conn.Close(); err != nil {
		log.Error("failed to close database", slog.String("error", err.Error()))
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// development, test: human-readable text at DEBUG.
// production: JSON at INFO, for log aggregators.
func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvProduction:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
