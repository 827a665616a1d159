// Package main is the entry point for the Walk Score proxy.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/walkability/walkscore-proxy/internal/config"
	"github.com/walkability/walkscore-proxy/internal/handlers"
	"github.com/walkability/walkscore-proxy/internal/observability"
	"github.com/walkability/walkscore-proxy/internal/server"
	"github.com/walkability/walkscore-proxy/internal/walkscore"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log.Info("configuration loaded",
		"env", cfg.Environment,
		"production", cfg.IsProduction(),
		"version", cfg.Version,
		"addr", cfg.Addr(),
		"upstream", cfg.WalkScoreBaseURL,
		"upstream_timeout", cfg.WalkScoreTimeout.String(),
	)

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TraceConfig{
		ServiceName: observability.ServiceName,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	client := walkscore.New(walkscore.Options{
		BaseURL:      cfg.WalkScoreBaseURL,
		APIKey:       cfg.WalkScoreAPIKey,
		Timeout:      cfg.WalkScoreTimeout,
		MaxBodyBytes: cfg.WalkScoreMaxBodyBytes,
	})

	h := handlers.New(client, log)
	router := server.NewRouter(h, server.RouterOptions{MetricsEnabled: cfg.MetricsEnabled}, log)

	srv := server.New(router, server.Config{
		Addr: cfg.Addr(),
		// The handler may wait the full upstream timeout before writing.
		WriteTimeout:    cfg.WalkScoreTimeout + 5*time.Second,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, log)

	log.Info("example request",
		"url", "http://"+cfg.Addr()+"/walkscore?lat=47.6085&lon=-122.3295&address=Seattle%20WA",
	)

	exitCode := 0
	if err := srv.Run(ctx); err != nil {
		log.Error("server error", "error", err)
		exitCode = 1
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Warn("failed to flush traces", "error", err)
	}

	log.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
