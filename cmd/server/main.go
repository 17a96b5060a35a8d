// Package main runs the launchpad HTTP API: prepare endpoints hand out
// partially-signed transactions, complete endpoints submit the wallet-signed
// copies and wait for confirmation.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-launchpad/internal/api"
	"token-launchpad/internal/app"
	"token-launchpad/internal/config"
	"token-launchpad/internal/observability"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if err := config.LoadEnvFile(".env"); err != nil {
		logger.Fatalf("Failed to load .env: %v", err)
	}
	cfg := config.FromEnv()

	// Flags override env vars
	flag.StringVar(&cfg.RPCEndpoint, "rpc-endpoint", cfg.RPCEndpoint, "Solana RPC HTTP endpoint")
	flag.StringVar(&cfg.WSEndpoint, "ws-endpoint", cfg.WSEndpoint, "Solana WebSocket endpoint (optional)")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flag.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	flag.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for pending transactions (optional)")
	flag.BoolVar(&cfg.UseMemory, "use-memory", cfg.UseMemory, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.StringVar(&cfg.Pinner, "pinner", cfg.Pinner, "Artifact backend: pinata, gcs or memory")
	flag.DurationVar(&cfg.ConfirmTimeout, "confirm-timeout", cfg.ConfirmTimeout, "Confirmation deadline per transaction")
	flag.DurationVar(&cfg.PendingTTL, "pending-ttl", cfg.PendingTTL, "How long a prepared transaction waits for its signature")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	metrics := observability.DefaultMetrics
	if cfg.MetricsNamespace != "" {
		metrics = observability.NewMetrics(cfg.MetricsNamespace)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, app.Options{Metrics: metrics})
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Printf("Close: %v", err)
		}
	}()

	server := api.NewServer(api.Options{
		Service: a.Service,
		Metrics: metrics,
		Logger:  log.New(os.Stdout, "[api] ", log.LstdFlags),
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	drained := make(chan struct{})

	go func() {
		defer close(drained)
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		go func() {
			// Wait for second signal for immediate shutdown
			select {
			case sig := <-sigCh:
				logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
				os.Exit(1)
			case <-done:
			}
		}()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
		}
	}()

	logger.Printf("Listening on %s (rpc=%s, memory=%v, pinner=%s)", cfg.HTTPAddr, cfg.RPCEndpoint, cfg.UseMemory, cfg.Pinner)
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}
	<-drained
	close(done)

	logger.Println("Shutdown complete")
}
