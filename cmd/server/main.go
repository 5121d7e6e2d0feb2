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

	"github.com/prometheus/client_golang/prometheus"

	"skyatlas/airports/internal/api"
	"skyatlas/airports/internal/config"
	"skyatlas/airports/internal/db"
	"skyatlas/airports/internal/logging"
	"skyatlas/airports/internal/metrics"
	"skyatlas/airports/internal/routes"
)

const shutdownGrace = 20 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.Server.Env, cfg.Log.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Airport API starting up",
		"environment", cfg.Server.Env,
		"database", cfg.Database.Type,
		"cache", cfg.Cache.Backend,
		"llm_enabled", cfg.LLM.Enabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.InitORM(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to connect to catalog database", "error", err.Error())
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logging.Warn("Failed to close database", "error", err.Error())
		}
	}()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(ctx, cfg, gdb, metricsReg, prometheus.DefaultGatherer)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}
	defer deps.Close()

	if err := deps.Repo.Airports.EnsureSchema(ctx); err != nil {
		logging.Fatal("Failed to prepare catalog schema", "error", err.Error())
	}
	if n, err := deps.Repo.Airports.Count(ctx); err == nil && n == 0 {
		logging.Warn("Airport catalog is empty, POST /admin/import-data to load it")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           routes.RegisterRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server starting", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server stopped unexpectedly", "error", err.Error())
		}
	case <-ctx.Done():
		logging.Info("Shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Graceful shutdown failed", "error", err.Error())
		}
	}

	logging.Info("Airport API stopped")
}
