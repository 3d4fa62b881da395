// ChittyTrust - Multi-dimensional trust scoring that deploys in 60 seconds.
// Copyright (c) 2025 chittyos
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chittyos/chittytrust/internal/api"
	"github.com/chittyos/chittytrust/internal/bus"
	"github.com/chittyos/chittytrust/internal/cache"
	"github.com/chittyos/chittytrust/internal/config"
	"github.com/chittyos/chittytrust/internal/domain"
	"github.com/chittyos/chittytrust/internal/insights"
	"github.com/chittyos/chittytrust/internal/repository"
	"github.com/chittyos/chittytrust/internal/trust"
	"github.com/chittyos/chittytrust/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("CHITTYTRUST_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting chittytrust",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration (defaults + optional YAML + env overrides)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Trust Engine
	engine, err := trust.NewEngine(trust.DefaultWeights())
	if err != nil {
		slog.Error("failed to initialize trust engine", "error", err)
		os.Exit(1)
	}
	slog.Info("trust engine initialized", "version", trust.EngineVersion)

	// Initialize Activity Service
	activitySvc := insights.NewActivityService(repo, cacheImpl)

	// Initialize Insight Engine with activity getter
	insightEngine, err := insights.NewEngine(activitySvc.Getter(), cfg.Insights.MaxWorkers)
	if err != nil {
		slog.Error("failed to initialize insight engine", "error", err)
		os.Exit(1)
	}

	// Built-in rules first, database rules layered on top
	if err := loadInsightRules(ctx, repo, insightEngine); err != nil {
		slog.Error("failed to load insight rules", "error", err)
		os.Exit(1)
	}
	slog.Info("insight engine initialized", "rules_count", insightEngine.RulesCount())

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Worker.Enabled || os.Getenv("CHITTYTRUST_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, repo, cacheImpl, engine, insightEngine)

		workerCfg := worker.Config{
			TenantIDs:      cfg.Worker.TenantIDs,
			ResultTTL:      cfg.Cache.ResultTTL,
			ActivityWindow: cfg.Insights.ActivityWindow,
		}

		if err := asyncWorker.Start(workerCfg); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "tenant_count", len(workerCfg.TenantIDs))
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, repo, cacheImpl, busImpl, engine, insightEngine, Version, cfg.Cache.ResultTTL, cfg.Insights.ActivityWindow)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("chittytrust is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("chittytrust shutdown complete")
}

// GlobalTenantID is used for insight rules that apply to all tenants.
const GlobalTenantID = "*"

// loadInsightRules loads built-in rules plus any rules saved in the
// database. Database rules with the same ID override built-ins.
func loadInsightRules(ctx context.Context, repo domain.Repository, engine *insights.Engine) error {
	if err := engine.LoadRules(insights.BuiltinRules()); err != nil {
		return err
	}

	dbRules, err := repo.ListInsightRules(ctx, GlobalTenantID)
	if err != nil {
		slog.Warn("failed to list insight rules from database", "error", err)
		return nil // Built-ins are enough to start - more can be added via API
	}

	if len(dbRules) > 0 {
		slog.Info("loading insight rules from database", "count", len(dbRules))
		return engine.LoadRules(dbRules)
	}

	slog.Info("no insight rules in database - configure via POST /insights/rules API")
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║             🛡️ CHITTYTRUST                ║")
	fmt.Println("  ║       Trust Scoring Engine                ║")
	fmt.Println("  ║    Six dimensions. One number.            ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /entities                  - Register an entity")
	fmt.Println("    GET  /entities/{id}             - Get entity by ID")
	fmt.Println("    POST /entities/{id}/events      - Record a trust event")
	fmt.Println("    POST /trust/{id}/calculate      - Calculate trust scores")
	fmt.Println("    GET  /trust/{id}                - Get latest trust result")
	fmt.Println("    GET  /trust/{id}/history        - Get trust score history")
	fmt.Println("    GET  /insights/rules            - List insight rules")
	fmt.Println("    POST /insights/rules            - Create an insight rule")
	fmt.Println("    DELETE /insights/rules/{id}     - Delete an insight rule")
	fmt.Println("    POST /insights/rules/reload     - Hot-reload insight rules")
	fmt.Println("    GET  /health                    - Health check")
	fmt.Println("    GET  /metrics                   - Prometheus metrics")
	fmt.Println()
}
