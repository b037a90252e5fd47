// Package main is the entry point for the ladle API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ladle/internal/domain/aggregates"
	"ladle/internal/domain/ledger"
	"ladle/internal/domain/purchases"
	"ladle/internal/domain/sales"
	"ladle/internal/domain/waste"
	v1 "ladle/internal/infrastructure/http/v1"
	"ladle/internal/infrastructure/storage/postgres"
	"ladle/internal/infrastructure/storage/postgres/aggregate_repo"
	"ladle/internal/infrastructure/storage/postgres/catalog_repo"
	"ladle/internal/infrastructure/storage/postgres/event_repo"
	"ladle/internal/infrastructure/storage/postgres/ledger_repo"
	"ladle/internal/infrastructure/storage/postgres/pending_repo"
	"ladle/pkg/config"
	"ladle/pkg/logger"
)

var version = "dev" // overridden via -ldflags at build time

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting ladle server", "env", cfg.App.Env, "version", version)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	poolCfg.MaxConns = int32(cfg.DB.MaxConns)
	poolCfg.MinConns = int32(cfg.DB.MinConns)

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit trail ---
	audit, err := postgres.NewAuditTrail(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit trail", "error", err)
	}

	// --- Repositories ---
	ingredientRepo := ledger_repo.NewIngredientRepo(txManager)
	catalogRepo := catalog_repo.NewCatalogRepo(txManager)
	saleRepo := event_repo.NewSaleRepo(txManager)
	purchaseRepo := event_repo.NewPurchaseRepo(txManager)
	wasteRepo := event_repo.NewWasteRepo(txManager)
	aggregateRepo := aggregate_repo.NewAggregateRepo(txManager)
	pendingRepo := pending_repo.NewPendingRepo(txManager)

	// --- Approval policy ---
	policy, err := purchases.NewCELPolicy(cfg.Approval.Policy)
	if err != nil {
		log.Fatalw("invalid approval policy expression", "error", err)
	}
	if cfg.Approval.Policy != "" {
		log.Infow("auto-approval policy enabled", "policy", cfg.Approval.Policy)
	}

	// --- Services ---
	ledgerService := ledger.NewService(ingredientRepo, txManager, audit)
	aggregateService := aggregates.NewService(aggregateRepo)
	salesService := sales.NewService(saleRepo, catalogRepo, ledgerService, aggregateService, txManager)
	purchaseService := purchases.NewService(purchaseRepo, pendingRepo, catalogRepo, ledgerService, aggregateService, policy, txManager)
	wasteService := waste.NewService(wasteRepo, catalogRepo, ledgerService, aggregateService, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		Version:        version,
		Ledger:         ledgerService,
		Sales:          salesService,
		Purchases:      purchaseService,
		Waste:          wasteService,
		Audit:          audit,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
