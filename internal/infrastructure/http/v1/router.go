// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ladle/internal/domain/ledger"
	"ladle/internal/domain/purchases"
	"ladle/internal/domain/sales"
	"ladle/internal/domain/waste"
	"ladle/internal/infrastructure/http/v1/handlers"
	"ladle/internal/infrastructure/http/v1/middleware"
	"ladle/internal/infrastructure/storage/postgres"
	"ladle/pkg/logger"
)

// RouterConfig holds everything the router needs; services are built
// once in main and shared across requests.
type RouterConfig struct {
	Pool    *postgres.Pool
	Logger  *logger.Logger
	Version string

	Ledger    *ledger.Service
	Sales     *sales.Service
	Purchases *purchases.Service
	Waste     *waste.Service

	Audit *postgres.AuditTrail

	// AllowedOrigins for CORS; empty means allow all (dev mode).
	AllowedOrigins []string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	// API v1 - every route below requires an X-Tenant-ID header
	api := router.Group("/api/v1")
	api.Use(middleware.Actor())
	{
		stockHandler := handlers.NewStockHandler(base, cfg.Ledger, cfg.Audit)
		stock := api.Group("/stock")
		{
			stock.POST("/:id/adjust", stockHandler.Adjust)
			stock.POST("/bulk-adjust", stockHandler.BulkAdjust)
			stock.POST("/:id/stocktake", stockHandler.Stocktake)
			stock.GET("/:id/history", stockHandler.History)
		}

		salesHandler := handlers.NewSalesHandler(base, cfg.Sales)
		api.POST("/sales", salesHandler.Record)
		api.DELETE("/sales/:id", salesHandler.Reverse)

		ordersHandler := handlers.NewOrdersHandler(base, cfg.Purchases)
		api.POST("/orders/:id/receipts", ordersHandler.Receive)
		api.DELETE("/orders/:id", ordersHandler.Reverse)

		wasteHandler := handlers.NewWasteHandler(base, cfg.Waste)
		api.POST("/waste", wasteHandler.Register)
		api.DELETE("/waste/:id", wasteHandler.Delete)

		pendingHandler := handlers.NewPendingHandler(base, cfg.Purchases)
		pending := api.Group("/pending-purchases")
		{
			pending.POST("", pendingHandler.Submit)
			pending.POST("/:id/approve", pendingHandler.Approve)
			pending.POST("/:id/reject", pendingHandler.Reject)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Tenant-ID", "X-User-ID", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}
