// Package v1 wires the HTTP API surface.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockledger/internal/domain/activity"
	"stockledger/internal/domain/adjustment"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/pkg/logger"
)

// RouterConfig collects the dependencies of the HTTP layer.
type RouterConfig struct {
	Pool        *pgxpool.Pool
	Logger      *logger.Logger
	JWTService  middleware.JWTValidator
	Adjustments *adjustment.Service
	Ledger      *ledger.Service
	Reports     *reports.Service
	Activity    activity.Recorder
}

// NewRouter builds the Gin engine with middleware and routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger(cfg.Logger),
		middleware.ErrorHandler(),
	)

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	router.GET("/health", healthHandler.Health)

	adjustmentHandler := handlers.NewAdjustmentHandler(cfg.Adjustments, cfg.Activity)
	ledgerHandler := handlers.NewLedgerHandler(cfg.Ledger)
	reportHandler := handlers.NewReportHandler(cfg.Reports)

	api := router.Group("/v1")
	api.Use(middleware.Auth(cfg.JWTService))
	{
		adjustments := api.Group("/adjustments")
		{
			adjustments.POST("", adjustmentHandler.Create)
			adjustments.GET("", adjustmentHandler.List)
			adjustments.GET("/:id", adjustmentHandler.Get)
			adjustments.DELETE("/:id", adjustmentHandler.Delete)
			adjustments.POST("/:id/finalize", adjustmentHandler.Finalize)
			adjustments.POST("/:id/items", adjustmentHandler.AddItem)
			adjustments.PUT("/:id/items/:itemId", adjustmentHandler.UpdateItem)
			adjustments.DELETE("/:id/items/:itemId", adjustmentHandler.DeleteItem)
			adjustments.GET("/:id/history", adjustmentHandler.History)
		}

		ledgerRoutes := api.Group("/ledger")
		{
			ledgerRoutes.POST("/purchase-orders/:id", ledgerHandler.NormalizePurchaseOrder)
			ledgerRoutes.POST("/invoices/:id", ledgerHandler.NormalizeInvoice)
			ledgerRoutes.POST("/order-slips/:id", ledgerHandler.NormalizeOrderSlip)
			ledgerRoutes.POST("/sales-returns/:id", ledgerHandler.NormalizeSalesReturn)
			ledgerRoutes.GET("", ledgerHandler.List)
			ledgerRoutes.GET("/:id", ledgerHandler.Get)
			ledgerRoutes.GET("/reference/:referenceNo", ledgerHandler.ListByReference)
		}

		reportsGroup := api.Group("/reports")
		{
			reportsGroup.GET("/inventory-audit", reportHandler.InventoryAudit)
		}
	}

	return router
}
