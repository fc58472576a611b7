// Package main is the entry point for the stockledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appctx "stockledger/internal/core/context"
	"stockledger/internal/domain"
	"stockledger/internal/domain/activity"
	"stockledger/internal/domain/adjustment"
	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/reports"
	v1 "stockledger/internal/infrastructure/http/v1"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/adjustment_repo"
	"stockledger/internal/infrastructure/storage/postgres/ledger_repo"
	"stockledger/internal/infrastructure/storage/postgres/report_repo"
	"stockledger/internal/infrastructure/storage/postgres/source_repo"
	"stockledger/pkg/logger"
	"stockledger/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockledger server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	ledgerRepo := ledger_repo.NewRepo(txManager)
	adjustmentRepo := adjustment_repo.NewRepo(txManager)
	reportRepo := report_repo.NewRepo(txManager)
	orderRepo := source_repo.NewPurchaseOrderRepo(txManager)
	invoiceRepo := source_repo.NewInvoiceRepo(txManager)
	slipRepo := source_repo.NewOrderSlipRepo(txManager)
	returnRepo := source_repo.NewSalesReturnRepo(txManager)
	contactRepo := source_repo.NewContactRepo(txManager)
	productRepo := source_repo.NewProductRepo(txManager)

	// --- Activity log ---
	activityLog, err := postgres.NewActivityLog(txManager)
	if err != nil {
		log.Fatalw("failed to initialize activity log", "error", err)
	}

	// --- JWT ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Numerator ---
	numeratorService := numerator.New(pool.Unwrap())

	// --- Services ---
	ledgerService := ledger.NewService(ledger.Config{
		Repo:      ledgerRepo,
		Orders:    orderRepo,
		Invoices:  invoiceRepo,
		Slips:     slipRepo,
		Returns:   returnRepo,
		Contacts:  contactRepo,
		Products:  productRepo,
		TxManager: txManager,
	})

	adjustmentService := adjustment.NewService(adjustmentRepo, ledgerService, numeratorService, txManager)

	reportService := reports.NewService(reportRepo, txManager)

	// Record adjustment lifecycle in the activity log. Failures are
	// logged, never surfaced to the caller.
	registerActivityHooks(adjustmentService, activityLog, log)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:        pool.Unwrap(),
		Logger:      log,
		JWTService:  jwtService,
		Adjustments: adjustmentService,
		Ledger:      ledgerService,
		Reports:     reportService,
		Activity:    activityLog,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func registerActivityHooks(svc *adjustment.Service, recorder *postgres.ActivityLog, log *logger.Logger) {
	record := func(action activity.Action) domain.Hook[*adjustment.StockAdjustment] {
		return func(ctx context.Context, adj *adjustment.StockAdjustment) error {
			changes := map[string]any{
				"adjustmentNo": adj.AdjustmentNo,
				"status":       string(adj.Status),
				"user":         appctx.GetUserID(ctx),
			}
			if err := recorder.RecordChange(ctx, adjustment.EntityType, adj.ID, action, changes); err != nil {
				log.Warnw("failed to record activity", "action", action, "adjustment_id", adj.ID, "error", err)
			}
			return nil
		}
	}
	svc.Hooks().On(domain.AfterCreate, record(activity.ActionCreate))
	svc.Hooks().On(domain.AfterFinalize, record(activity.ActionFinalize))
	svc.Hooks().On(domain.AfterDelete, record(activity.ActionDelete))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
