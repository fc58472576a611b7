// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminProfile(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin profile", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminProfile(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@stockledger.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM profiles WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin profile already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	adminID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO profiles (id, email, password_hash, full_name, is_admin)
		VALUES ($1, $2, $3, 'System Admin', true)
	`, adminID, adminEmail, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin profile: %w", err)
	}

	log.Infow("admin profile created", "email", adminEmail, "user_id", adminID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var count int
	if err := pool.Pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("check products: %w", err)
	}
	if count > 0 {
		log.Info("demo data already present, skipping")
		return nil
	}

	warehouseID := id.New()
	supplierID := id.New()
	customerID := id.New()
	widgetID := id.New()
	gadgetID := id.New()

	now := time.Now().UTC()

	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO warehouses (id, name) VALUES ($1, 'Main Warehouse')`, warehouseID)
	batch.Queue(`INSERT INTO contacts (id, name, contact_type) VALUES ($1, 'Acme Supplies', 'supplier')`, supplierID)
	batch.Queue(`INSERT INTO contacts (id, name, contact_type) VALUES ($1, 'Globex Retail', 'customer')`, customerID)
	batch.Queue(`INSERT INTO products (id, name, sku, unit_price) VALUES ($1, 'Widget', 'WDG-001', 12.50)`, widgetID)
	batch.Queue(`INSERT INTO products (id, name, sku, unit_price) VALUES ($1, 'Gadget', 'GDG-001', 34.00)`, gadgetID)

	// One document per source type, already in its ledger-eligible state.
	orderID := id.New()
	batch.Queue(`
		INSERT INTO purchase_orders (id, order_no, status, order_date, delivery_date, supplier_id, warehouse_id)
		VALUES ($1, 'PO-2026-00001', 'delivered', $2, $3, $4, $5)
	`, orderID, now.AddDate(0, 0, -14), now.AddDate(0, 0, -7), supplierID, warehouseID)
	batch.Queue(`
		INSERT INTO purchase_order_items (id, order_id, line_no, item_id, quantity, unit_price, notes)
		VALUES ($1, $2, 1, $3, $4, 10.00, 'initial stock')
	`, id.New(), orderID, widgetID, types.NewQuantityFromInt(100))
	batch.Queue(`
		INSERT INTO purchase_order_items (id, order_id, line_no, item_id, quantity, unit_price, notes)
		VALUES ($1, $2, 2, $3, $4, 28.00, '')
	`, id.New(), orderID, gadgetID, types.NewQuantityFromInt(50))

	invoiceID := id.New()
	batch.Queue(`
		INSERT INTO invoices (id, invoice_no, status, sales_date, customer_id)
		VALUES ($1, 'INV-2026-00001', 'paid', $2, $3)
	`, invoiceID, now.AddDate(0, 0, -5), customerID)
	batch.Queue(`
		INSERT INTO invoice_items (id, invoice_id, item_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, 12.50)
	`, id.New(), invoiceID, widgetID, types.NewQuantityFromInt(20))

	slipID := id.New()
	batch.Queue(`
		INSERT INTO order_slips (id, slip_no, status, sales_date, customer_id)
		VALUES ($1, 'OS-2026-00001', 'finalized', $2, $3)
	`, slipID, now.AddDate(0, 0, -3), customerID)
	batch.Queue(`
		INSERT INTO order_slip_items (id, slip_id, item_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, 34.00)
	`, id.New(), slipID, gadgetID, types.NewQuantityFromInt(5))

	batch.Queue(`
		INSERT INTO sales_returns (id, return_no, status, return_date, customer_id, returned_products)
		VALUES ($1, 'RET-2026-00001', 'processed', $2, $3,
			'[{"name": "Widget", "quantity": 2, "originalPrice": 12.50, "refundAmount": 25.00}]')
	`, id.New(), now.AddDate(0, 0, -1), customerID)

	results := pool.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("seed statement %d: %w", i+1, err)
		}
	}

	log.Infow("demo data seeded",
		"warehouse_id", warehouseID,
		"purchase_order_id", orderID,
		"invoice_id", invoiceID,
		"order_slip_id", slipID,
	)
	return nil
}
