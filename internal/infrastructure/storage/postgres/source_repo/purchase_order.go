// Package source_repo provides read-only PostgreSQL access to the
// business documents the ledger derives entries from. Their lifecycles
// are owned elsewhere; nothing in this package writes.
package source_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable   = "purchase_orders"
	purchaseOrderItemsTbl = "purchase_order_items"
)

// PurchaseOrderRepo implements ledger.PurchaseOrderReader.
type PurchaseOrderRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.PurchaseOrderReader = (*PurchaseOrderRepo)(nil)

// NewPurchaseOrderRepo creates a purchase order reader.
func NewPurchaseOrderRepo(txManager *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetWithItems loads a purchase order header with its lines.
func (r *PurchaseOrderRepo) GetWithItems(ctx context.Context, orderID id.ID) (*ledger.PurchaseOrder, error) {
	q := r.builder.Select(
		"id", "order_no", "status", "order_date", "delivery_date",
		"supplier_id", "warehouse_id",
	).From(purchaseOrdersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var order ledger.PurchaseOrder
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &order, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("purchase order", orderID.String())
		}
		return nil, fmt.Errorf("select purchase order: %w", err)
	}

	itemsQ := r.builder.Select("item_id", "quantity", "unit_price", "notes").
		From(purchaseOrderItemsTbl).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	items := make([]ledger.PurchaseOrderItem, 0)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	order.Items = items

	return &order, nil
}
