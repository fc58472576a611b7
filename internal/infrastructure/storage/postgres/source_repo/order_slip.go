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
	orderSlipsTable     = "order_slips"
	orderSlipItemsTable = "order_slip_items"
)

// OrderSlipRepo implements ledger.OrderSlipReader.
type OrderSlipRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.OrderSlipReader = (*OrderSlipRepo)(nil)

// NewOrderSlipRepo creates an order slip reader.
func NewOrderSlipRepo(txManager *postgres.TxManager) *OrderSlipRepo {
	return &OrderSlipRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetWithItems loads an order slip header with its lines.
func (r *OrderSlipRepo) GetWithItems(ctx context.Context, slipID id.ID) (*ledger.OrderSlip, error) {
	q := r.builder.Select(
		"id", "slip_no", "status", "sales_date", "customer_id",
	).From(orderSlipsTable).
		Where(squirrel.Eq{"id": slipID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var slip ledger.OrderSlip
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &slip, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("order slip", slipID.String())
		}
		return nil, fmt.Errorf("select order slip: %w", err)
	}

	itemsQ := r.builder.Select("item_id", "quantity", "unit_price").
		From(orderSlipItemsTable).
		Where(squirrel.Eq{"slip_id": slipID}).
		OrderBy("line_no")

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	items := make([]ledger.DocumentItem, 0)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select slip items: %w", err)
	}
	slip.Items = items

	return &slip, nil
}
