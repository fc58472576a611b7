// Package report_repo provides PostgreSQL aggregates over the
// inventory ledger for reporting.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/storage/postgres"
)

const entriesTable = "inventory_logs"

// Repo implements reports.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*Repo)(nil)

// NewRepo creates a report repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// TypeBreakdown aggregates entries per transaction type.
func (r *Repo) TypeBreakdown(ctx context.Context, period reports.Period) ([]reports.TypeBreakdown, error) {
	q := r.builder.Select(
		"transaction_type",
		"COUNT(*) AS entry_count",
		"COALESCE(SUM(qty_in), 0)::bigint AS qty_in",
		"COALESCE(SUM(qty_out), 0)::bigint AS qty_out",
	).From(entriesTable).
		GroupBy("transaction_type").
		OrderBy("transaction_type")

	q = applyPeriod(q, period)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]reports.TypeBreakdown, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select breakdown: %w", err)
	}

	return rows, nil
}

// ItemMovements aggregates movement per item, busiest items first.
func (r *Repo) ItemMovements(ctx context.Context, period reports.Period, limit int) ([]reports.ItemMovement, error) {
	q := r.builder.Select(
		"item_id",
		"COUNT(*) AS entry_count",
		"COALESCE(SUM(qty_in), 0)::bigint AS qty_in",
		"COALESCE(SUM(qty_out), 0)::bigint AS qty_out",
	).From(entriesTable).
		GroupBy("item_id").
		OrderBy("entry_count DESC")

	q = applyPeriod(q, period)

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]reports.ItemMovement, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return rows, nil
}

func applyPeriod(q squirrel.SelectBuilder, period reports.Period) squirrel.SelectBuilder {
	if !period.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"transaction_date": period.From})
	}
	if !period.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"transaction_date": period.To})
	}
	return q
}
