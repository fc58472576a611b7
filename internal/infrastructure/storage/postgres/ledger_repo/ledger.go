// Package ledger_repo provides the PostgreSQL implementation of the
// inventory ledger repository. The backing table is insert-only: no
// update or delete statements exist here.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const entriesTable = "inventory_logs"

// Repo implements ledger.Repository.
type Repo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

var _ ledger.Repository = (*Repo)(nil)

// NewRepo creates a new ledger repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[ledger.Entry](),
	}
}

// CreateBatch inserts all entries of one document batch.
func (r *Repo) CreateBatch(ctx context.Context, entries []*ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, entryValues(e))
		}
		if _, err := inserter.CopyFromSlice(ctx, entriesTable, r.columns, rows); err != nil {
			return fmt.Errorf("copy entries: %w", err)
		}
		return nil
	}

	// Fallback: multi-row insert outside a transaction.
	q := r.builder.Insert(entriesTable).Columns(r.columns...)
	for _, e := range entries {
		q = q.Values(entryValues(e)...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}

	return nil
}

// entryValues orders field values to match ExtractDBColumns.
func entryValues(e *ledger.Entry) []any {
	m := postgres.StructToMap(e)
	cols := postgres.ExtractDBColumns[ledger.Entry]()
	values := make([]any, 0, len(cols))
	for _, col := range cols {
		values = append(values, m[col])
	}
	return values
}

// GetByID retrieves a single entry.
func (r *Repo) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	q := r.builder.Select(r.columns...).
		From(entriesTable).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entry ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entry, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("ledger entry", entryID.String())
		}
		return nil, fmt.Errorf("select entry: %w", err)
	}

	return &entry, nil
}

// List retrieves entries with filtering and pagination.
func (r *Repo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[*ledger.Entry], error) {
	var result domain.ListResult[*ledger.Entry]

	base := r.builder.Select(r.columns...).From(entriesTable)
	base = applyFilter(base, filter)
	base = applyOrder(base, filter.OrderBy)

	if filter.Limit > 0 {
		base = base.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		base = base.Offset(uint64(filter.Offset))
	}

	sql, args, err := base.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	entries := make([]*ledger.Entry, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return result, fmt.Errorf("select entries: %w", err)
	}

	countQ := applyFilter(r.builder.Select("COUNT(*)").From(entriesTable), filter)
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return result, fmt.Errorf("count entries: %w", err)
	}

	result.Items = entries
	result.TotalCount = total
	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

// ListByReference retrieves all entries for one source document.
func (r *Repo) ListByReference(ctx context.Context, referenceNo string) ([]*ledger.Entry, error) {
	q := r.builder.Select(r.columns...).
		From(entriesTable).
		Where(squirrel.Eq{"reference_no": referenceNo}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entries := make([]*ledger.Entry, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	return entries, nil
}

// CountByReference reports how many entries a document has produced.
func (r *Repo) CountByReference(ctx context.Context, referenceNo string) (int64, error) {
	q := r.builder.Select("COUNT(*)").
		From(entriesTable).
		Where(squirrel.Eq{"reference_no": referenceNo})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return count, nil
}

func applyFilter(q squirrel.SelectBuilder, filter ledger.ListFilter) squirrel.SelectBuilder {
	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.TransactionType != nil {
		q = q.Where(squirrel.Eq{"transaction_type": *filter.TransactionType})
	}
	if filter.ReferenceNo != "" {
		q = q.Where(squirrel.Eq{"reference_no": filter.ReferenceNo})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"transaction_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"transaction_date": *filter.DateTo})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"reference_no": pattern},
			squirrel.ILike{"counterparty_name": pattern},
			squirrel.ILike{"notes": pattern},
		})
	}
	return q
}

func applyOrder(q squirrel.SelectBuilder, orderBy string) squirrel.SelectBuilder {
	if orderBy == "" {
		return q.OrderBy("created_at DESC")
	}
	if strings.HasPrefix(orderBy, "-") {
		return q.OrderBy(strings.TrimPrefix(orderBy, "-") + " DESC")
	}
	return q.OrderBy(orderBy)
}
