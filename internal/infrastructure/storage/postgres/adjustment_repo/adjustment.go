// Package adjustment_repo provides the PostgreSQL implementation of the
// stock adjustment repository.
package adjustment_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/adjustment"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	adjustmentsTable = "stock_adjustments"
	itemsTable       = "stock_adjustment_items"
)

// Repo implements adjustment.Repository.
type Repo struct {
	txManager   *postgres.TxManager
	batch       *postgres.BatchExecutor
	builder     squirrel.StatementBuilderType
	headerCols  []string
	itemColumns []string
}

var _ adjustment.Repository = (*Repo)(nil)

// NewRepo creates a new adjustment repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{
		txManager:   txManager,
		batch:       postgres.NewBatchExecutor(txManager),
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		headerCols:  postgres.ExtractDBColumns[adjustment.StockAdjustment](),
		itemColumns: postgres.ExtractDBColumns[adjustment.Item](),
	}
}

// CreateHeader inserts the adjustment header row.
func (r *Repo) CreateHeader(ctx context.Context, adj *adjustment.StockAdjustment) error {
	values := postgres.StructToMap(adj)

	q := r.builder.Insert(adjustmentsTable).SetMap(values)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert header: %w", err)
	}
	return nil
}

// CreateItems inserts all item rows for a header. The inserts go out
// as one pgx batch sharing a single implicit transaction, so the rows
// land all-or-nothing.
func (r *Repo) CreateItems(ctx context.Context, adjustmentID id.ID, items []adjustment.Item) error {
	queries, err := r.buildItemInserts(adjustmentID, items)
	if err != nil {
		return err
	}
	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

func (r *Repo) buildItemInserts(adjustmentID id.ID, items []adjustment.Item) ([]postgres.BatchQuery, error) {
	queries := make([]postgres.BatchQuery, 0, len(items))
	for i := range items {
		items[i].AdjustmentID = adjustmentID

		sql, args, err := r.builder.Insert(itemsTable).
			SetMap(postgres.StructToMap(&items[i])).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}
	return queries, nil
}

// HardDeleteHeader physically removes a header row. Compensation path
// for a failed item insert; never used on live documents.
func (r *Repo) HardDeleteHeader(ctx context.Context, adjustmentID id.ID) error {
	q := r.builder.Delete(adjustmentsTable).
		Where(squirrel.Eq{"id": adjustmentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete header: %w", err)
	}
	return nil
}

// GetByID returns the header without items; soft-deleted rows are not
// found.
func (r *Repo) GetByID(ctx context.Context, adjustmentID id.ID) (*adjustment.StockAdjustment, error) {
	q := r.builder.Select(r.headerCols...).
		From(adjustmentsTable).
		Where(squirrel.Eq{"id": adjustmentID}).
		Where(squirrel.Eq{"is_deleted": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var adj adjustment.StockAdjustment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &adj, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("stock adjustment", adjustmentID.String())
		}
		return nil, fmt.Errorf("select header: %w", err)
	}

	return &adj, nil
}

// GetItems returns all item rows for a header.
func (r *Repo) GetItems(ctx context.Context, adjustmentID id.ID) ([]adjustment.Item, error) {
	q := r.builder.Select(r.itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"adjustment_id": adjustmentID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]adjustment.Item, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}

	return items, nil
}

// List retrieves headers with filtering and pagination.
func (r *Repo) List(ctx context.Context, filter adjustment.ListFilter) (domain.ListResult[*adjustment.StockAdjustment], error) {
	var result domain.ListResult[*adjustment.StockAdjustment]

	base := applyFilter(r.builder.Select(r.headerCols...).From(adjustmentsTable), filter)
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

	adjustments := make([]*adjustment.StockAdjustment, 0)
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &adjustments, sql, args...); err != nil {
		return result, fmt.Errorf("select adjustments: %w", err)
	}

	countQ := applyFilter(r.builder.Select("COUNT(*)").From(adjustmentsTable), filter)
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return result, fmt.Errorf("count adjustments: %w", err)
	}

	result.Items = adjustments
	result.TotalCount = total
	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

// Finalize flips a live draft to finalized in one conditional update.
// Returns false when zero rows matched: the document was already
// finalized, soft-deleted, or never existed.
func (r *Repo) Finalize(ctx context.Context, adjustmentID id.ID, processedBy string, at time.Time) (bool, error) {
	q := r.builder.Update(adjustmentsTable).
		Set("status", adjustment.StatusFinalized).
		Set("processed_by", processedBy).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": adjustmentID}).
		Where(squirrel.Eq{"status": adjustment.StatusDraft}).
		Where(squirrel.Eq{"is_deleted": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("finalize adjustment: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// AddItem inserts one item row.
func (r *Repo) AddItem(ctx context.Context, item *adjustment.Item) error {
	q := r.builder.Insert(itemsTable).SetMap(postgres.StructToMap(item))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// UpdateItem rewrites one item row.
func (r *Repo) UpdateItem(ctx context.Context, item *adjustment.Item) error {
	values := postgres.StructToMap(item)
	delete(values, "id")
	delete(values, "adjustment_id")

	q := r.builder.Update(itemsTable).
		SetMap(values).
		Where(squirrel.Eq{"id": item.ID}).
		Where(squirrel.Eq{"adjustment_id": item.AdjustmentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("adjustment item", item.ID.String())
	}
	return nil
}

// DeleteItem removes one item row.
func (r *Repo) DeleteItem(ctx context.Context, adjustmentID, itemRowID id.ID) error {
	q := r.builder.Delete(itemsTable).
		Where(squirrel.Eq{"id": itemRowID}).
		Where(squirrel.Eq{"adjustment_id": adjustmentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("adjustment item", itemRowID.String())
	}
	return nil
}

// SetDeleted toggles the soft-delete flag.
func (r *Repo) SetDeleted(ctx context.Context, adjustmentID id.ID, deleted bool) error {
	q := r.builder.Update(adjustmentsTable).
		Set("is_deleted", deleted).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": adjustmentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock adjustment", adjustmentID.String())
	}
	return nil
}

func applyFilter(q squirrel.SelectBuilder, filter adjustment.ListFilter) squirrel.SelectBuilder {
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"is_deleted": false})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"adjustment_no": pattern},
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
