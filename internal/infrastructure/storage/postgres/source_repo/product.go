package source_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements ledger.ProductFinder.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.ProductFinder = (*ProductRepo)(nil)

// NewProductRepo creates a product name resolver.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindIDByName resolves an item id from its product name. Sales return
// lines carry names, not ids, so this is the only name-keyed lookup in
// the system.
func (r *ProductRepo) FindIDByName(ctx context.Context, name string) (id.ID, error) {
	q := r.builder.Select("id").
		From(productsTable).
		Where(squirrel.Eq{"name": name}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return id.Nil(), fmt.Errorf("build query: %w", err)
	}

	var productID id.ID
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return id.Nil(), apperror.NewNotFound("product", name)
		}
		return id.Nil(), fmt.Errorf("select product: %w", err)
	}

	return productID, nil
}
