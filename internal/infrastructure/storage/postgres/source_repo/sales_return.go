package source_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const salesReturnsTable = "sales_returns"

// SalesReturnRepo implements ledger.SalesReturnReader.
// Returned products are embedded in the row as a JSON document rather
// than normalized item rows, so the whole shape comes from one read.
type SalesReturnRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.SalesReturnReader = (*SalesReturnRepo)(nil)

// NewSalesReturnRepo creates a sales return reader.
func NewSalesReturnRepo(txManager *postgres.TxManager) *SalesReturnRepo {
	return &SalesReturnRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetWithProducts loads a sales return with its embedded product lines.
func (r *SalesReturnRepo) GetWithProducts(ctx context.Context, returnID id.ID) (*ledger.SalesReturn, error) {
	q := r.builder.Select(
		"id", "return_no", "status", "return_date", "customer_id", "returned_products",
	).From(salesReturnsTable).
		Where(squirrel.Eq{"id": returnID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ret ledger.SalesReturn
	var productsJSON []byte

	querier := r.txManager.GetQuerier(ctx)
	row := querier.QueryRow(ctx, sql, args...)
	err = row.Scan(&ret.ID, &ret.ReturnNo, &ret.Status, &ret.ReturnDate, &ret.CustomerID, &productsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("sales return", returnID.String())
		}
		return nil, fmt.Errorf("select sales return: %w", err)
	}

	ret.Products = make([]ledger.ReturnedProduct, 0)
	if len(productsJSON) > 0 {
		if err := json.Unmarshal(productsJSON, &ret.Products); err != nil {
			return nil, fmt.Errorf("decode returned products: %w", err)
		}
	}

	return &ret, nil
}
