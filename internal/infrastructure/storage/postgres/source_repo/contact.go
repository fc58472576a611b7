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

const contactsTable = "contacts"

// ContactRepo implements ledger.ContactReader.
type ContactRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.ContactReader = (*ContactRepo)(nil)

// NewContactRepo creates a contact name resolver.
func NewContactRepo(txManager *postgres.TxManager) *ContactRepo {
	return &ContactRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetName resolves a contact display name by id.
func (r *ContactRepo) GetName(ctx context.Context, contactID id.ID) (string, error) {
	q := r.builder.Select("name").
		From(contactsTable).
		Where(squirrel.Eq{"id": contactID})

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var name string
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.NewNotFound("contact", contactID.String())
		}
		return "", fmt.Errorf("select contact: %w", err)
	}

	return name, nil
}
