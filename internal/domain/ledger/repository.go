package ledger

import (
	"context"
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/domain"
)

// ListFilter narrows ledger queries.
type ListFilter struct {
	domain.ListFilter

	ItemID          *id.ID
	WarehouseID     *id.ID
	TransactionType *TransactionType
	ReferenceNo     string

	// DateFrom and DateTo bound transaction_date inclusively.
	DateFrom *time.Time
	DateTo   *time.Time
}

// Repository persists ledger entries. The ledger is append-only: there
// is no update or delete.
type Repository interface {
	// CreateBatch inserts all entries of one source document invocation
	// as a single batch. All-or-nothing at the store level.
	CreateBatch(ctx context.Context, entries []*Entry) error

	// GetByID retrieves a single entry.
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)

	// List retrieves entries with filtering and pagination.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Entry], error)

	// ListByReference retrieves all entries written for one source
	// document, ordered by creation.
	ListByReference(ctx context.Context, referenceNo string) ([]*Entry, error)

	// CountByReference reports how many entries a source document has
	// produced. Used by the finalize repair path.
	CountByReference(ctx context.Context, referenceNo string) (int64, error)
}
