package adjustment

import (
	"context"
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/domain"
)

// ListFilter narrows adjustment queries. Soft-deleted documents are
// always excluded.
type ListFilter struct {
	domain.ListFilter

	WarehouseID *id.ID
	Status      *Status
}

// Repository persists stock adjustments.
//
// CreateHeader and CreateItems are deliberately separate calls, not one
// transactional write: the service layer owns the two-phase create
// contract and compensates with HardDeleteHeader when the item phase
// fails. Finalize is a conditional single-statement update so that
// concurrent finalize attempts race on the row, not in memory.
type Repository interface {
	CreateHeader(ctx context.Context, adj *StockAdjustment) error
	CreateItems(ctx context.Context, adjustmentID id.ID, items []Item) error

	// HardDeleteHeader physically removes a header row. Only used to
	// compensate a failed item insert during create.
	HardDeleteHeader(ctx context.Context, adjustmentID id.ID) error

	// GetByID returns the header without items. Soft-deleted rows are
	// not found.
	GetByID(ctx context.Context, adjustmentID id.ID) (*StockAdjustment, error)
	GetItems(ctx context.Context, adjustmentID id.ID) ([]Item, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockAdjustment], error)

	// Finalize flips status to finalized iff the row is still a live
	// draft. Returns false when no row matched, which means the
	// document was already finalized, deleted, or never existed.
	Finalize(ctx context.Context, adjustmentID id.ID, processedBy string, at time.Time) (bool, error)

	AddItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, adjustmentID, itemID id.ID) error

	// SetDeleted toggles the soft-delete flag.
	SetDeleted(ctx context.Context, adjustmentID id.ID, deleted bool) error
}
