// Package ledger provides the inventory ledger: an append-only log of
// stock movements derived from business documents.
package ledger

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// TransactionType identifies the kind of source document behind an entry.
// The set is closed: downstream consumers (reports, balances) match on
// these exact strings.
type TransactionType string

const (
	TypePurchaseOrder   TransactionType = "Purchase Order"
	TypeInvoice         TransactionType = "Invoice"
	TypeOrderSlip       TransactionType = "Order Slip"
	TypeCreditMemo      TransactionType = "Credit Memo"
	TypeStockAdjustment TransactionType = "Stock Adjustment"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypePurchaseOrder, TypeInvoice, TypeOrderSlip, TypeCreditMemo, TypeStockAdjustment:
		return true
	}
	return false
}

// StatusIndicator mirrors movement direction: "+" for incoming stock,
// "-" for outgoing. Derived from quantities, never set independently.
type StatusIndicator string

const (
	IndicatorIn  StatusIndicator = "+"
	IndicatorOut StatusIndicator = "-"
)

// Entry is one immutable row in the inventory ledger.
// Entries are never updated or deleted; corrections are new entries
// with the opposite sign.
type Entry struct {
	ID               id.ID           `db:"id" json:"id"`
	ItemID           id.ID           `db:"item_id" json:"itemId"`
	TransactionType  TransactionType `db:"transaction_type" json:"transactionType"`
	ReferenceNo      string          `db:"reference_no" json:"referenceNo"`
	CounterpartyName string          `db:"counterparty_name" json:"counterpartyName"`

	// TransactionDate is the business date of the source document
	// (delivery date, sales date, adjustment date), not the insert time.
	TransactionDate time.Time `db:"transaction_date" json:"transactionDate"`

	// Exactly one of QtyIn/QtyOut is nonzero.
	QtyIn  types.Quantity `db:"qty_in" json:"qtyIn"`
	QtyOut types.Quantity `db:"qty_out" json:"qtyOut"`

	StatusIndicator StatusIndicator `db:"status_indicator" json:"statusIndicator"`

	// UnitPrice is carried from the source line. Zero for adjustment
	// entries: adjustments correct quantity, not value.
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// WarehouseID is set for warehouse-scoped sources (purchase orders
	// and stock adjustments), nil otherwise.
	WarehouseID *id.ID `db:"warehouse_id" json:"warehouseId,omitempty"`

	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedBy id.ID     `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewInbound creates an entry that increases stock.
func NewInbound(itemID id.ID, txType TransactionType, qty types.Quantity) *Entry {
	return &Entry{
		ID:              id.New(),
		ItemID:          itemID,
		TransactionType: txType,
		QtyIn:           qty,
		StatusIndicator: IndicatorIn,
		CreatedAt:       time.Now().UTC(),
	}
}

// NewOutbound creates an entry that decreases stock.
func NewOutbound(itemID id.ID, txType TransactionType, qty types.Quantity) *Entry {
	return &Entry{
		ID:              id.New(),
		ItemID:          itemID,
		TransactionType: txType,
		QtyOut:          qty,
		StatusIndicator: IndicatorOut,
		CreatedAt:       time.Now().UTC(),
	}
}

// Validate checks the entry invariants before it is written.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.ItemID) {
		return apperror.NewValidation("item is required").
			WithDetail("field", "itemId")
	}

	if !e.TransactionType.Valid() {
		return apperror.NewValidation("unknown transaction type").
			WithDetail("field", "transactionType").
			WithDetail("value", string(e.TransactionType))
	}

	if e.ReferenceNo == "" {
		return apperror.NewValidation("reference number is required").
			WithDetail("field", "referenceNo")
	}

	if e.QtyIn.IsNegative() || e.QtyOut.IsNegative() {
		return apperror.NewValidation("quantities must be non-negative").
			WithDetail("referenceNo", e.ReferenceNo)
	}

	// Exactly one side of the movement carries quantity.
	if e.QtyIn.IsZero() == e.QtyOut.IsZero() {
		return apperror.NewValidation("exactly one of qty_in and qty_out must be nonzero").
			WithDetail("referenceNo", e.ReferenceNo).
			WithDetail("qtyIn", e.QtyIn.String()).
			WithDetail("qtyOut", e.QtyOut.String())
	}

	// The indicator is derived from quantities and must agree with them.
	wantIndicator := IndicatorOut
	if e.QtyIn.IsPositive() {
		wantIndicator = IndicatorIn
	}
	if e.StatusIndicator != wantIndicator {
		return apperror.NewValidation("status indicator disagrees with quantities").
			WithDetail("referenceNo", e.ReferenceNo).
			WithDetail("indicator", string(e.StatusIndicator))
	}

	if e.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must be non-negative").
			WithDetail("referenceNo", e.ReferenceNo)
	}

	if e.TransactionType == TypeStockAdjustment && !e.UnitPrice.IsZero() {
		return apperror.NewValidation("adjustment entries must carry zero unit price").
			WithDetail("referenceNo", e.ReferenceNo)
	}

	if e.TransactionDate.IsZero() {
		return apperror.NewValidation("transaction date is required").
			WithDetail("referenceNo", e.ReferenceNo)
	}

	return nil
}

// SignedQuantity returns the movement with direction applied.
func (e *Entry) SignedQuantity() types.Quantity {
	if e.StatusIndicator == IndicatorOut {
		return e.QtyOut.Neg()
	}
	return e.QtyIn
}
