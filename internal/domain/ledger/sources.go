package ledger

import (
	"context"
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Read models for the source documents the ledger derives entries from.
// The ledger never writes these tables; it only reads headers, lines and
// the counterparty reference, keyed by document id.

// --- Purchase Order ---

// PurchaseOrderStatus values the ledger cares about.
const POStatusDelivered = "delivered"

// PurchaseOrder is the read shape of a purchase order.
type PurchaseOrder struct {
	ID           id.ID               `db:"id"`
	OrderNo      string              `db:"order_no"`
	Status       string              `db:"status"`
	OrderDate    time.Time           `db:"order_date"`
	DeliveryDate *time.Time          `db:"delivery_date"`
	SupplierID   *id.ID              `db:"supplier_id"`
	WarehouseID  *id.ID              `db:"warehouse_id"`
	Items        []PurchaseOrderItem `db:"-"`
}

// PurchaseOrderItem is one ordered line.
type PurchaseOrderItem struct {
	ItemID    id.ID          `db:"item_id"`
	Quantity  types.Quantity `db:"quantity"`
	UnitPrice types.Money    `db:"unit_price"`
	Notes     string         `db:"notes"`
}

// TransactionDate is the business date for ledger purposes: delivery
// date when set, order date otherwise.
func (p *PurchaseOrder) TransactionDate() time.Time {
	if p.DeliveryDate != nil {
		return *p.DeliveryDate
	}
	return p.OrderDate
}

// --- Invoice ---

const (
	InvoiceStatusSent = "sent"
	InvoiceStatusPaid = "paid"
)

// Invoice is the read shape of a sales invoice.
type Invoice struct {
	ID         id.ID          `db:"id"`
	InvoiceNo  string         `db:"invoice_no"`
	Status     string         `db:"status"`
	SalesDate  time.Time      `db:"sales_date"`
	CustomerID *id.ID         `db:"customer_id"`
	Items      []DocumentItem `db:"-"`
}

// --- Order Slip ---

const OrderSlipStatusFinalized = "finalized"

// OrderSlip is the read shape of an order slip.
type OrderSlip struct {
	ID         id.ID          `db:"id"`
	SlipNo     string         `db:"slip_no"`
	Status     string         `db:"status"`
	SalesDate  time.Time      `db:"sales_date"`
	CustomerID *id.ID         `db:"customer_id"`
	Items      []DocumentItem `db:"-"`
}

// DocumentItem is a sales line shared by invoices and order slips.
type DocumentItem struct {
	ItemID    id.ID          `db:"item_id"`
	Quantity  types.Quantity `db:"quantity"`
	UnitPrice types.Money    `db:"unit_price"`
}

// --- Sales Return ---

const ReturnStatusProcessed = "processed"

// SalesReturn is the read shape of a sales return. Returned products
// are embedded in the document rather than referencing item rows, so
// lines carry the product name and are resolved back to items by name.
type SalesReturn struct {
	ID         id.ID             `db:"id"`
	ReturnNo   string            `db:"return_no"`
	Status     string            `db:"status"`
	ReturnDate time.Time         `db:"return_date"`
	CustomerID *id.ID            `db:"customer_id"`
	Products   []ReturnedProduct `db:"-"`
}

// ReturnedProduct is one returned line, embedded in the return document.
type ReturnedProduct struct {
	ProductName   string         `json:"name"`
	Quantity      types.Quantity `json:"quantity"`
	OriginalPrice types.Money    `json:"originalPrice"`
	RefundAmount  types.Money    `json:"refundAmount"`
}

// --- Stock Adjustment ---

// AdjustmentDocument is the read shape of a finalized stock adjustment.
// The adjustment lifecycle lives in its own package; it hands the loaded
// document to the ledger after flipping the status, so the ledger does
// not re-check adjustment state.
type AdjustmentDocument struct {
	ID             id.ID
	AdjustmentNo   string
	AdjustmentDate time.Time
	WarehouseID    *id.ID
	AdjustmentType string
	Notes          string
	Items          []AdjustmentDocumentItem
}

// AdjustmentDocumentItem is one counted line of an adjustment.
type AdjustmentDocumentItem struct {
	ItemID      id.ID
	SystemQty   types.Quantity
	PhysicalQty types.Quantity
	Difference  types.Quantity
	Reason      string
}

// --- Reader interfaces, implemented by the storage layer ---

// PurchaseOrderReader loads purchase orders with their lines.
type PurchaseOrderReader interface {
	GetWithItems(ctx context.Context, orderID id.ID) (*PurchaseOrder, error)
}

// InvoiceReader loads invoices with their lines.
type InvoiceReader interface {
	GetWithItems(ctx context.Context, invoiceID id.ID) (*Invoice, error)
}

// OrderSlipReader loads order slips with their lines.
type OrderSlipReader interface {
	GetWithItems(ctx context.Context, slipID id.ID) (*OrderSlip, error)
}

// SalesReturnReader loads sales returns with their embedded products.
type SalesReturnReader interface {
	GetWithProducts(ctx context.Context, returnID id.ID) (*SalesReturn, error)
}

// ContactReader resolves counterparty display names.
type ContactReader interface {
	GetName(ctx context.Context, contactID id.ID) (string, error)
}

// ProductFinder resolves item ids from product names. Used only by the
// sales return path, where lines are embedded by name.
type ProductFinder interface {
	FindIDByName(ctx context.Context, name string) (id.ID, error)
}
