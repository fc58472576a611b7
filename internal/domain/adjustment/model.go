// Package adjustment provides the stock adjustment document: the one
// user-owned source of inventory ledger entries, with a draft to
// finalized lifecycle.
package adjustment

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
)

// Status of a stock adjustment document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinalized Status = "finalized"
)

// EntityType identifies adjustments in the activity log.
const EntityType = "stock_adjustment"

// StockAdjustment is a manual quantity correction document.
// Draft documents are freely editable; finalize flips the status once,
// irreversibly, and materializes ledger entries for counted differences.
type StockAdjustment struct {
	ID             id.ID     `db:"id" json:"id"`
	AdjustmentNo   string    `db:"adjustment_no" json:"adjustmentNo"`
	AdjustmentDate time.Time `db:"adjustment_date" json:"adjustmentDate"`
	WarehouseID    id.ID     `db:"warehouse_id" json:"warehouseId"`

	// AdjustmentType is a free-form classification, e.g. "physical_count",
	// "damage", "theft".
	AdjustmentType string `db:"adjustment_type" json:"adjustmentType"`
	Notes          string `db:"notes" json:"notes,omitempty"`

	Status Status `db:"status" json:"status"`

	// ProcessedBy is nil while draft, set to the finalizing user on
	// finalize.
	ProcessedBy *string `db:"processed_by" json:"processedBy,omitempty"`

	IsDeleted bool      `db:"is_deleted" json:"-"`
	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Table part: counted items
	Items []Item `db:"-" json:"items"`
}

// Item is one counted line of a stock adjustment.
type Item struct {
	ID           id.ID `db:"id" json:"id"`
	AdjustmentID id.ID `db:"adjustment_id" json:"adjustmentId"`
	ItemID       id.ID `db:"item_id" json:"itemId"`

	SystemQty   types.Quantity `db:"system_qty" json:"systemQty"`
	PhysicalQty types.Quantity `db:"physical_qty" json:"physicalQty"`

	// Difference is derived: physical minus system. Positive means
	// stock found, negative means stock missing.
	Difference types.Quantity `db:"difference" json:"difference"`

	Reason string `db:"reason" json:"reason,omitempty"`
}

// CalculateDifference is the difference rule: counted minus expected.
func CalculateDifference(systemQty, physicalQty types.Quantity) types.Quantity {
	return physicalQty - systemQty
}

// Recalculate recomputes the derived difference after a quantity edit.
func (i *Item) Recalculate() {
	i.Difference = CalculateDifference(i.SystemQty, i.PhysicalQty)
}

// NewStockAdjustment creates a draft adjustment.
func NewStockAdjustment(warehouseID id.ID, adjustmentType string, date time.Time) *StockAdjustment {
	now := time.Now().UTC()
	return &StockAdjustment{
		ID:             id.New(),
		AdjustmentDate: date,
		WarehouseID:    warehouseID,
		AdjustmentType: adjustmentType,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          make([]Item, 0),
	}
}

// AddItem appends a counted line with the difference derived.
func (a *StockAdjustment) AddItem(itemID id.ID, systemQty, physicalQty types.Quantity, reason string) {
	item := Item{
		ID:           id.New(),
		AdjustmentID: a.ID,
		ItemID:       itemID,
		SystemQty:    systemQty,
		PhysicalQty:  physicalQty,
		Difference:   CalculateDifference(systemQty, physicalQty),
		Reason:       reason,
	}
	a.Items = append(a.Items, item)
}

// Validate checks document invariants.
func (a *StockAdjustment) Validate(ctx context.Context) error {
	if id.IsNil(a.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if a.AdjustmentType == "" {
		return apperror.NewValidation("adjustment type is required").
			WithDetail("field", "adjustmentType")
	}

	if a.AdjustmentDate.IsZero() {
		return apperror.NewValidation("adjustment date is required").
			WithDetail("field", "adjustmentDate")
	}

	for i, item := range a.Items {
		if id.IsNil(item.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.SystemQty.IsNegative() || item.PhysicalQty.IsNegative() {
			return apperror.NewValidation("quantities must be non-negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// CanModify rejects item edits on non-draft documents.
func (a *StockAdjustment) CanModify() error {
	if a.Status != StatusDraft {
		return apperror.NewConflict("Only draft stock adjustments can be modified").
			WithDetail("adjustmentNo", a.AdjustmentNo).
			WithDetail("status", string(a.Status))
	}
	return nil
}

// ToLedgerDocument converts the adjustment to the ledger's read shape.
func (a *StockAdjustment) ToLedgerDocument() *ledger.AdjustmentDocument {
	warehouseID := a.WarehouseID
	doc := &ledger.AdjustmentDocument{
		ID:             a.ID,
		AdjustmentNo:   a.AdjustmentNo,
		AdjustmentDate: a.AdjustmentDate,
		WarehouseID:    &warehouseID,
		AdjustmentType: a.AdjustmentType,
		Notes:          a.Notes,
		Items:          make([]ledger.AdjustmentDocumentItem, 0, len(a.Items)),
	}
	for _, item := range a.Items {
		doc.Items = append(doc.Items, ledger.AdjustmentDocumentItem{
			ItemID:      item.ItemID,
			SystemQty:   item.SystemQty,
			PhysicalQty: item.PhysicalQty,
			Difference:  item.Difference,
			Reason:      item.Reason,
		})
	}
	return doc
}
