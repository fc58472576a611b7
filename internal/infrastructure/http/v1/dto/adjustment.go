package dto

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/adjustment"
)

// --- Requests ---

// AdjustmentItemRequest is one counted line in a create request.
type AdjustmentItemRequest struct {
	ItemID      string  `json:"itemId" binding:"required"`
	SystemQty   float64 `json:"systemQty" binding:"min=0"`
	PhysicalQty float64 `json:"physicalQty" binding:"min=0"`
	Reason      string  `json:"reason"`
}

// CreateAdjustmentRequest creates a draft adjustment with items.
type CreateAdjustmentRequest struct {
	AdjustmentDate time.Time               `json:"adjustmentDate"`
	WarehouseID    string                  `json:"warehouseId" binding:"required"`
	AdjustmentType string                  `json:"adjustmentType" binding:"required"`
	Notes          string                  `json:"notes"`
	Items          []AdjustmentItemRequest `json:"items"`
}

// ToEntity converts the request to a domain document.
func (r *CreateAdjustmentRequest) ToEntity() (*adjustment.StockAdjustment, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, apperror.NewValidation("invalid warehouse id").
			WithDetail("warehouseId", r.WarehouseID)
	}

	date := r.AdjustmentDate
	if date.IsZero() {
		date = time.Now().UTC()
	}

	adj := adjustment.NewStockAdjustment(warehouseID, r.AdjustmentType, date)
	adj.Notes = r.Notes

	for _, item := range r.Items {
		itemID, err := id.Parse(item.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid item id").
				WithDetail("itemId", item.ItemID)
		}
		adj.AddItem(
			itemID,
			types.NewQuantityFromFloat64(item.SystemQty),
			types.NewQuantityFromFloat64(item.PhysicalQty),
			item.Reason,
		)
	}

	return adj, nil
}

// AddItemRequest appends a counted line to a draft.
type AddItemRequest struct {
	ItemID      string  `json:"itemId" binding:"required"`
	SystemQty   float64 `json:"systemQty" binding:"min=0"`
	PhysicalQty float64 `json:"physicalQty" binding:"min=0"`
	Reason      string  `json:"reason"`
}

// UpdateItemRequest edits quantities of a counted line.
type UpdateItemRequest struct {
	SystemQty   float64 `json:"systemQty" binding:"min=0"`
	PhysicalQty float64 `json:"physicalQty" binding:"min=0"`
	Reason      string  `json:"reason"`
}

// ListAdjustmentsQuery filters the adjustment list.
type ListAdjustmentsQuery struct {
	WarehouseID string `form:"warehouseId"`
	Status      string `form:"status"`
	Search      string `form:"search"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// --- Responses ---

// AdjustmentItemResponse is one counted line.
type AdjustmentItemResponse struct {
	ID          string  `json:"id"`
	ItemID      string  `json:"itemId"`
	SystemQty   float64 `json:"systemQty"`
	PhysicalQty float64 `json:"physicalQty"`
	Difference  float64 `json:"difference"`
	Reason      string  `json:"reason,omitempty"`
}

// AdjustmentResponse is a full adjustment with items.
type AdjustmentResponse struct {
	ID             string                   `json:"id"`
	AdjustmentNo   string                   `json:"adjustmentNo"`
	AdjustmentDate time.Time                `json:"adjustmentDate"`
	WarehouseID    string                   `json:"warehouseId"`
	AdjustmentType string                   `json:"adjustmentType"`
	Notes          string                   `json:"notes,omitempty"`
	Status         string                   `json:"status"`
	ProcessedBy    *string                  `json:"processedBy,omitempty"`
	CreatedBy      string                   `json:"createdBy"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
	Items          []AdjustmentItemResponse `json:"items"`
}

// FromAdjustment maps a domain document to the response shape.
func FromAdjustment(adj *adjustment.StockAdjustment) AdjustmentResponse {
	items := make([]AdjustmentItemResponse, 0, len(adj.Items))
	for _, item := range adj.Items {
		items = append(items, AdjustmentItemResponse{
			ID:          item.ID.String(),
			ItemID:      item.ItemID.String(),
			SystemQty:   item.SystemQty.Float64(),
			PhysicalQty: item.PhysicalQty.Float64(),
			Difference:  item.Difference.Float64(),
			Reason:      item.Reason,
		})
	}

	return AdjustmentResponse{
		ID:             adj.ID.String(),
		AdjustmentNo:   adj.AdjustmentNo,
		AdjustmentDate: adj.AdjustmentDate,
		WarehouseID:    adj.WarehouseID.String(),
		AdjustmentType: adj.AdjustmentType,
		Notes:          adj.Notes,
		Status:         string(adj.Status),
		ProcessedBy:    adj.ProcessedBy,
		CreatedBy:      adj.CreatedBy,
		CreatedAt:      adj.CreatedAt,
		UpdatedAt:      adj.UpdatedAt,
		Items:          items,
	}
}

// FromAdjustmentItem maps a single counted line.
func FromAdjustmentItem(item *adjustment.Item) AdjustmentItemResponse {
	return AdjustmentItemResponse{
		ID:          item.ID.String(),
		ItemID:      item.ItemID.String(),
		SystemQty:   item.SystemQty.Float64(),
		PhysicalQty: item.PhysicalQty.Float64(),
		Difference:  item.Difference.Float64(),
		Reason:      item.Reason,
	}
}

// FromAdjustments maps a slice of documents.
func FromAdjustments(adjustments []*adjustment.StockAdjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, 0, len(adjustments))
	for _, adj := range adjustments {
		out = append(out, FromAdjustment(adj))
	}
	return out
}
