package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/activity"
	"stockledger/internal/domain/adjustment"
	"stockledger/internal/infrastructure/http/v1/dto"
)

const historyLimit = 100

// AdjustmentHandler serves the stock adjustment endpoints.
type AdjustmentHandler struct {
	*BaseHandler
	service  *adjustment.Service
	activity activity.Recorder
}

func NewAdjustmentHandler(service *adjustment.Service, recorder activity.Recorder) *AdjustmentHandler {
	return &AdjustmentHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		activity:    recorder,
	}
}

// Create handles POST /v1/adjustments.
func (h *AdjustmentHandler) Create(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	adj, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), adj)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created.ID.String())
}

// Get handles GET /v1/adjustments/:id. A missing document yields a
// null body, not an error.
func (h *AdjustmentHandler) Get(c *gin.Context) {
	adjustmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	adj, err := h.service.Get(c.Request.Context(), adjustmentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if adj == nil {
		h.OK(c, nil)
		return
	}
	h.OK(c, dto.FromAdjustment(adj))
}

// List handles GET /v1/adjustments.
func (h *AdjustmentHandler) List(c *gin.Context) {
	var query dto.ListAdjustmentsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := adjustment.ListFilter{}
	filter.Search = query.Search
	filter.Limit = query.Limit
	filter.Offset = query.Offset
	if query.WarehouseID != "" {
		warehouseID, err := id.Parse(query.WarehouseID)
		if err == nil {
			filter.WarehouseID = &warehouseID
		}
	}
	if query.Status != "" {
		status := adjustment.Status(query.Status)
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromAdjustments(result.Items),
		TotalCount: result.TotalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Delete handles DELETE /v1/adjustments/:id. Only drafts can be removed.
func (h *AdjustmentHandler) Delete(c *gin.Context) {
	adjustmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), adjustmentID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Finalize handles POST /v1/adjustments/:id/finalize.
func (h *AdjustmentHandler) Finalize(c *gin.Context) {
	adjustmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	adj, err := h.service.Finalize(c.Request.Context(), adjustmentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAdjustment(adj))
}

// AddItem handles POST /v1/adjustments/:id/items.
func (h *AdjustmentHandler) AddItem(c *gin.Context) {
	adjustmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithDetail("itemId", req.ItemID))
		return
	}

	item, err := h.service.AddItem(
		c.Request.Context(),
		adjustmentID,
		itemID,
		types.NewQuantityFromFloat64(req.SystemQty),
		types.NewQuantityFromFloat64(req.PhysicalQty),
		req.Reason,
	)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAdjustmentItem(item))
}

// UpdateItem handles PUT /v1/adjustments/:id/items/:itemId.
func (h *AdjustmentHandler) UpdateItem(c *gin.Context) {
	adjustmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	itemRowID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.UpdateItem(c.Request.Context(), adjustmentID, itemRowID,
		types.NewQuantityFromFloat64(req.SystemQty),
		types.NewQuantityFromFloat64(req.PhysicalQty),
		req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAdjustmentItem(updated))
}

// DeleteItem handles DELETE /v1/adjustments/:id/items/:itemId.
func (h *AdjustmentHandler) DeleteItem(c *gin.Context) {
	adjustmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	itemRowID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	if err := h.service.DeleteItem(c.Request.Context(), adjustmentID, itemRowID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// History handles GET /v1/adjustments/:id/history.
func (h *AdjustmentHandler) History(c *gin.Context) {
	adjustmentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.activity.History(c.Request.Context(), adjustment.EntityType, adjustmentID, historyLimit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
