package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// LedgerHandler serves the inventory ledger endpoints. Writes happen
// only through the normalization routes; the ledger itself is
// append-only and exposes reads.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// actingUser resolves the authenticated user's id for attribution.
func (h *LedgerHandler) actingUser(c *gin.Context) (id.ID, bool) {
	raw := h.GetUserID(c)
	if raw == "" {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil(), false
	}
	userID, err := id.Parse(raw)
	if err != nil {
		// Token subjects are not always uuids; fall back to an
		// anonymous attribution rather than rejecting the write.
		return id.Nil(), true
	}
	return userID, true
}

// NormalizePurchaseOrder handles POST /v1/ledger/purchase-orders/:id.
func (h *LedgerHandler) NormalizePurchaseOrder(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	entries, err := h.service.CreateFromPurchaseOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEntries(entries))
}

// NormalizeInvoice handles POST /v1/ledger/invoices/:id.
func (h *LedgerHandler) NormalizeInvoice(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	entries, err := h.service.CreateFromInvoice(c.Request.Context(), invoiceID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEntries(entries))
}

// NormalizeOrderSlip handles POST /v1/ledger/order-slips/:id.
func (h *LedgerHandler) NormalizeOrderSlip(c *gin.Context) {
	slipID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	entries, err := h.service.CreateFromOrderSlip(c.Request.Context(), slipID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEntries(entries))
}

// NormalizeSalesReturn handles POST /v1/ledger/sales-returns/:id.
func (h *LedgerHandler) NormalizeSalesReturn(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	entries, err := h.service.CreateFromSalesReturn(c.Request.Context(), returnID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEntries(entries))
}

// List handles GET /v1/ledger.
func (h *LedgerHandler) List(c *gin.Context) {
	var query dto.ListEntriesQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := ledger.ListFilter{}
	filter.Search = query.Search
	filter.Limit = query.Limit
	filter.Offset = query.Offset
	filter.ReferenceNo = query.ReferenceNo
	filter.DateFrom = query.DateFrom
	filter.DateTo = query.DateTo
	if query.ItemID != "" {
		itemID, err := id.Parse(query.ItemID)
		if err == nil {
			filter.ItemID = &itemID
		}
	}
	if query.WarehouseID != "" {
		warehouseID, err := id.Parse(query.WarehouseID)
		if err == nil {
			filter.WarehouseID = &warehouseID
		}
	}
	if query.TransactionType != "" {
		tt := ledger.TransactionType(query.TransactionType)
		if !tt.Valid() {
			h.Error(c, apperror.NewValidation("unknown transaction type").
				WithDetail("transactionType", query.TransactionType))
			return
		}
		filter.TransactionType = &tt
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.FromEntries(result.Items),
		TotalCount: result.TotalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Get handles GET /v1/ledger/:id.
func (h *LedgerHandler) Get(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	entry, err := h.service.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEntry(entry))
}

// ListByReference handles GET /v1/ledger/reference/:referenceNo.
func (h *LedgerHandler) ListByReference(c *gin.Context) {
	referenceNo := c.Param("referenceNo")
	if referenceNo == "" {
		h.Error(c, apperror.NewValidation("reference number is required"))
		return
	}
	entries, err := h.service.ListByReference(c.Request.Context(), referenceNo)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEntries(entries))
}
