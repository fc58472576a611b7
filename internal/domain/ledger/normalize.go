package ledger

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/pkg/logger"
)

// Fallback counterparty names when the reference is missing or the
// contact row is gone. The fallback is part of the persisted shape.
const (
	unknownSupplier     = "Unknown Supplier"
	unknownCustomer     = "Unknown Customer"
	internalCounterpart = "Internal"
)

// CreateFromPurchaseOrder derives entries from a delivered purchase
// order: one incoming movement per order line.
func (s *Service) CreateFromPurchaseOrder(ctx context.Context, orderID, actingUserID id.ID) ([]*Entry, error) {
	order, err := s.orders.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != POStatusDelivered {
		return nil, apperror.NewInvalidStatus("Purchase Order must be delivered to create inventory logs").
			WithDetail("orderNo", order.OrderNo).
			WithDetail("status", order.Status)
	}

	counterparty := s.resolveCounterparty(ctx, order.SupplierID, unknownSupplier)
	txDate := order.TransactionDate()

	entries := make([]*Entry, 0, len(order.Items))
	for _, item := range order.Items {
		entry := NewInbound(item.ItemID, TypePurchaseOrder, item.Quantity)
		entry.ReferenceNo = order.OrderNo
		entry.CounterpartyName = counterparty
		entry.TransactionDate = txDate
		entry.UnitPrice = item.UnitPrice
		entry.WarehouseID = order.WarehouseID
		entry.Notes = item.Notes
		entry.CreatedBy = actingUserID
		entries = append(entries, entry)
	}

	return s.Write(ctx, entries)
}

// CreateFromInvoice derives entries from a sent or paid invoice: one
// outgoing movement per invoice line.
func (s *Service) CreateFromInvoice(ctx context.Context, invoiceID, actingUserID id.ID) ([]*Entry, error) {
	invoice, err := s.invoices.GetWithItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status != InvoiceStatusSent && invoice.Status != InvoiceStatusPaid {
		return nil, apperror.NewInvalidStatus("Invoice must be sent or paid to create inventory logs").
			WithDetail("invoiceNo", invoice.InvoiceNo).
			WithDetail("status", invoice.Status)
	}

	counterparty := s.resolveCounterparty(ctx, invoice.CustomerID, unknownCustomer)
	note := fmt.Sprintf("Sale on %s", invoice.SalesDate.Format("2006-01-02"))

	entries := make([]*Entry, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		entry := NewOutbound(item.ItemID, TypeInvoice, item.Quantity)
		entry.ReferenceNo = invoice.InvoiceNo
		entry.CounterpartyName = counterparty
		entry.TransactionDate = invoice.SalesDate
		entry.UnitPrice = item.UnitPrice
		entry.Notes = note
		entry.CreatedBy = actingUserID
		entries = append(entries, entry)
	}

	return s.Write(ctx, entries)
}

// CreateFromOrderSlip derives entries from a finalized order slip: one
// outgoing movement per slip line.
func (s *Service) CreateFromOrderSlip(ctx context.Context, slipID, actingUserID id.ID) ([]*Entry, error) {
	slip, err := s.slips.GetWithItems(ctx, slipID)
	if err != nil {
		return nil, err
	}

	if slip.Status != OrderSlipStatusFinalized {
		return nil, apperror.NewInvalidStatus("Order Slip must be finalized to create inventory logs").
			WithDetail("slipNo", slip.SlipNo).
			WithDetail("status", slip.Status)
	}

	counterparty := s.resolveCounterparty(ctx, slip.CustomerID, unknownCustomer)
	note := fmt.Sprintf("Sale on %s", slip.SalesDate.Format("2006-01-02"))

	entries := make([]*Entry, 0, len(slip.Items))
	for _, item := range slip.Items {
		entry := NewOutbound(item.ItemID, TypeOrderSlip, item.Quantity)
		entry.ReferenceNo = slip.SlipNo
		entry.CounterpartyName = counterparty
		entry.TransactionDate = slip.SalesDate
		entry.UnitPrice = item.UnitPrice
		entry.Notes = note
		entry.CreatedBy = actingUserID
		entries = append(entries, entry)
	}

	return s.Write(ctx, entries)
}

// CreateFromSalesReturn derives entries from a processed sales return:
// stock flows back in, typed as a credit memo. Return lines are embedded
// by product name; lines whose name does not resolve to an item are
// skipped with a warning rather than failing the batch.
func (s *Service) CreateFromSalesReturn(ctx context.Context, returnID, actingUserID id.ID) ([]*Entry, error) {
	ret, err := s.returns.GetWithProducts(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if ret.Status != ReturnStatusProcessed {
		return nil, apperror.NewInvalidStatus("Sales Return must be processed to create inventory logs").
			WithDetail("returnId", ret.ID.String()).
			WithDetail("status", ret.Status)
	}

	counterparty := s.resolveCounterparty(ctx, ret.CustomerID, unknownCustomer)

	referenceNo := ret.ReturnNo
	if referenceNo == "" {
		referenceNo = "RET-" + ret.ID.String()
	}

	entries := make([]*Entry, 0, len(ret.Products))
	for _, product := range ret.Products {
		itemID, err := s.products.FindIDByName(ctx, product.ProductName)
		if err != nil {
			if apperror.IsNotFound(err) {
				logger.Warn(ctx, "returned product not found, skipping line",
					"productName", product.ProductName,
					"returnId", ret.ID,
				)
				continue
			}
			return nil, err
		}

		entry := NewInbound(itemID, TypeCreditMemo, product.Quantity)
		entry.ReferenceNo = referenceNo
		entry.CounterpartyName = counterparty
		entry.TransactionDate = ret.ReturnDate
		entry.UnitPrice = product.OriginalPrice
		entry.Notes = fmt.Sprintf("Return of %s", product.ProductName)
		entry.CreatedBy = actingUserID
		entries = append(entries, entry)
	}

	return s.Write(ctx, entries)
}

// CreateFromAdjustment derives entries from a finalized stock
// adjustment. The adjustment lifecycle has already flipped the status
// and hands in the loaded document, so no status check happens here.
// Items with zero difference are skipped: nothing moved.
func (s *Service) CreateFromAdjustment(ctx context.Context, doc *AdjustmentDocument, actingUserID id.ID) ([]*Entry, error) {
	entries := make([]*Entry, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item.Difference.IsZero() {
			continue
		}

		var entry *Entry
		if item.Difference.IsPositive() {
			entry = NewInbound(item.ItemID, TypeStockAdjustment, item.Difference)
		} else {
			entry = NewOutbound(item.ItemID, TypeStockAdjustment, item.Difference.Abs())
		}

		entry.ReferenceNo = doc.AdjustmentNo
		entry.CounterpartyName = internalCounterpart
		entry.TransactionDate = doc.AdjustmentDate
		entry.WarehouseID = doc.WarehouseID
		entry.Notes = adjustmentNote(doc, item)
		entry.CreatedBy = actingUserID
		entries = append(entries, entry)
	}

	return s.Write(ctx, entries)
}

// adjustmentNote prefers the per-line reason, falling back to the
// document classification and header note.
func adjustmentNote(doc *AdjustmentDocument, item AdjustmentDocumentItem) string {
	if item.Reason != "" {
		return item.Reason
	}
	return fmt.Sprintf("%s: %s", doc.AdjustmentType, doc.Notes)
}

// resolveCounterparty looks up the contact display name once per
// document. A missing reference or vanished contact row degrades to the
// fallback name instead of failing the whole batch.
func (s *Service) resolveCounterparty(ctx context.Context, contactID *id.ID, fallback string) string {
	if contactID == nil || id.IsNil(*contactID) {
		return fallback
	}

	name, err := s.contacts.GetName(ctx, *contactID)
	if err != nil {
		logger.Warn(ctx, "counterparty lookup failed, using fallback",
			"contactId", *contactID,
			"error", err,
		)
		return fallback
	}
	return name
}
