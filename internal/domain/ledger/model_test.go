package ledger

import (
	"context"
	"testing"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func validEntry() *Entry {
	e := NewInbound(id.New(), TypePurchaseOrder, types.NewQuantityFromInt(10))
	e.ReferenceNo = "PO-2026-00001"
	e.CounterpartyName = "Acme Supplies"
	e.TransactionDate = time.Now().UTC()
	e.UnitPrice = types.NewMoney(10.00)
	e.CreatedBy = id.New()
	return e
}

func TestEntryValidate(t *testing.T) {
	ctx := context.Background()

	if err := validEntry().Validate(ctx); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"nil item", func(e *Entry) { e.ItemID = id.Nil() }},
		{"unknown type", func(e *Entry) { e.TransactionType = "Transfer" }},
		{"missing reference", func(e *Entry) { e.ReferenceNo = "" }},
		{"negative qty", func(e *Entry) { e.QtyIn = types.NewQuantityFromInt(-1) }},
		{"both sides zero", func(e *Entry) { e.QtyIn = 0 }},
		{"both sides set", func(e *Entry) { e.QtyOut = types.NewQuantityFromInt(1) }},
		{"indicator disagrees", func(e *Entry) { e.StatusIndicator = IndicatorOut }},
		{"negative price", func(e *Entry) { e.UnitPrice = types.NewMoney(-1) }},
		{"missing date", func(e *Entry) { e.TransactionDate = time.Time{} }},
		{"adjustment with price", func(e *Entry) {
			e.TransactionType = TypeStockAdjustment
			e.UnitPrice = types.NewMoney(5)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(e)
			err := e.Validate(ctx)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %T", err)
			}
			if appErr.Code != apperror.CodeValidation {
				t.Errorf("expected validation code, got %s", appErr.Code)
			}
		})
	}
}

func TestEntryConstructorsSetIndicator(t *testing.T) {
	in := NewInbound(id.New(), TypePurchaseOrder, types.NewQuantityFromInt(5))
	if in.StatusIndicator != IndicatorIn {
		t.Errorf("inbound indicator = %q, want +", in.StatusIndicator)
	}
	if !in.QtyOut.IsZero() {
		t.Errorf("inbound entry has qty_out %s", in.QtyOut)
	}

	out := NewOutbound(id.New(), TypeInvoice, types.NewQuantityFromInt(5))
	if out.StatusIndicator != IndicatorOut {
		t.Errorf("outbound indicator = %q, want -", out.StatusIndicator)
	}
	if !out.QtyIn.IsZero() {
		t.Errorf("outbound entry has qty_in %s", out.QtyIn)
	}
}

func TestSignedQuantity(t *testing.T) {
	in := NewInbound(id.New(), TypePurchaseOrder, types.NewQuantityFromInt(5))
	if in.SignedQuantity() != types.NewQuantityFromInt(5) {
		t.Errorf("inbound signed quantity = %s", in.SignedQuantity())
	}

	out := NewOutbound(id.New(), TypeInvoice, types.NewQuantityFromInt(5))
	if out.SignedQuantity() != types.NewQuantityFromInt(-5) {
		t.Errorf("outbound signed quantity = %s", out.SignedQuantity())
	}
}
