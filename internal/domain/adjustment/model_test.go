package adjustment

import (
	"context"
	"testing"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func TestCalculateDifference(t *testing.T) {
	tests := []struct {
		name     string
		system   types.Quantity
		physical types.Quantity
		want     types.Quantity
	}{
		{"surplus", types.NewQuantityFromInt(10), types.NewQuantityFromInt(12), types.NewQuantityFromInt(2)},
		{"shortage", types.NewQuantityFromInt(10), types.NewQuantityFromInt(7), types.NewQuantityFromInt(-3)},
		{"exact count", types.NewQuantityFromInt(5), types.NewQuantityFromInt(5), 0},
		{"fractional", types.NewQuantityFromFloat64(1.5), types.NewQuantityFromFloat64(2.25), types.NewQuantityFromFloat64(0.75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateDifference(tt.system, tt.physical); got != tt.want {
				t.Errorf("CalculateDifference(%s, %s) = %s, want %s",
					tt.system, tt.physical, got, tt.want)
			}
		})
	}
}

func TestItemRecalculate(t *testing.T) {
	item := Item{
		SystemQty:   types.NewQuantityFromInt(10),
		PhysicalQty: types.NewQuantityFromInt(8),
	}
	item.Recalculate()
	if item.Difference != types.NewQuantityFromInt(-2) {
		t.Errorf("Difference = %s, want -2.0000", item.Difference)
	}

	item.PhysicalQty = types.NewQuantityFromInt(15)
	item.Recalculate()
	if item.Difference != types.NewQuantityFromInt(5) {
		t.Errorf("Difference after edit = %s, want 5.0000", item.Difference)
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	valid := NewStockAdjustment(id.New(), "cycle count", time.Now().UTC())
	valid.AddItem(id.New(), types.NewQuantityFromInt(1), types.NewQuantityFromInt(2), "")
	if err := valid.Validate(ctx); err != nil {
		t.Fatalf("valid adjustment rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*StockAdjustment)
	}{
		{"missing warehouse", func(a *StockAdjustment) { a.WarehouseID = id.Nil() }},
		{"missing type", func(a *StockAdjustment) { a.AdjustmentType = "" }},
		{"missing date", func(a *StockAdjustment) { a.AdjustmentDate = time.Time{} }},
		{"nil item reference", func(a *StockAdjustment) { a.Items[0].ItemID = id.Nil() }},
		{"negative quantity", func(a *StockAdjustment) { a.Items[0].SystemQty = types.NewQuantityFromInt(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := NewStockAdjustment(id.New(), "cycle count", time.Now().UTC())
			adj.AddItem(id.New(), types.NewQuantityFromInt(1), types.NewQuantityFromInt(2), "")
			tt.mutate(adj)
			if err := adj.Validate(ctx); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestCanModify(t *testing.T) {
	adj := NewStockAdjustment(id.New(), "cycle count", time.Now().UTC())
	if err := adj.CanModify(); err != nil {
		t.Fatalf("draft should be modifiable: %v", err)
	}

	adj.Status = StatusFinalized
	err := adj.CanModify()
	if err == nil {
		t.Fatal("finalized document should reject modification")
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Message != "Only draft stock adjustments can be modified" {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
}

func TestToLedgerDocument(t *testing.T) {
	adj := NewStockAdjustment(id.New(), "write-off", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	adj.AdjustmentNo = "ADJ-2026-00007"
	adj.Notes = "expired batch"
	adj.AddItem(id.New(), types.NewQuantityFromInt(10), types.NewQuantityFromInt(4), "expired")

	doc := adj.ToLedgerDocument()
	if doc.AdjustmentNo != "ADJ-2026-00007" {
		t.Errorf("AdjustmentNo = %s", doc.AdjustmentNo)
	}
	if doc.WarehouseID == nil || *doc.WarehouseID != adj.WarehouseID {
		t.Error("warehouse not carried over")
	}
	if len(doc.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(doc.Items))
	}
	if doc.Items[0].Difference != types.NewQuantityFromInt(-6) {
		t.Errorf("Difference = %s, want -6.0000", doc.Items[0].Difference)
	}
}
