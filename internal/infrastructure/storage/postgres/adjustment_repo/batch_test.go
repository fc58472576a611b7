package adjustment_repo

import (
	"strings"
	"testing"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/adjustment"
)

func TestBuildItemInserts(t *testing.T) {
	r := NewRepo(nil)
	adjustmentID := id.New()
	items := []adjustment.Item{
		{ID: id.New(), ItemID: id.New(), SystemQty: types.NewQuantityFromInt(10), PhysicalQty: types.NewQuantityFromInt(12), Reason: "found"},
		{ID: id.New(), ItemID: id.New(), SystemQty: types.NewQuantityFromInt(5), PhysicalQty: types.NewQuantityFromInt(5)},
	}

	queries, err := r.buildItemInserts(adjustmentID, items)
	if err != nil {
		t.Fatalf("buildItemInserts failed: %v", err)
	}
	if len(queries) != len(items) {
		t.Fatalf("queries = %d, want %d", len(queries), len(items))
	}

	for i, q := range queries {
		if !strings.HasPrefix(q.SQL, "INSERT INTO "+itemsTable) {
			t.Errorf("query %d: unexpected SQL %q", i, q.SQL)
		}
		if len(q.Args) != len(r.itemColumns) {
			t.Errorf("query %d: args = %d, want %d", i, len(q.Args), len(r.itemColumns))
		}
	}

	for i := range items {
		if items[i].AdjustmentID != adjustmentID {
			t.Errorf("item %d: adjustment id not stamped", i)
		}
	}
}

func TestBuildItemInserts_Empty(t *testing.T) {
	r := NewRepo(nil)

	queries, err := r.buildItemInserts(id.New(), nil)
	if err != nil {
		t.Fatalf("buildItemInserts failed: %v", err)
	}
	if len(queries) != 0 {
		t.Fatalf("queries = %d, want 0", len(queries))
	}
}
