package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/adjustment"
)

func TestCreateAdjustmentRequestToEntity(t *testing.T) {
	warehouseID := id.New()
	itemID := id.New()
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	req := CreateAdjustmentRequest{
		AdjustmentDate: date,
		WarehouseID:    warehouseID.String(),
		AdjustmentType: "cycle count",
		Notes:          "august count",
		Items: []AdjustmentItemRequest{
			{ItemID: itemID.String(), SystemQty: 10, PhysicalQty: 12.5, Reason: "found"},
		},
	}

	adj, err := req.ToEntity()
	require.NoError(t, err)

	assert.Equal(t, warehouseID, adj.WarehouseID)
	assert.Equal(t, "cycle count", adj.AdjustmentType)
	assert.Equal(t, date, adj.AdjustmentDate)
	assert.Equal(t, adjustment.StatusDraft, adj.Status)
	require.Len(t, adj.Items, 1)
	assert.Equal(t, itemID, adj.Items[0].ItemID)
	assert.InDelta(t, 2.5, adj.Items[0].Difference.Float64(), 0.0001)
}

func TestCreateAdjustmentRequestToEntity_DefaultsDate(t *testing.T) {
	req := CreateAdjustmentRequest{
		WarehouseID:    id.New().String(),
		AdjustmentType: "write-off",
	}

	adj, err := req.ToEntity()
	require.NoError(t, err)
	assert.False(t, adj.AdjustmentDate.IsZero())
}

func TestCreateAdjustmentRequestToEntity_BadIDs(t *testing.T) {
	_, err := (&CreateAdjustmentRequest{WarehouseID: "nope", AdjustmentType: "x"}).ToEntity()
	assert.Error(t, err)

	_, err = (&CreateAdjustmentRequest{
		WarehouseID:    id.New().String(),
		AdjustmentType: "x",
		Items:          []AdjustmentItemRequest{{ItemID: "nope"}},
	}).ToEntity()
	assert.Error(t, err)
}
