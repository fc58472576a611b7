// Package reports builds aggregate views over the inventory ledger.
// Reports are read-only; they never touch source documents.
package reports

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
)

// Period bounds a report query. Zero values mean unbounded.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TypeBreakdown aggregates entries of one transaction type.
type TypeBreakdown struct {
	TransactionType ledger.TransactionType `db:"transaction_type" json:"transactionType"`
	EntryCount      int64                  `db:"entry_count" json:"entryCount"`
	QtyIn           types.Quantity         `db:"qty_in" json:"qtyIn"`
	QtyOut          types.Quantity         `db:"qty_out" json:"qtyOut"`
}

// ItemMovement aggregates movement per item.
type ItemMovement struct {
	ItemID     id.ID          `db:"item_id" json:"itemId"`
	EntryCount int64          `db:"entry_count" json:"entryCount"`
	QtyIn      types.Quantity `db:"qty_in" json:"qtyIn"`
	QtyOut     types.Quantity `db:"qty_out" json:"qtyOut"`
}

// NetChange is incoming minus outgoing for the period.
func (m ItemMovement) NetChange() types.Quantity {
	return m.QtyIn - m.QtyOut
}

// AuditReport is the full movement audit for a period.
type AuditReport struct {
	Period       Period          `json:"period"`
	GeneratedAt  time.Time       `json:"generatedAt"`
	TotalEntries int64           `json:"totalEntries"`
	TotalQtyIn   types.Quantity  `json:"totalQtyIn"`
	TotalQtyOut  types.Quantity  `json:"totalQtyOut"`
	ByType       []TypeBreakdown `json:"byType"`
	TopMovers    []ItemMovement  `json:"topMovers"`
}
