package dto

import (
	"time"

	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/reports"
)

// --- Queries ---

// ListEntriesQuery filters the ledger list.
type ListEntriesQuery struct {
	ItemID          string     `form:"itemId"`
	WarehouseID     string     `form:"warehouseId"`
	TransactionType string     `form:"transactionType"`
	ReferenceNo     string     `form:"referenceNo"`
	DateFrom        *time.Time `form:"dateFrom"`
	DateTo          *time.Time `form:"dateTo"`
	Search          string     `form:"search"`
	Limit           int        `form:"limit"`
	Offset          int        `form:"offset"`
}

// AuditReportQuery bounds the audit report period.
type AuditReportQuery struct {
	From *time.Time `form:"from"`
	To   *time.Time `form:"to"`
}

// --- Responses ---

// EntryResponse is one ledger entry.
type EntryResponse struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"itemId"`
	TransactionType  string    `json:"transactionType"`
	ReferenceNo      string    `json:"referenceNo"`
	CounterpartyName string    `json:"counterpartyName"`
	TransactionDate  time.Time `json:"transactionDate"`
	QtyIn            float64   `json:"qtyIn"`
	QtyOut           float64   `json:"qtyOut"`
	StatusIndicator  string    `json:"statusIndicator"`
	UnitPrice        string    `json:"unitPrice"`
	WarehouseID      *string   `json:"warehouseId,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// FromEntry maps a ledger entry to the response shape.
func FromEntry(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:               e.ID.String(),
		ItemID:           e.ItemID.String(),
		TransactionType:  string(e.TransactionType),
		ReferenceNo:      e.ReferenceNo,
		CounterpartyName: e.CounterpartyName,
		TransactionDate:  e.TransactionDate,
		QtyIn:            e.QtyIn.Float64(),
		QtyOut:           e.QtyOut.Float64(),
		StatusIndicator:  string(e.StatusIndicator),
		UnitPrice:        e.UnitPrice.String(),
		Notes:            e.Notes,
		CreatedBy:        e.CreatedBy.String(),
		CreatedAt:        e.CreatedAt,
	}
	if e.WarehouseID != nil {
		s := e.WarehouseID.String()
		resp.WarehouseID = &s
	}
	return resp
}

// FromEntries maps a slice of entries.
func FromEntries(entries []*ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}

// --- Report responses ---

// TypeBreakdownResponse aggregates one transaction type.
type TypeBreakdownResponse struct {
	TransactionType string  `json:"transactionType"`
	EntryCount      int64   `json:"entryCount"`
	QtyIn           float64 `json:"qtyIn"`
	QtyOut          float64 `json:"qtyOut"`
}

// ItemMovementResponse aggregates one item.
type ItemMovementResponse struct {
	ItemID     string  `json:"itemId"`
	EntryCount int64   `json:"entryCount"`
	QtyIn      float64 `json:"qtyIn"`
	QtyOut     float64 `json:"qtyOut"`
	NetChange  float64 `json:"netChange"`
}

// AuditReportResponse is the full audit report.
type AuditReportResponse struct {
	From         *time.Time              `json:"from,omitempty"`
	To           *time.Time              `json:"to,omitempty"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	TotalEntries int64                   `json:"totalEntries"`
	TotalQtyIn   float64                 `json:"totalQtyIn"`
	TotalQtyOut  float64                 `json:"totalQtyOut"`
	ByType       []TypeBreakdownResponse `json:"byType"`
	TopMovers    []ItemMovementResponse  `json:"topMovers"`
}

// FromAuditReport maps a report to the response shape.
func FromAuditReport(r *reports.AuditReport) AuditReportResponse {
	resp := AuditReportResponse{
		GeneratedAt:  r.GeneratedAt,
		TotalEntries: r.TotalEntries,
		TotalQtyIn:   r.TotalQtyIn.Float64(),
		TotalQtyOut:  r.TotalQtyOut.Float64(),
		ByType:       make([]TypeBreakdownResponse, 0, len(r.ByType)),
		TopMovers:    make([]ItemMovementResponse, 0, len(r.TopMovers)),
	}

	if !r.Period.From.IsZero() {
		from := r.Period.From
		resp.From = &from
	}
	if !r.Period.To.IsZero() {
		to := r.Period.To
		resp.To = &to
	}

	for _, row := range r.ByType {
		resp.ByType = append(resp.ByType, TypeBreakdownResponse{
			TransactionType: string(row.TransactionType),
			EntryCount:      row.EntryCount,
			QtyIn:           row.QtyIn.Float64(),
			QtyOut:          row.QtyOut.Float64(),
		})
	}

	for _, row := range r.TopMovers {
		resp.TopMovers = append(resp.TopMovers, ItemMovementResponse{
			ItemID:     row.ItemID.String(),
			EntryCount: row.EntryCount,
			QtyIn:      row.QtyIn.Float64(),
			QtyOut:     row.QtyOut.Float64(),
			NetChange:  row.NetChange().Float64(),
		})
	}

	return resp
}
