package ledger_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
)

func baseQuery() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("id").
		From(entriesTable)
}

func TestApplyFilter(t *testing.T) {
	itemID := id.New()
	txType := ledger.TypeInvoice
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   ledger.ListFilter
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "no filter",
			filter:   ledger.ListFilter{},
			wantSQL:  "SELECT id FROM inventory_logs",
			wantArgs: 0,
		},
		{
			name:     "by item",
			filter:   ledger.ListFilter{ItemID: &itemID},
			wantSQL:  "WHERE item_id = $1",
			wantArgs: 1,
		},
		{
			name:     "by transaction type",
			filter:   ledger.ListFilter{TransactionType: &txType},
			wantSQL:  "WHERE transaction_type = $1",
			wantArgs: 1,
		},
		{
			name:     "by reference",
			filter:   ledger.ListFilter{ReferenceNo: "PO-2026-00001"},
			wantSQL:  "WHERE reference_no = $1",
			wantArgs: 1,
		},
		{
			name:     "by date range",
			filter:   ledger.ListFilter{DateFrom: &from, DateTo: &to},
			wantSQL:  "transaction_date >= $1 AND transaction_date <= $2",
			wantArgs: 2,
		},
		{
			name:     "open-ended from",
			filter:   ledger.ListFilter{DateFrom: &from},
			wantSQL:  "WHERE transaction_date >= $1",
			wantArgs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := applyFilter(baseQuery(), tt.filter).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}
			if !strings.Contains(sql, tt.wantSQL) {
				t.Errorf("SQL mismatch\nwant substring: %s\ngot: %s", tt.wantSQL, sql)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args count = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestApplyFilter_Search(t *testing.T) {
	filter := ledger.ListFilter{}
	filter.Search = "acme"

	sql, args, err := applyFilter(baseQuery(), filter).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}
	for _, col := range []string{"reference_no ILIKE", "counterparty_name ILIKE", "notes ILIKE"} {
		if !strings.Contains(sql, col) {
			t.Errorf("expected %q in %s", col, sql)
		}
	}
	if len(args) != 3 {
		t.Errorf("args count = %d, want 3", len(args))
	}
	if args[0] != "%acme%" {
		t.Errorf("pattern = %v, want %%acme%%", args[0])
	}
}

func TestApplyOrder(t *testing.T) {
	tests := []struct {
		orderBy string
		want    string
	}{
		{"", "ORDER BY created_at DESC"},
		{"-transaction_date", "ORDER BY transaction_date DESC"},
		{"reference_no", "ORDER BY reference_no"},
	}

	for _, tt := range tests {
		sql, _, err := applyOrder(baseQuery(), tt.orderBy).ToSql()
		if err != nil {
			t.Fatalf("ToSql failed: %v", err)
		}
		if !strings.Contains(sql, tt.want) {
			t.Errorf("orderBy %q: want %q in %s", tt.orderBy, tt.want, sql)
		}
	}
}
