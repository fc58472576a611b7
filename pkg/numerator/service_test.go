package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	core "stockledger/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("ADJ")
	now := time.Now()
	year := now.Format("2006")

	num, err := svc.GetNextNumber(ctx, cfg, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fmt.Sprintf("ADJ-%s-00001", year)
	if num != want {
		t.Errorf("expected %s, got %s", want, num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = fmt.Sprintf("ADJ-%s-00002", year)
	if num != want {
		t.Errorf("expected %s, got %s", want, num)
	}

	if q.calls != 2 {
		t.Errorf("strict strategy should hit DB per number, got %d calls", q.calls)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("ADJ")
	now := time.Now()

	opts := &core.Options{
		Strategy:  core.StrategyCached,
		RangeSize: 10,
	}

	for i := 1; i <= 12; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, now)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got := ParseNumber(num); got != int64(i) {
			t.Errorf("call %d: expected numeric part %d, got %d (%s)", i, i, got, num)
		}
	}

	// 12 numbers from ranges of 10 means exactly two reservations.
	if q.calls != 2 {
		t.Errorf("expected 2 range reservations, got %d calls", q.calls)
	}
}

func TestBuildKey(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		resetPeriod string
		want        string
	}{
		{"year", "ADJ_2026"},
		{"month", "ADJ_2026_03"},
		{"never", "ADJ"},
		{"", "ADJ"},
	}

	for _, tt := range tests {
		cfg := core.Config{Prefix: "ADJ", ResetPeriod: tt.resetPeriod}
		if got := buildKey(cfg, period); got != tt.want {
			t.Errorf("reset %q: expected %s, got %s", tt.resetPeriod, tt.want, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	cfg := core.Config{Prefix: "ADJ", IncludeYear: true, PadWidth: 5}
	if got := formatNumber(cfg, period, 42); got != "ADJ-2026-00042" {
		t.Errorf("expected ADJ-2026-00042, got %s", got)
	}

	cfg = core.Config{Prefix: "DOC", IncludeYear: false, PadWidth: 3}
	if got := formatNumber(cfg, period, 7); got != "DOC-007" {
		t.Errorf("expected DOC-007, got %s", got)
	}

	// PadWidth 0 falls back to 5
	cfg = core.Config{Prefix: "X", IncludeYear: false}
	if got := formatNumber(cfg, period, 1); got != "X-00001" {
		t.Errorf("expected X-00001, got %s", got)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"ADJ-2026-00042", 42},
		{"DOC-007", 7},
		{"garbage", -1},
		{"ADJ-2026-abc", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}
