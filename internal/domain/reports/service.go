package reports

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/tx"
)

// Repository serves ledger aggregates.
type Repository interface {
	TypeBreakdown(ctx context.Context, period Period) ([]TypeBreakdown, error)
	ItemMovements(ctx context.Context, period Period, limit int) ([]ItemMovement, error)
}

// Service assembles audit reports.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a report service.
func NewService(repo Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// topMoversLimit caps the per-item section of the audit report.
const topMoversLimit = 20

// BuildAuditReport aggregates ledger movement for a period. Both
// aggregate queries run in one read-only transaction so the totals and
// the per-item rows describe the same snapshot.
func (s *Service) BuildAuditReport(ctx context.Context, period Period) (*AuditReport, error) {
	report := &AuditReport{
		Period:      period,
		GeneratedAt: time.Now().UTC(),
	}

	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		byType, err := s.repo.TypeBreakdown(ctx, period)
		if err != nil {
			return fmt.Errorf("type breakdown: %w", err)
		}
		report.ByType = byType

		movers, err := s.repo.ItemMovements(ctx, period, topMoversLimit)
		if err != nil {
			return fmt.Errorf("item movements: %w", err)
		}
		report.TopMovers = movers

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, row := range report.ByType {
		report.TotalEntries += row.EntryCount
		report.TotalQtyIn += row.QtyIn
		report.TotalQtyOut += row.QtyOut
	}

	return report, nil
}
