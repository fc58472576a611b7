package adjustment

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	appctx "stockledger/internal/core/context"
	"stockledger/internal/core/id"
	"stockledger/internal/core/numerator"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/ledger"
	"stockledger/pkg/logger"
)

// NumberPrefix for generated adjustment numbers (ADJ-2026-00001).
const NumberPrefix = "ADJ"

// Service owns the stock adjustment lifecycle: creation, item mutation
// while draft, and the one-way finalize transition that materializes
// ledger entries.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*StockAdjustment]
}

// NewService creates an adjustment service.
func NewService(repo Repository, ledgerSvc *ledger.Service, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		numerator: gen,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*StockAdjustment](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*StockAdjustment] {
	return s.hooks
}

// currentUserID resolves the acting user or fails the call.
func currentUserID(ctx context.Context) (string, error) {
	user := appctx.GetUser(ctx)
	if user == nil || user.UserID == "" {
		return "", apperror.NewUnauthorized("authentication required")
	}
	return user.UserID, nil
}

// Create writes a new draft adjustment: header first, then items.
//
// The two phases are intentionally not wrapped in one transaction.
// When the item insert fails the header row is removed by an explicit
// compensating delete, so callers never observe a half-formed
// document, and a subsequent Get returns nothing.
func (s *Service) Create(ctx context.Context, adj *StockAdjustment) (*StockAdjustment, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	for i := range adj.Items {
		adj.Items[i].Recalculate()
		if id.IsNil(adj.Items[i].ID) {
			adj.Items[i].ID = id.New()
		}
		adj.Items[i].AdjustmentID = adj.ID
	}

	if err := adj.Validate(ctx); err != nil {
		return nil, err
	}

	adj.Status = StatusDraft
	adj.ProcessedBy = nil
	adj.CreatedBy = userID

	if adj.AdjustmentNo == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), adj.AdjustmentDate)
		if err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
		adj.AdjustmentNo = number
	}

	if err := s.repo.CreateHeader(ctx, adj); err != nil {
		return nil, fmt.Errorf("create adjustment header: %w", err)
	}

	if len(adj.Items) > 0 {
		if err := s.repo.CreateItems(ctx, adj.ID, adj.Items); err != nil {
			if delErr := s.repo.HardDeleteHeader(ctx, adj.ID); delErr != nil {
				logger.Error(ctx, "compensating header delete failed",
					"adjustmentId", adj.ID,
					"error", delErr,
				)
			}
			return nil, fmt.Errorf("create adjustment items: %w", err)
		}
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, adj); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "stock adjustment created",
		"id", adj.ID,
		"adjustmentNo", adj.AdjustmentNo,
		"items", len(adj.Items),
	)
	return s.mustGet(ctx, adj.ID)
}

// Get retrieves an adjustment with items. A missing or soft-deleted
// document returns nil without an error.
func (s *Service) Get(ctx context.Context, adjustmentID id.ID) (*StockAdjustment, error) {
	adj, err := s.repo.GetByID(ctx, adjustmentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	adj.Items = items

	return adj, nil
}

// mustGet is Get for documents that are known to exist.
func (s *Service) mustGet(ctx context.Context, adjustmentID id.ID) (*StockAdjustment, error) {
	adj, err := s.Get(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, apperror.NewNotFound("stock adjustment", adjustmentID.String())
	}
	return adj, nil
}

// List retrieves adjustments with items attached.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockAdjustment], error) {
	if filter.Limit <= 0 {
		filter.ListFilter = domain.DefaultListFilter()
	}

	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return domain.ListResult[*StockAdjustment]{}, err
	}

	if result.Items == nil {
		result.Items = []*StockAdjustment{}
	}

	for _, adj := range result.Items {
		items, err := s.repo.GetItems(ctx, adj.ID)
		if err != nil {
			return domain.ListResult[*StockAdjustment]{}, fmt.Errorf("get items: %w", err)
		}
		adj.Items = items
	}

	return result, nil
}

// Finalize flips a draft to finalized and materializes ledger entries
// for every item with a nonzero difference. The status flip is a
// conditional update: when another call got there first, zero rows
// match and the attempt fails with a conflict instead of writing a
// second ledger batch. Flip and materialization run in one store
// transaction, so a ledger failure rolls the status back too.
func (s *Service) Finalize(ctx context.Context, adjustmentID id.ID) (*StockAdjustment, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	adj, err := s.repo.GetByID(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}

	if adj.Status != StatusDraft {
		return nil, apperror.NewConflict("Only draft stock adjustments can be finalized").
			WithDetail("adjustmentNo", adj.AdjustmentNo).
			WithDetail("status", string(adj.Status))
	}

	if err := s.hooks.Run(ctx, domain.BeforeFinalize, adj); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	adj.Items = items

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.Finalize(ctx, adjustmentID, userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("finalize adjustment: %w", err)
		}
		if !ok {
			// Lost the race: someone finalized or deleted the row
			// between our read and the update.
			return apperror.NewConflict("Only draft stock adjustments can be finalized").
				WithDetail("adjustmentNo", adj.AdjustmentNo)
		}

		if _, err := s.ledger.CreateFromAdjustment(ctx, adj.ToLedgerDocument(), mustParseUser(userID)); err != nil {
			return fmt.Errorf("materialize ledger entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	finalized, err := s.mustGet(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterFinalize, finalized); err != nil {
		logger.Warn(ctx, "after-finalize hook failed", "error", err)
	}

	logger.Info(ctx, "stock adjustment finalized",
		"id", adjustmentID,
		"adjustmentNo", finalized.AdjustmentNo,
		"processedBy", userID,
	)
	return finalized, nil
}

// AddItem appends a counted line to a draft adjustment.
func (s *Service) AddItem(ctx context.Context, adjustmentID, itemID id.ID, systemQty, physicalQty types.Quantity, reason string) (*Item, error) {
	adj, err := s.repo.GetByID(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}
	if err := adj.CanModify(); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id.New(),
		AdjustmentID: adjustmentID,
		ItemID:       itemID,
		SystemQty:    systemQty,
		PhysicalQty:  physicalQty,
		Reason:       reason,
	}
	item.Recalculate()

	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return item, nil
}

// UpdateItem edits a counted line of a draft adjustment, recomputing
// the difference. Only the quantities and the reason change; the
// product reference stays as stored.
func (s *Service) UpdateItem(ctx context.Context, adjustmentID, itemRowID id.ID, systemQty, physicalQty types.Quantity, reason string) (*Item, error) {
	adj, err := s.repo.GetByID(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}
	if err := adj.CanModify(); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	var item *Item
	for i := range items {
		if items[i].ID == itemRowID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		return nil, apperror.NewNotFound("adjustment item", itemRowID.String())
	}

	item.SystemQty = systemQty
	item.PhysicalQty = physicalQty
	item.Reason = reason
	item.Recalculate()

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes a counted line from a draft adjustment.
func (s *Service) DeleteItem(ctx context.Context, adjustmentID, itemRowID id.ID) error {
	adj, err := s.repo.GetByID(ctx, adjustmentID)
	if err != nil {
		return err
	}
	if err := adj.CanModify(); err != nil {
		return err
	}

	if err := s.repo.DeleteItem(ctx, adjustmentID, itemRowID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Delete soft-deletes a draft adjustment. Finalized documents already
// produced ledger entries and stay put.
func (s *Service) Delete(ctx context.Context, adjustmentID id.ID) error {
	adj, err := s.repo.GetByID(ctx, adjustmentID)
	if err != nil {
		return err
	}
	if err := adj.CanModify(); err != nil {
		return err
	}

	if err := s.repo.SetDeleted(ctx, adjustmentID, true); err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterDelete, adj); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "error", err)
	}
	return nil
}

// mustParseUser converts the JWT subject to an id, falling back to the
// nil id for non-uuid subjects (e.g. service accounts in tests).
func mustParseUser(userID string) id.ID {
	parsed, err := id.Parse(userID)
	if err != nil {
		return id.Nil()
	}
	return parsed
}
