package ledger

import (
	"context"
	"fmt"

	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
	"stockledger/pkg/logger"
)

// Service writes ledger entries and exposes the read side of the log.
// Each source document invocation produces one batch; batches for
// different documents never share a transaction.
type Service struct {
	repo      Repository
	orders    PurchaseOrderReader
	invoices  InvoiceReader
	slips     OrderSlipReader
	returns   SalesReturnReader
	contacts  ContactReader
	products  ProductFinder
	txManager tx.Manager
}

// Config wires the service dependencies.
type Config struct {
	Repo      Repository
	Orders    PurchaseOrderReader
	Invoices  InvoiceReader
	Slips     OrderSlipReader
	Returns   SalesReturnReader
	Contacts  ContactReader
	Products  ProductFinder
	TxManager tx.Manager
}

// NewService creates a ledger service.
func NewService(cfg Config) *Service {
	return &Service{
		repo:      cfg.Repo,
		orders:    cfg.Orders,
		invoices:  cfg.Invoices,
		slips:     cfg.Slips,
		returns:   cfg.Returns,
		contacts:  cfg.Contacts,
		products:  cfg.Products,
		txManager: cfg.TxManager,
	}
}

// Write validates and inserts a batch of entries for one source
// document. Callers must have skipped zero-quantity lines already;
// a zero/zero entry fails validation here.
func (s *Service) Write(ctx context.Context, entries []*Entry) ([]*Entry, error) {
	if len(entries) == 0 {
		return []*Entry{}, nil
	}

	for _, entry := range entries {
		if err := entry.Validate(ctx); err != nil {
			return nil, err
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateBatch(ctx, entries); err != nil {
			return fmt.Errorf("write ledger batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger batch written",
		"count", len(entries),
		"referenceNo", entries[0].ReferenceNo,
		"transactionType", entries[0].TransactionType,
	)
	return entries, nil
}

// GetByID retrieves a single entry.
func (s *Service) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// List retrieves entries with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Entry], error) {
	if filter.Limit <= 0 {
		filter.ListFilter = domain.DefaultListFilter()
	}
	return s.repo.List(ctx, filter)
}

// ListByReference retrieves all entries written for one document.
func (s *Service) ListByReference(ctx context.Context, referenceNo string) ([]*Entry, error) {
	return s.repo.ListByReference(ctx, referenceNo)
}

// CountByReference reports how many entries a document has produced.
func (s *Service) CountByReference(ctx context.Context, referenceNo string) (int64, error) {
	return s.repo.CountByReference(ctx, referenceNo)
}
