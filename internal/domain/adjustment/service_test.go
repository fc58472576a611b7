package adjustment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	appctx "stockledger/internal/core/context"
	"stockledger/internal/core/id"
	"stockledger/internal/core/numerator"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/ledger"
)

// --- In-memory repository ---

type memRepo struct {
	headers map[id.ID]*StockAdjustment
	items   map[id.ID][]Item

	failCreateItems bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		headers: map[id.ID]*StockAdjustment{},
		items:   map[id.ID][]Item{},
	}
}

func (r *memRepo) CreateHeader(ctx context.Context, adj *StockAdjustment) error {
	cp := *adj
	cp.Items = nil
	r.headers[adj.ID] = &cp
	return nil
}

func (r *memRepo) CreateItems(ctx context.Context, adjustmentID id.ID, items []Item) error {
	if r.failCreateItems {
		return errors.New("item insert failed")
	}
	r.items[adjustmentID] = append(r.items[adjustmentID], items...)
	return nil
}

func (r *memRepo) HardDeleteHeader(ctx context.Context, adjustmentID id.ID) error {
	delete(r.headers, adjustmentID)
	delete(r.items, adjustmentID)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, adjustmentID id.ID) (*StockAdjustment, error) {
	adj, ok := r.headers[adjustmentID]
	if !ok || adj.IsDeleted {
		return nil, apperror.NewNotFound("stock adjustment", adjustmentID.String())
	}
	cp := *adj
	return &cp, nil
}

func (r *memRepo) GetItems(ctx context.Context, adjustmentID id.ID) ([]Item, error) {
	return append([]Item(nil), r.items[adjustmentID]...), nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockAdjustment], error) {
	var out []*StockAdjustment
	for _, adj := range r.headers {
		if adj.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		cp := *adj
		out = append(out, &cp)
	}
	return domain.ListResult[*StockAdjustment]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *memRepo) Finalize(ctx context.Context, adjustmentID id.ID, processedBy string, at time.Time) (bool, error) {
	adj, ok := r.headers[adjustmentID]
	if !ok || adj.IsDeleted || adj.Status != StatusDraft {
		return false, nil
	}
	adj.Status = StatusFinalized
	adj.ProcessedBy = &processedBy
	adj.UpdatedAt = at
	return true, nil
}

func (r *memRepo) AddItem(ctx context.Context, item *Item) error {
	r.items[item.AdjustmentID] = append(r.items[item.AdjustmentID], *item)
	return nil
}

func (r *memRepo) UpdateItem(ctx context.Context, item *Item) error {
	items := r.items[item.AdjustmentID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
			return nil
		}
	}
	return apperror.NewNotFound("adjustment item", item.ID.String())
}

func (r *memRepo) DeleteItem(ctx context.Context, adjustmentID, itemID id.ID) error {
	items := r.items[adjustmentID]
	for i := range items {
		if items[i].ID == itemID {
			r.items[adjustmentID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("adjustment item", itemID.String())
}

func (r *memRepo) SetDeleted(ctx context.Context, adjustmentID id.ID, deleted bool) error {
	if adj, ok := r.headers[adjustmentID]; ok {
		adj.IsDeleted = deleted
	}
	return nil
}

// --- Ledger test doubles ---

type memLedgerRepo struct {
	entries []*ledger.Entry
	batches int
}

func (r *memLedgerRepo) CreateBatch(ctx context.Context, entries []*ledger.Entry) error {
	r.batches++
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *memLedgerRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	return nil, apperror.NewNotFound("ledger entry", entryID.String())
}

func (r *memLedgerRepo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[*ledger.Entry], error) {
	return domain.ListResult[*ledger.Entry]{Items: r.entries}, nil
}

func (r *memLedgerRepo) ListByReference(ctx context.Context, referenceNo string) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range r.entries {
		if e.ReferenceNo == referenceNo {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLedgerRepo) CountByReference(ctx context.Context, referenceNo string) (int64, error) {
	entries, _ := r.ListByReference(ctx, referenceNo)
	return int64(len(entries)), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Fixture ---

type fixture struct {
	repo       *memRepo
	ledgerRepo *memLedgerRepo
	service    *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:       newMemRepo(),
		ledgerRepo: &memLedgerRepo{},
	}
	ledgerService := ledger.NewService(ledger.Config{
		Repo:      f.ledgerRepo,
		TxManager: passthroughTx{},
	})
	f.service = NewService(f.repo, ledgerService, &numerator.MockGenerator{}, passthroughTx{})
	return f
}

func authedCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: id.New().String(),
		Email:  "clerk@stockledger.local",
	})
}

func draftAdjustment() *StockAdjustment {
	adj := NewStockAdjustment(id.New(), "cycle count", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	adj.AddItem(id.New(), types.NewQuantityFromInt(10), types.NewQuantityFromInt(12), "found in overflow")
	adj.AddItem(id.New(), types.NewQuantityFromInt(10), types.NewQuantityFromInt(7), "")
	return adj
}

// --- Create ---

func TestCreate(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, created.Status)
	assert.Nil(t, created.ProcessedBy)
	assert.NotEmpty(t, created.AdjustmentNo, "number generated when empty")
	require.Len(t, created.Items, 2)
	assert.Equal(t, types.NewQuantityFromInt(2), created.Items[0].Difference)
	assert.Equal(t, types.NewQuantityFromInt(-3), created.Items[1].Difference)
}

func TestCreate_RequiresAuth(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), draftAdjustment())
	require.Error(t, err)
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestCreate_ItemFailureRemovesHeader(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()
	f.repo.failCreateItems = true

	adj := draftAdjustment()
	_, err := f.service.Create(ctx, adj)
	require.Error(t, err)

	// The compensating delete ran: the document is gone, not half-formed.
	got, err := f.service.Get(ctx, adj.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreate_KeepsProvidedNumber(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	adj := draftAdjustment()
	adj.AdjustmentNo = "ADJ-2026-99999"

	created, err := f.service.Create(ctx, adj)
	require.NoError(t, err)
	assert.Equal(t, "ADJ-2026-99999", created.AdjustmentNo)
}

// --- Get ---

func TestGet_MissingReturnsNil(t *testing.T) {
	f := newFixture()

	got, err := f.service.Get(context.Background(), id.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

// --- Finalize ---

func TestFinalize(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)

	finalized, err := f.service.Finalize(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusFinalized, finalized.Status)
	require.NotNil(t, finalized.ProcessedBy)
	assert.Equal(t, appctx.GetUserID(ctx), *finalized.ProcessedBy)

	// Both nonzero differences became ledger entries in one batch.
	require.Len(t, f.ledgerRepo.entries, 2)
	assert.Equal(t, 1, f.ledgerRepo.batches)
	assert.Equal(t, created.AdjustmentNo, f.ledgerRepo.entries[0].ReferenceNo)
	assert.Equal(t, ledger.TypeStockAdjustment, f.ledgerRepo.entries[0].TransactionType)
}

func TestFinalize_SecondAttemptConflicts(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)

	_, err = f.service.Finalize(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.service.Finalize(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Only draft stock adjustments can be finalized", appErr.Message)

	// No second batch was written.
	assert.Equal(t, 1, f.ledgerRepo.batches)
	assert.Len(t, f.ledgerRepo.entries, 2)
}

func TestFinalize_ZeroDifferenceItemsProduceNoEntries(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	adj := NewStockAdjustment(id.New(), "cycle count", time.Now().UTC())
	adj.AddItem(id.New(), types.NewQuantityFromInt(5), types.NewQuantityFromInt(5), "")

	created, err := f.service.Create(ctx, adj)
	require.NoError(t, err)

	finalized, err := f.service.Finalize(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusFinalized, finalized.Status)
	assert.Empty(t, f.ledgerRepo.entries, "nothing moved, nothing written")
}

func TestFinalize_RequiresAuth(t *testing.T) {
	f := newFixture()

	_, err := f.service.Finalize(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsUnauthorized(err))
}

// --- Draft-gated mutations ---

func TestItemMutationsRejectedAfterFinalize(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)
	_, err = f.service.Finalize(ctx, created.ID)
	require.NoError(t, err)

	assertModifyConflict := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		assert.True(t, apperror.IsConflict(err))
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Only draft stock adjustments can be modified", appErr.Message)
	}

	_, err = f.service.AddItem(ctx, created.ID, id.New(), types.NewQuantityFromInt(1), types.NewQuantityFromInt(2), "")
	assertModifyConflict(t, err)

	item := created.Items[0]
	_, err = f.service.UpdateItem(ctx, created.ID, item.ID, item.SystemQty, item.PhysicalQty, item.Reason)
	assertModifyConflict(t, err)

	err = f.service.DeleteItem(ctx, created.ID, item.ID)
	assertModifyConflict(t, err)

	err = f.service.Delete(ctx, created.ID)
	assertModifyConflict(t, err)
}

func TestDraftItemMutations(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)

	added, err := f.service.AddItem(ctx, created.ID, id.New(), types.NewQuantityFromInt(3), types.NewQuantityFromInt(1), "damaged")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(-2), added.Difference)

	updated, err := f.service.UpdateItem(ctx, created.ID, added.ID,
		types.NewQuantityFromInt(3), types.NewQuantityFromInt(5), "damaged")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(2), updated.Difference, "difference recomputed on update")

	require.NoError(t, f.service.DeleteItem(ctx, created.ID, added.ID))

	got, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 2)
}

func TestUpdateItem_PreservesProductReference(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)

	stored := created.Items[0]
	require.False(t, id.IsNil(stored.ItemID))

	updated, err := f.service.UpdateItem(ctx, created.ID, stored.ID,
		types.NewQuantityFromInt(7), types.NewQuantityFromInt(9), "recount")
	require.NoError(t, err)

	assert.Equal(t, stored.ID, updated.ID)
	assert.Equal(t, stored.ItemID, updated.ItemID, "product reference unchanged by quantity edit")

	got, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	for _, it := range got.Items {
		assert.False(t, id.IsNil(it.ItemID))
	}
}

func TestUpdateItem_UnknownRow(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)

	_, err = f.service.UpdateItem(ctx, created.ID, id.New(),
		types.NewQuantityFromInt(1), types.NewQuantityFromInt(1), "")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

// --- Delete ---

func TestDelete_SoftDeletesDraft(t *testing.T) {
	ctx := authedCtx()
	f := newFixture()

	created, err := f.service.Create(ctx, draftAdjustment())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, created.ID))

	got, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "soft-deleted documents read as missing")
}
