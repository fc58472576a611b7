package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
)

// --- Test doubles ---

type fakeRepo struct {
	entries  []*Entry
	batches  int
	writeErr error
}

func (r *fakeRepo) CreateBatch(ctx context.Context, entries []*Entry) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.batches++
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	for _, e := range r.entries {
		if e.ID == entryID {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("ledger entry", entryID.String())
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Entry], error) {
	return domain.ListResult[*Entry]{Items: r.entries, TotalCount: int64(len(r.entries))}, nil
}

func (r *fakeRepo) ListByReference(ctx context.Context, referenceNo string) ([]*Entry, error) {
	var out []*Entry
	for _, e := range r.entries {
		if e.ReferenceNo == referenceNo {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountByReference(ctx context.Context, referenceNo string) (int64, error) {
	entries, _ := r.ListByReference(ctx, referenceNo)
	return int64(len(entries)), nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubOrders struct{ order *PurchaseOrder }

func (s stubOrders) GetWithItems(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	if s.order == nil {
		return nil, apperror.NewNotFound("purchase order", orderID.String())
	}
	return s.order, nil
}

type stubInvoices struct{ invoice *Invoice }

func (s stubInvoices) GetWithItems(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	if s.invoice == nil {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	return s.invoice, nil
}

type stubSlips struct{ slip *OrderSlip }

func (s stubSlips) GetWithItems(ctx context.Context, slipID id.ID) (*OrderSlip, error) {
	if s.slip == nil {
		return nil, apperror.NewNotFound("order slip", slipID.String())
	}
	return s.slip, nil
}

type stubReturns struct{ ret *SalesReturn }

func (s stubReturns) GetWithProducts(ctx context.Context, returnID id.ID) (*SalesReturn, error) {
	if s.ret == nil {
		return nil, apperror.NewNotFound("sales return", returnID.String())
	}
	return s.ret, nil
}

type stubContacts struct {
	names map[id.ID]string
}

func (s stubContacts) GetName(ctx context.Context, contactID id.ID) (string, error) {
	if name, ok := s.names[contactID]; ok {
		return name, nil
	}
	return "", apperror.NewNotFound("contact", contactID.String())
}

type stubProducts struct {
	byName map[string]id.ID
}

func (s stubProducts) FindIDByName(ctx context.Context, name string) (id.ID, error) {
	if itemID, ok := s.byName[name]; ok {
		return itemID, nil
	}
	return id.Nil(), apperror.NewNotFound("product", name)
}

type serviceFixture struct {
	repo     *fakeRepo
	orders   *stubOrders
	invoices *stubInvoices
	slips    *stubSlips
	returns  *stubReturns
	contacts *stubContacts
	products *stubProducts
	service  *Service
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		repo:     &fakeRepo{},
		orders:   &stubOrders{},
		invoices: &stubInvoices{},
		slips:    &stubSlips{},
		returns:  &stubReturns{},
		contacts: &stubContacts{names: map[id.ID]string{}},
		products: &stubProducts{byName: map[string]id.ID{}},
	}
	f.service = NewService(Config{
		Repo:      f.repo,
		Orders:    f.orders,
		Invoices:  f.invoices,
		Slips:     f.slips,
		Returns:   f.returns,
		Contacts:  f.contacts,
		Products:  f.products,
		TxManager: passthroughTx{},
	})
	return f
}

// --- Purchase order normalization ---

func TestCreateFromPurchaseOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	supplierID := id.New()
	warehouseID := id.New()
	itemA := id.New()
	itemB := id.New()
	delivered := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	userID := id.New()

	f.contacts.names[supplierID] = "Acme Supplies"
	f.orders.order = &PurchaseOrder{
		ID:           id.New(),
		OrderNo:      "PO-2026-00001",
		Status:       POStatusDelivered,
		OrderDate:    delivered.AddDate(0, 0, -7),
		DeliveryDate: &delivered,
		SupplierID:   &supplierID,
		WarehouseID:  &warehouseID,
		Items: []PurchaseOrderItem{
			{ItemID: itemA, Quantity: types.NewQuantityFromInt(100), UnitPrice: types.NewMoney(10), Notes: "initial stock"},
			{ItemID: itemB, Quantity: types.NewQuantityFromInt(50), UnitPrice: types.NewMoney(28)},
		},
	}

	entries, err := f.service.CreateFromPurchaseOrder(ctx, f.orders.order.ID, userID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, TypePurchaseOrder, first.TransactionType)
	assert.Equal(t, "PO-2026-00001", first.ReferenceNo)
	assert.Equal(t, "Acme Supplies", first.CounterpartyName)
	assert.Equal(t, IndicatorIn, first.StatusIndicator)
	assert.Equal(t, types.NewQuantityFromInt(100), first.QtyIn)
	assert.True(t, first.QtyOut.IsZero())
	assert.Equal(t, delivered, first.TransactionDate, "delivery date wins over order date")
	require.NotNil(t, first.WarehouseID)
	assert.Equal(t, warehouseID, *first.WarehouseID)
	assert.Equal(t, "initial stock", first.Notes)
	assert.Equal(t, userID, first.CreatedBy)

	assert.Len(t, f.repo.entries, 2, "entries persisted")
	assert.Equal(t, 1, f.repo.batches, "one batch per document")
}

func TestCreateFromPurchaseOrder_NotDelivered(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.orders.order = &PurchaseOrder{
		ID:      id.New(),
		OrderNo: "PO-2026-00002",
		Status:  "draft",
	}

	_, err := f.service.CreateFromPurchaseOrder(ctx, f.orders.order.ID, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidStatus(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Purchase Order must be delivered to create inventory logs", appErr.Message)
	assert.Empty(t, f.repo.entries)
}

func TestCreateFromPurchaseOrder_MissingSupplierFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	orphan := id.New()
	f.orders.order = &PurchaseOrder{
		ID:         id.New(),
		OrderNo:    "PO-2026-00003",
		Status:     POStatusDelivered,
		OrderDate:  time.Now().UTC(),
		SupplierID: &orphan, // no contact row behind it
		Items: []PurchaseOrderItem{
			{ItemID: id.New(), Quantity: types.NewQuantityFromInt(1), UnitPrice: types.NewMoney(1)},
		},
	}

	entries, err := f.service.CreateFromPurchaseOrder(ctx, f.orders.order.ID, id.New())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown Supplier", entries[0].CounterpartyName)
}

// --- Invoice and order slip normalization ---

func TestCreateFromInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	customerID := id.New()
	itemID := id.New()
	salesDate := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	f.contacts.names[customerID] = "Globex Retail"
	f.invoices.invoice = &Invoice{
		ID:         id.New(),
		InvoiceNo:  "INV-2026-00001",
		Status:     InvoiceStatusPaid,
		SalesDate:  salesDate,
		CustomerID: &customerID,
		Items: []DocumentItem{
			{ItemID: itemID, Quantity: types.NewQuantityFromInt(20), UnitPrice: types.NewMoney(12.50)},
		},
	}

	entries, err := f.service.CreateFromInvoice(ctx, f.invoices.invoice.ID, id.New())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, TypeInvoice, entry.TransactionType)
	assert.Equal(t, IndicatorOut, entry.StatusIndicator)
	assert.Equal(t, types.NewQuantityFromInt(20), entry.QtyOut)
	assert.True(t, entry.QtyIn.IsZero())
	assert.Equal(t, "Globex Retail", entry.CounterpartyName)
	assert.Equal(t, "Sale on 2026-08-25", entry.Notes)
	assert.Nil(t, entry.WarehouseID, "sales documents are not warehouse scoped")
}

func TestCreateFromInvoice_StatusGate(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{"draft", "overdue", "cancelled"} {
		f := newFixture()
		f.invoices.invoice = &Invoice{ID: id.New(), InvoiceNo: "INV-X", Status: status}

		_, err := f.service.CreateFromInvoice(ctx, f.invoices.invoice.ID, id.New())
		require.Error(t, err, "status %s", status)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Invoice must be sent or paid to create inventory logs", appErr.Message)
	}

	// Both eligible statuses pass.
	for _, status := range []string{InvoiceStatusSent, InvoiceStatusPaid} {
		f := newFixture()
		f.invoices.invoice = &Invoice{
			ID:        id.New(),
			InvoiceNo: "INV-Y",
			Status:    status,
			SalesDate: time.Now().UTC(),
			Items: []DocumentItem{
				{ItemID: id.New(), Quantity: types.NewQuantityFromInt(1), UnitPrice: types.NewMoney(1)},
			},
		}
		_, err := f.service.CreateFromInvoice(ctx, f.invoices.invoice.ID, id.New())
		require.NoError(t, err, "status %s", status)
	}
}

func TestCreateFromOrderSlip_StatusGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.slips.slip = &OrderSlip{ID: id.New(), SlipNo: "OS-1", Status: "draft"}

	_, err := f.service.CreateFromOrderSlip(ctx, f.slips.slip.ID, id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Order Slip must be finalized to create inventory logs", appErr.Message)
}

// --- Sales return normalization ---

func TestCreateFromSalesReturn_SkipsUnresolvableProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	customerID := id.New()
	widgetID := id.New()
	returnDate := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	f.contacts.names[customerID] = "Globex Retail"
	f.products.byName["Widget"] = widgetID
	f.returns.ret = &SalesReturn{
		ID:         id.New(),
		ReturnNo:   "RET-2026-00001",
		Status:     ReturnStatusProcessed,
		ReturnDate: returnDate,
		CustomerID: &customerID,
		Products: []ReturnedProduct{
			{ProductName: "Widget", Quantity: types.NewQuantityFromInt(2), OriginalPrice: types.NewMoney(12.50)},
			{ProductName: "Discontinued Thing", Quantity: types.NewQuantityFromInt(1), OriginalPrice: types.NewMoney(99)},
		},
	}

	entries, err := f.service.CreateFromSalesReturn(ctx, f.returns.ret.ID, id.New())
	require.NoError(t, err)
	require.Len(t, entries, 1, "unresolvable line skipped, not fatal")

	entry := entries[0]
	assert.Equal(t, TypeCreditMemo, entry.TransactionType)
	assert.Equal(t, IndicatorIn, entry.StatusIndicator)
	assert.Equal(t, widgetID, entry.ItemID)
	assert.Equal(t, "RET-2026-00001", entry.ReferenceNo)
	assert.Equal(t, "Return of Widget", entry.Notes)
	assert.True(t, entry.UnitPrice.Equal(types.NewMoney(12.50)))
}

func TestCreateFromSalesReturn_FallbackReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	widgetID := id.New()
	f.products.byName["Widget"] = widgetID
	retID := id.New()
	f.returns.ret = &SalesReturn{
		ID:         retID,
		ReturnNo:   "",
		Status:     ReturnStatusProcessed,
		ReturnDate: time.Now().UTC(),
		Products: []ReturnedProduct{
			{ProductName: "Widget", Quantity: types.NewQuantityFromInt(1), OriginalPrice: types.NewMoney(5)},
		},
	}

	entries, err := f.service.CreateFromSalesReturn(ctx, retID, id.New())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "RET-"+retID.String(), entries[0].ReferenceNo)
	assert.Equal(t, "Unknown Customer", entries[0].CounterpartyName)
}

func TestCreateFromSalesReturn_NotProcessed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.returns.ret = &SalesReturn{ID: id.New(), Status: "pending"}

	_, err := f.service.CreateFromSalesReturn(ctx, f.returns.ret.ID, id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Sales Return must be processed to create inventory logs", appErr.Message)
}

// --- Adjustment normalization ---

func TestCreateFromAdjustment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	warehouseID := id.New()
	surplus := id.New()
	shortage := id.New()
	untouched := id.New()
	adjDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	doc := &AdjustmentDocument{
		ID:             id.New(),
		AdjustmentNo:   "ADJ-2026-00001",
		AdjustmentDate: adjDate,
		WarehouseID:    &warehouseID,
		AdjustmentType: "cycle count",
		Notes:          "august count",
		Items: []AdjustmentDocumentItem{
			{ItemID: surplus, SystemQty: types.NewQuantityFromInt(10), PhysicalQty: types.NewQuantityFromInt(12), Difference: types.NewQuantityFromInt(2), Reason: "found in overflow"},
			{ItemID: shortage, SystemQty: types.NewQuantityFromInt(10), PhysicalQty: types.NewQuantityFromInt(7), Difference: types.NewQuantityFromInt(-3)},
			{ItemID: untouched, SystemQty: types.NewQuantityFromInt(5), PhysicalQty: types.NewQuantityFromInt(5), Difference: 0},
		},
	}

	entries, err := f.service.CreateFromAdjustment(ctx, doc, id.New())
	require.NoError(t, err)
	require.Len(t, entries, 2, "zero-difference line produces no entry")

	in := entries[0]
	assert.Equal(t, surplus, in.ItemID)
	assert.Equal(t, TypeStockAdjustment, in.TransactionType)
	assert.Equal(t, IndicatorIn, in.StatusIndicator)
	assert.Equal(t, types.NewQuantityFromInt(2), in.QtyIn)
	assert.True(t, in.UnitPrice.IsZero(), "adjustments carry no price")
	assert.Equal(t, "Internal", in.CounterpartyName)
	assert.Equal(t, "found in overflow", in.Notes)
	require.NotNil(t, in.WarehouseID)
	assert.Equal(t, warehouseID, *in.WarehouseID)

	out := entries[1]
	assert.Equal(t, shortage, out.ItemID)
	assert.Equal(t, IndicatorOut, out.StatusIndicator)
	assert.Equal(t, types.NewQuantityFromInt(3), out.QtyOut, "shortage written as positive outflow")
	assert.Equal(t, "cycle count: august count", out.Notes, "falls back to type and header note")
}

func TestCreateFromAdjustment_AllZeroDifferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	doc := &AdjustmentDocument{
		ID:             id.New(),
		AdjustmentNo:   "ADJ-2026-00002",
		AdjustmentDate: time.Now().UTC(),
		Items: []AdjustmentDocumentItem{
			{ItemID: id.New(), SystemQty: types.NewQuantityFromInt(5), PhysicalQty: types.NewQuantityFromInt(5), Difference: 0},
		},
	}

	entries, err := f.service.CreateFromAdjustment(ctx, doc, id.New())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, f.repo.batches, "nothing to write")
}
