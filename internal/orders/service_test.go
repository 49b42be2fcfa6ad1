package orders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// --- In-memory fakes ---
//

type memStore struct {
	mu     sync.Mutex
	nextID int64
	ids    []int64 // insertion order, newest last
	orders map[int64]*models.Order
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[int64]*models.Order)}
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	cp.StatusHistory = append([]models.StatusEntry(nil), o.StatusHistory...)
	return &cp
}

func (m *memStore) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o.ID = m.nextID
	o.Version = 1
	m.ids = append(m.ids, o.ID)
	m.orders[o.ID] = copyOrder(o)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (m *memStore) Save(_ context.Context, o *models.Order, entry models.StatusEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if stored.Version != o.Version {
		return ErrConflict
	}
	cp := copyOrder(o)
	cp.Version = stored.Version + 1
	cp.StatusHistory = append(append([]models.StatusEntry(nil), stored.StatusHistory...), entry)
	m.orders[o.ID] = cp
	o.Version = cp.Version
	return nil
}

func (m *memStore) ConfirmPayment(_ context.Context, orderID int64, paymentID, signature string, entry models.StatusEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return false, nil
	}
	if o.IsPaid {
		return false, nil
	}
	o.IsPaid = true
	o.RazorpayPaymentID = &paymentID
	o.RazorpaySignature = &signature
	o.Status = entry.Status
	o.Version++
	o.StatusHistory = append(o.StatusHistory, entry)
	return true, nil
}

func (m *memStore) DeleteDeliveredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	remaining := m.ids[:0]
	for _, id := range m.ids {
		o := m.orders[id]
		if o.Status == models.StatusDelivered && o.DeliveredAt != nil && o.DeliveredAt.Before(cutoff) {
			delete(m.orders, id)
			deleted++
			continue
		}
		remaining = append(remaining, id)
	}
	m.ids = remaining
	return deleted, nil
}

func (m *memStore) ListByBuyer(_ context.Context, buyerID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.Order
	for i := len(m.ids) - 1; i >= 0; i-- {
		o := m.orders[m.ids[i]]
		if o.UserID == buyerID && (o.PaymentType == models.PaymentCOD || o.IsPaid) {
			list = append(list, *copyOrder(o))
		}
	}
	return list, nil
}

func (m *memStore) CountByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	list, err := m.ListByBuyer(ctx, buyerID)
	return int64(len(list)), err
}

func (m *memStore) ListAll(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.Order
	for i := len(m.ids) - 1; i >= 0; i-- {
		list = append(list, *copyOrder(m.orders[m.ids[i]]))
	}
	return list, nil
}

type memCatalog map[int64]models.Product

func (m memCatalog) Resolve(_ context.Context, productID int64) (models.Product, error) {
	p, ok := m[productID]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

type stubGateway struct {
	lastRequest payment.CreateOrderRequest
	orderID     string
	err         error
}

func (g *stubGateway) CreateOrder(_ context.Context, req payment.CreateOrderRequest) (payment.GatewayOrder, error) {
	g.lastRequest = req
	if g.err != nil {
		return payment.GatewayOrder{}, g.err
	}
	return payment.GatewayOrder{ID: g.orderID, Amount: req.Amount, Currency: req.Currency}, nil
}

//
// --- Test harness ---
//

const testSecret = "s3cret"

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(catalog memCatalog) (*Service, *memStore, *stubGateway) {
	store := newMemStore()
	gateway := &stubGateway{orderID: "order_abc"}
	svc := NewService(store, catalog, gateway, testSecret)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, gateway
}

func testCatalog() memCatalog {
	return memCatalog{
		1: {ID: 1, Name: "Potato", OfferPrice: 100.50, InStock: true},
		2: {ID: 2, Name: "Tomato", OfferPrice: 49.99, InStock: true},
		3: {ID: 3, Name: "Onion", OfferPrice: 100, InStock: true},
	}
}

//
// --- COD creation ---
//

func TestPlaceOrderCOD_Amount(t *testing.T) {
	tests := []struct {
		name       string
		items      []models.OrderItem
		addressID  int64
		wantAmount float64
		wantErr    error
	}{
		{
			name:       "whole number prices",
			items:      []models.OrderItem{{ProductID: 3, Quantity: 1}},
			addressID:  1,
			wantAmount: 102, // 100 + floor(2.00)
		},
		{
			name: "fractional prices, tax floored after summing",
			items: []models.OrderItem{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 1},
			},
			addressID:  1,
			wantAmount: 255.99, // 250.99 + floor(5.0198)
		},
		{
			name:      "empty items",
			items:     nil,
			addressID: 1,
			wantErr:   ErrInvalidOrder,
		},
		{
			name:      "missing address",
			items:     []models.OrderItem{{ProductID: 3, Quantity: 1}},
			addressID: 0,
			wantErr:   ErrInvalidOrder,
		},
		{
			name:      "zero quantity",
			items:     []models.OrderItem{{ProductID: 3, Quantity: 0}},
			addressID: 1,
			wantErr:   ErrInvalidOrder,
		},
		{
			name:      "unknown product",
			items:     []models.OrderItem{{ProductID: 99, Quantity: 1}},
			addressID: 1,
			wantErr:   ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(testCatalog())
			order, err := svc.PlaceOrderCOD(context.Background(), 7, tt.addressID, tt.items)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, order.Amount)
		})
	}
}

func TestPlaceOrderCOD_InitialState(t *testing.T) {
	svc, store, _ := newTestService(testCatalog())

	order, err := svc.PlaceOrderCOD(context.Background(), 7, 1, []models.OrderItem{{ProductID: 3, Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, models.StatusOrderPlaced, order.Status)
	assert.Equal(t, models.PaymentCOD, order.PaymentType)
	assert.False(t, order.IsPaid)
	require.NotNil(t, order.TrackingNumber)
	assert.True(t, strings.HasPrefix(*order.TrackingNumber, "TRK"))
	assert.Equal(t, fixedNow.Add(7*24*time.Hour), order.EstimatedDelivery)

	// Exactly one history entry right after creation.
	stored, err := store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, models.StatusOrderPlaced, stored.StatusHistory[0].Status)
	assert.Equal(t, "Order placed successfully via COD", stored.StatusHistory[0].Note)
}

//
// --- Online creation ---
//

func TestCreateOnlineOrder_PaiseRounding(t *testing.T) {
	tests := []struct {
		name      string
		items     []models.OrderItem
		wantPaise int64
	}{
		{
			name:      "exact amount",
			items:     []models.OrderItem{{ProductID: 3, Quantity: 1}},
			wantPaise: 10200, // 102.00
		},
		{
			name: "fractional amount rounds, not floors",
			items: []models.OrderItem{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 1},
			},
			wantPaise: 25599, // 255.99
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, gateway := newTestService(testCatalog())
			result, err := svc.CreateOnlineOrder(context.Background(), 7, 1, tt.items)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPaise, result.AmountPaise)
			assert.Equal(t, tt.wantPaise, gateway.lastRequest.Amount)
			assert.Equal(t, "INR", gateway.lastRequest.Currency)
		})
	}
}

func TestCreateOnlineOrder_GatewayMetadata(t *testing.T) {
	svc, store, gateway := newTestService(testCatalog())

	result, err := svc.CreateOnlineOrder(context.Background(), 42, 1, []models.OrderItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, "42", gateway.lastRequest.Notes["userId"])
	assert.Equal(t, "2", gateway.lastRequest.Notes["itemCount"])
	assert.True(t, strings.HasPrefix(gateway.lastRequest.Receipt, "receipt_"))

	assert.Equal(t, "order_abc", result.GatewayOrderID)

	stored, err := store.FindByID(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentOnline, stored.PaymentType)
	assert.False(t, stored.IsPaid)
	require.NotNil(t, stored.RazorpayOrderID)
	assert.Equal(t, "order_abc", *stored.RazorpayOrderID)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "Order created, awaiting payment", stored.StatusHistory[0].Note)
}

func TestCreateOnlineOrder_GatewayFailure(t *testing.T) {
	svc, store, gateway := newTestService(testCatalog())
	gateway.err = errors.New("authentication failed")

	_, err := svc.CreateOnlineOrder(context.Background(), 7, 1, []models.OrderItem{{ProductID: 3, Quantity: 1}})
	require.Error(t, err)

	// No local order may exist when the gateway call failed.
	list, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

//
// --- Payment verification ---
//

func createOnlineOrderForTest(t *testing.T, svc *Service) *OnlineOrder {
	t.Helper()
	result, err := svc.CreateOnlineOrder(context.Background(), 7, 1, []models.OrderItem{{ProductID: 3, Quantity: 1}})
	require.NoError(t, err)
	return result
}

func TestVerifyPayment(t *testing.T) {
	validSig := payment.Sign("order_abc", "pay_123", testSecret)

	tests := []struct {
		name      string
		signature string
		wantErr   error
	}{
		{name: "valid signature", signature: validSig},
		{name: "tampered signature", signature: validSig[:len(validSig)-1] + "0", wantErr: payment.ErrInvalidSignature},
		{name: "empty signature", signature: "", wantErr: payment.ErrInvalidSignature},
		{name: "signature for different secret", signature: payment.Sign("order_abc", "pay_123", "other"), wantErr: payment.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(testCatalog())
			created := createOnlineOrderForTest(t, svc)

			err := svc.VerifyPayment(context.Background(), "order_abc", "pay_123", tt.signature, created.Order.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				// A rejected verification must not mutate the order.
				stored, ferr := store.FindByID(context.Background(), created.Order.ID)
				require.NoError(t, ferr)
				assert.False(t, stored.IsPaid)
				assert.Equal(t, models.StatusOrderPlaced, stored.Status)
				assert.Len(t, stored.StatusHistory, 1)
				return
			}
			require.NoError(t, err)

			stored, ferr := store.FindByID(context.Background(), created.Order.ID)
			require.NoError(t, ferr)
			assert.True(t, stored.IsPaid)
			assert.Equal(t, models.StatusProcessing, stored.Status)
			require.NotNil(t, stored.RazorpayPaymentID)
			assert.Equal(t, "pay_123", *stored.RazorpayPaymentID)
			require.Len(t, stored.StatusHistory, 2)
			assert.Equal(t, "Payment received successfully", stored.StatusHistory[1].Note)
		})
	}
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())
	sig := payment.Sign("order_abc", "pay_123", testSecret)

	err := svc.VerifyPayment(context.Background(), "order_abc", "pay_123", sig, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	svc, store, _ := newTestService(testCatalog())
	created := createOnlineOrderForTest(t, svc)
	sig := payment.Sign("order_abc", "pay_123", testSecret)

	require.NoError(t, svc.VerifyPayment(context.Background(), "order_abc", "pay_123", sig, created.Order.ID))
	require.NoError(t, svc.VerifyPayment(context.Background(), "order_abc", "pay_123", sig, created.Order.ID))

	// The second verification must not append a second Processing entry.
	stored, err := store.FindByID(context.Background(), created.Order.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	assert.Len(t, stored.StatusHistory, 2)
}

//
// --- Payment failure ---
//

func TestRecordPaymentFailure(t *testing.T) {
	svc, store, _ := newTestService(testCatalog())
	created := createOnlineOrderForTest(t, svc)

	require.NoError(t, svc.RecordPaymentFailure(context.Background(), created.Order.ID, ""))

	stored, err := store.FindByID(context.Background(), created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)
	require.NotNil(t, stored.CancellationReason)
	assert.Equal(t, "Payment failed", *stored.CancellationReason)
	assert.Len(t, stored.StatusHistory, 2)

	// Calling it again on an already-cancelled order is a no-op: no extra
	// history entry, no error.
	require.NoError(t, svc.RecordPaymentFailure(context.Background(), created.Order.ID, "gave up"))
	stored, err = store.FindByID(context.Background(), created.Order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 2)
	assert.Equal(t, "Payment failed", *stored.CancellationReason)
}

func TestRecordPaymentFailure_MissingOrder(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())
	assert.NoError(t, svc.RecordPaymentFailure(context.Background(), 404, "whatever"))
}

//
// --- Seller status updates ---
//

func placeCODOrderForTest(t *testing.T, svc *Service) *models.Order {
	t.Helper()
	order, err := svc.PlaceOrderCOD(context.Background(), 7, 1, []models.OrderItem{{ProductID: 3, Quantity: 1}})
	require.NoError(t, err)
	return order
}

func TestUpdateStatus(t *testing.T) {
	t.Run("rejects unrecognized status", func(t *testing.T) {
		svc, _, _ := newTestService(testCatalog())
		order := placeCODOrderForTest(t, svc)

		_, err := svc.UpdateStatus(context.Background(), order.ID, "Teleported", "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("rejects unknown order", func(t *testing.T) {
		svc, _, _ := newTestService(testCatalog())
		_, err := svc.UpdateStatus(context.Background(), 999, models.StatusShipped, "")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("delivered marks COD order paid", func(t *testing.T) {
		svc, store, _ := newTestService(testCatalog())
		order := placeCODOrderForTest(t, svc)

		updated, err := svc.UpdateStatus(context.Background(), order.ID, models.StatusDelivered, "")
		require.NoError(t, err)
		assert.True(t, updated.IsPaid)
		require.NotNil(t, updated.DeliveredAt)
		assert.Equal(t, fixedNow, *updated.DeliveredAt)

		stored, err := store.FindByID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsPaid)
		require.Len(t, stored.StatusHistory, 2)
		assert.Equal(t, "Order status updated to Delivered", stored.StatusHistory[1].Note)
	})

	t.Run("delivered keeps paid online order paid", func(t *testing.T) {
		svc, store, _ := newTestService(testCatalog())
		created := createOnlineOrderForTest(t, svc)
		sig := payment.Sign("order_abc", "pay_123", testSecret)
		require.NoError(t, svc.VerifyPayment(context.Background(), "order_abc", "pay_123", sig, created.Order.ID))

		updated, err := svc.UpdateStatus(context.Background(), created.Order.ID, models.StatusDelivered, "")
		require.NoError(t, err)
		assert.True(t, updated.IsPaid)

		stored, err := store.FindByID(context.Background(), created.Order.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsPaid)
	})

	t.Run("cancelled without note uses seller default reason", func(t *testing.T) {
		svc, store, _ := newTestService(testCatalog())
		order := placeCODOrderForTest(t, svc)

		_, err := svc.UpdateStatus(context.Background(), order.ID, models.StatusCancelled, "")
		require.NoError(t, err)

		stored, err := store.FindByID(context.Background(), order.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.CancellationReason)
		assert.Equal(t, "Cancelled by seller", *stored.CancellationReason)
		require.NotNil(t, stored.CancelledAt)
	})

	t.Run("backward transitions are allowed for the seller", func(t *testing.T) {
		svc, store, _ := newTestService(testCatalog())
		order := placeCODOrderForTest(t, svc)

		_, err := svc.UpdateStatus(context.Background(), order.ID, models.StatusDelivered, "")
		require.NoError(t, err)
		_, err = svc.UpdateStatus(context.Background(), order.ID, models.StatusProcessing, "misclick")
		require.NoError(t, err)

		stored, err := store.FindByID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusProcessing, stored.Status)
		// Every update appends exactly one entry: creation + 2 updates.
		assert.Len(t, stored.StatusHistory, 3)
	})
}

//
// --- Buyer cancellation ---
//

func TestCancelOrder(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		buyerID int64
		wantErr error
	}{
		{name: "order placed can be cancelled", status: models.StatusOrderPlaced, buyerID: 7},
		{name: "processing can be cancelled", status: models.StatusProcessing, buyerID: 7},
		{name: "shipped cannot", status: models.StatusShipped, buyerID: 7, wantErr: ErrInvalidTransition},
		{name: "out for delivery cannot", status: models.StatusOutForDelivery, buyerID: 7, wantErr: ErrInvalidTransition},
		{name: "delivered cannot", status: models.StatusDelivered, buyerID: 7, wantErr: ErrInvalidTransition},
		{name: "wrong buyer is forbidden", status: models.StatusOrderPlaced, buyerID: 8, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService(testCatalog())
			order := placeCODOrderForTest(t, svc)
			if tt.status != models.StatusOrderPlaced {
				_, err := svc.UpdateStatus(context.Background(), order.ID, tt.status, "")
				require.NoError(t, err)
			}

			err := svc.CancelOrder(context.Background(), order.ID, tt.buyerID, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			stored, err := store.FindByID(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusCancelled, stored.Status)
			require.NotNil(t, stored.CancelledAt)
			assert.Equal(t, fixedNow, *stored.CancelledAt)
			require.NotNil(t, stored.CancellationReason)
			assert.Equal(t, "Cancelled by customer", *stored.CancellationReason)
		})
	}
}

func TestCancelOrder_MissingOrder(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())
	err := svc.CancelOrder(context.Background(), 999, 7, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrder_CustomReason(t *testing.T) {
	svc, store, _ := newTestService(testCatalog())
	order := placeCODOrderForTest(t, svc)

	require.NoError(t, svc.CancelOrder(context.Background(), order.ID, 7, "ordered twice"))

	stored, err := store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ordered twice", *stored.CancellationReason)
	assert.Equal(t, "ordered twice", stored.StatusHistory[len(stored.StatusHistory)-1].Note)
}

//
// --- Retention cleanup ---
//

func TestCleanupDelivered(t *testing.T) {
	svc, store, _ := newTestService(testCatalog())

	deliverAt := func(t *testing.T, o *models.Order, when time.Time) {
		t.Helper()
		svc.now = func() time.Time { return when }
		_, err := svc.UpdateStatus(context.Background(), o.ID, models.StatusDelivered, "")
		require.NoError(t, err)
	}

	svc.now = func() time.Time { return fixedNow }
	old := placeCODOrderForTest(t, svc)
	recent := placeCODOrderForTest(t, svc)
	open := placeCODOrderForTest(t, svc)

	deliverAt(t, old, fixedNow.Add(-8*24*time.Hour))
	deliverAt(t, recent, fixedNow.Add(-6*24*time.Hour))

	svc.now = func() time.Time { return fixedNow }
	deleted, err := svc.CleanupDelivered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = store.FindByID(context.Background(), old.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = store.FindByID(context.Background(), recent.ID)
	assert.NoError(t, err)

	_, err = store.FindByID(context.Background(), open.ID)
	assert.NoError(t, err)
}

//
// --- Buyer listings ---
//

func TestListOrdersForBuyer_HidesUnpaidOnline(t *testing.T) {
	svc, _, _ := newTestService(testCatalog())

	cod := placeCODOrderForTest(t, svc)
	unpaid := createOnlineOrderForTest(t, svc)
	paid := createOnlineOrderForTest(t, svc)
	sig := payment.Sign("order_abc", "pay_123", testSecret)
	require.NoError(t, svc.VerifyPayment(context.Background(), "order_abc", "pay_123", sig, paid.Order.ID))

	list, total, err := svc.ListOrdersForBuyer(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	ids := make([]int64, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	assert.Contains(t, ids, cod.ID)
	assert.Contains(t, ids, paid.Order.ID)
	assert.NotContains(t, ids, unpaid.Order.ID)
}
