package service

import (
	"context"
	"testing"

	"perdami-store/internal/models"
	"perdami-store/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visibleBundle(id, storeID, price int64) models.ProductBundle {
	return models.ProductBundle{
		ID:             id,
		StoreID:        storeID,
		Name:           "Bundle",
		Price:          price,
		IsActive:       true,
		ShowToCustomer: true,
	}
}

func newTestOrderService(store *fakeOrderStore, resolver *fakeResolver, publisher *fakePublisher) *OrderService {
	return NewOrderService(store, resolver, publisher, pricing.NewCalculator(pricing.DefaultPerStoreFee))
}

func singleBankAvailability() *BankAvailability {
	return &BankAvailability{
		Banks: []models.Bank{{
			ID:       1,
			Name:     "BCA",
			IsActive: true,
		}},
		SingleBankMode: true,
	}
}

func TestCreateOrderTwoStores(t *testing.T) {
	store := newFakeOrderStore()
	store.bundles[10] = visibleBundle(10, 1, 27000)
	store.bundles[20] = visibleBundle(20, 2, 55000)

	resolver := &fakeResolver{availability: singleBankAvailability()}
	publisher := &fakePublisher{}
	svc := newTestOrderService(store, resolver, publisher)

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items: []OrderItemRequest{
			{BundleID: 10, Quantity: 2}, // 54000 from store 1
			{BundleID: 20, Quantity: 1}, // 55000 from store 2
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(109000), resp.Breakdown.Subtotal)
	assert.Equal(t, int64(50000), resp.Breakdown.ServiceFee)
	assert.Equal(t, int64(159000), resp.Breakdown.Total)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.Equal(t, int64(1), resp.Bank.ID)
	assert.NotEmpty(t, resp.OrderNumber)

	persisted, err := store.GetOrderByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, persisted.PaymentStatus)
	assert.Equal(t, int64(1), persisted.BankID)
	assert.Equal(t, int64(159000), persisted.TotalAmount)

	items, err := store.GetOrderItemsByOrderID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// the resolver is consulted exactly once per creation attempt
	assert.Equal(t, 1, resolver.calls)
	require.Len(t, publisher.created, 1)
	assert.Equal(t, resp.OrderID, publisher.created[0].OrderID)
}

func TestCreateOrderSingleStoreFee(t *testing.T) {
	store := newFakeOrderStore()
	store.bundles[10] = visibleBundle(10, 1, 40000)
	store.bundles[11] = visibleBundle(11, 1, 60000)

	svc := newTestOrderService(store, &fakeResolver{availability: singleBankAvailability()}, &fakePublisher{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items: []OrderItemRequest{
			{BundleID: 10, Quantity: 1},
			{BundleID: 11, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// both bundles share one store, so only one pickup fee applies
	assert.Equal(t, int64(25000), resp.Breakdown.ServiceFee)
	assert.Equal(t, int64(125000), resp.Breakdown.Total)
}

func TestCreateOrderRejectedWithoutBank(t *testing.T) {
	store := newFakeOrderStore()
	store.bundles[10] = visibleBundle(10, 1, 40000)

	resolver := &fakeResolver{err: ErrNoBankAvailable}
	svc := newTestOrderService(store, resolver, &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items:  []OrderItemRequest{{BundleID: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNoBankAvailable)
	assert.Zero(t, store.createCalls)
}

func TestCreateOrderRejectedOnEmptyAvailability(t *testing.T) {
	store := newFakeOrderStore()
	store.bundles[10] = visibleBundle(10, 1, 40000)

	resolver := &fakeResolver{availability: &BankAvailability{Banks: nil}}
	svc := newTestOrderService(store, resolver, &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items:  []OrderItemRequest{{BundleID: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNoBankAvailable)
	assert.Zero(t, store.createCalls)
}

func TestCreateOrderRejectsHiddenBundle(t *testing.T) {
	store := newFakeOrderStore()
	hidden := visibleBundle(10, 1, 40000)
	hidden.ShowToCustomer = false
	store.bundles[10] = hidden

	resolver := &fakeResolver{availability: singleBankAvailability()}
	svc := newTestOrderService(store, resolver, &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items:  []OrderItemRequest{{BundleID: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrBundleNotAvailable)
	assert.Zero(t, resolver.calls)
}

func TestCreateOrderRejectsUnknownBundle(t *testing.T) {
	store := newFakeOrderStore()

	svc := newTestOrderService(store, &fakeResolver{availability: singleBankAvailability()}, &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items:  []OrderItemRequest{{BundleID: 99, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrBundleNotAvailable)
}

func TestCreateOrderRejectsBankOutsideAvailability(t *testing.T) {
	store := newFakeOrderStore()
	store.bundles[10] = visibleBundle(10, 1, 40000)

	svc := newTestOrderService(store, &fakeResolver{availability: singleBankAvailability()}, &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items:  []OrderItemRequest{{BundleID: 10, Quantity: 1}},
		BankID: 42,
	})
	assert.ErrorIs(t, err, ErrBankNotAvailable)
	assert.Zero(t, store.createCalls)
}

func TestCreateOrderIdempotentReplay(t *testing.T) {
	store := newFakeOrderStore()
	store.bundles[10] = visibleBundle(10, 1, 40000)

	resolver := &fakeResolver{availability: singleBankAvailability()}
	svc := newTestOrderService(store, resolver, &fakePublisher{})

	req := &CreateOrderRequest{
		UserID:         7,
		Items:          []OrderItemRequest{{BundleID: 10, Quantity: 1}},
		IdempotencyKey: "replay-key",
	}

	first, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.Breakdown.Total, second.Breakdown.Total)
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, 1, resolver.calls)
}

func TestUpdateOrderStatusLifecycle(t *testing.T) {
	store := newFakeOrderStore()
	store.orders[1] = &models.Order{
		ID:            1,
		OrderStatus:   models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}

	publisher := &fakePublisher{}
	svc := newTestOrderService(store, &fakeResolver{}, publisher)
	ctx := context.Background()

	for _, next := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusReady,
		models.OrderStatusCompleted,
	} {
		require.NoError(t, svc.UpdateOrderStatus(ctx, 1, next))
	}

	assert.Equal(t, models.OrderStatusCompleted, store.orders[1].OrderStatus)
	assert.Len(t, publisher.statusChanged, 4)
}

func TestUpdateOrderStatusRejectsSkips(t *testing.T) {
	store := newFakeOrderStore()
	store.orders[1] = &models.Order{ID: 1, OrderStatus: models.OrderStatusPending}

	svc := newTestOrderService(store, &fakeResolver{}, &fakePublisher{})

	err := svc.UpdateOrderStatus(context.Background(), 1, models.OrderStatusReady)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, models.OrderStatusPending, store.orders[1].OrderStatus)
}

func TestUpdateOrderStatusCancellation(t *testing.T) {
	store := newFakeOrderStore()
	store.orders[1] = &models.Order{ID: 1, OrderStatus: models.OrderStatusProcessing}

	publisher := &fakePublisher{}
	svc := newTestOrderService(store, &fakeResolver{}, publisher)

	require.NoError(t, svc.UpdateOrderStatus(context.Background(), 1, models.OrderStatusCancelled))
	assert.Len(t, publisher.cancelled, 1)

	// completed orders can no longer be cancelled
	store.orders[2] = &models.Order{ID: 2, OrderStatus: models.OrderStatusCompleted}
	err := svc.UpdateOrderStatus(context.Background(), 2, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	store := newFakeOrderStore()
	store.orders[1] = &models.Order{ID: 1, OrderStatus: models.OrderStatusPending}

	svc := newTestOrderService(store, &fakeResolver{}, &fakePublisher{})

	err := svc.UpdateOrderStatus(context.Background(), 1, "SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestOrderNumberFormat(t *testing.T) {
	n := newOrderNumber()
	assert.Regexp(t, `^PO-[0-9A-F]{8}$`, n)
	assert.NotEqual(t, n, newOrderNumber())
}

func TestCreateOrderPersistenceFailure(t *testing.T) {
	store := newFakeOrderStore()
	store.bundles[10] = visibleBundle(10, 1, 40000)
	store.createErr = context.DeadlineExceeded

	svc := newTestOrderService(store, &fakeResolver{availability: singleBankAvailability()}, &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID: 7,
		Items:  []OrderItemRequest{{BundleID: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrOrderPersistenceFailed)
}

func TestCountDistinctStores(t *testing.T) {
	svc := &OrderService{}

	bundles := map[int64]*models.ProductBundle{
		1: {ID: 1, StoreID: 100},
		2: {ID: 2, StoreID: 100},
		3: {ID: 3, StoreID: 200},
	}
	items := []OrderItemRequest{
		{BundleID: 1, Quantity: 1},
		{BundleID: 2, Quantity: 3},
		{BundleID: 3, Quantity: 1},
	}

	assert.Equal(t, 2, svc.countDistinctStores(items, bundles))

	for _, b := range bundles {
		b.Price = 15000
	}
	assert.Equal(t, int64(5*15000), svc.calculateSubtotal(items, bundles))
}
