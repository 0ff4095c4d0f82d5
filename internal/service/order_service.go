package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"perdami-store/internal/models"
	"perdami-store/internal/pricing"
	"perdami-store/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence surface the order service needs.
// *store.Store satisfies it.
type OrderStore interface {
	GetBundlesByIDs(ctx context.Context, ids []int64) ([]models.ProductBundle, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
}

// BankResolver resolves valid payment destinations for a checkout attempt.
type BankResolver interface {
	GetAvailableBanks(ctx context.Context) (*BankAvailability, error)
}

// OrderEventPublisher publishes order domain events.
// *broker.EventPublisher satisfies it.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
}

// OrderService handles pre-order assembly and lifecycle
type OrderService struct {
	store          OrderStore
	bankResolver   BankResolver
	eventPublisher OrderEventPublisher
	calculator     *pricing.Calculator
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store OrderStore,
	bankResolver BankResolver,
	eventPublisher OrderEventPublisher,
	calculator *pricing.Calculator,
) *OrderService {
	return &OrderService{
		store:          store,
		bankResolver:   bankResolver,
		eventPublisher: eventPublisher,
		calculator:     calculator,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to place a pre-order
type CreateOrderRequest struct {
	UserID         int64              `json:"user_id" binding:"required"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1"`
	BankID         int64              `json:"bank_id,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// OrderItemRequest represents one bundle line in a pre-order
type OrderItemRequest struct {
	BundleID int64 `json:"bundle_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// CreateOrderResponse represents the response after placing a pre-order
type CreateOrderResponse struct {
	OrderID     int64             `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
	Bank        models.Bank       `json:"bank"`
	Status      string            `json:"status"`
}

// CreateOrder validates the cart, prices it, resolves the payment bank
// and persists the order atomically. The bank resolver is consulted
// exactly once per creation attempt; an empty result or resolver error
// rejects the order.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	existingOrder, err := s.store.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existingOrder != nil {
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", existingOrder.ID))
		return &CreateOrderResponse{
			OrderID:     existingOrder.ID,
			OrderNumber: existingOrder.OrderNumber,
			Breakdown: pricing.Breakdown{
				Subtotal:   existingOrder.Subtotal,
				ServiceFee: existingOrder.ServiceFee,
				Total:      existingOrder.TotalAmount,
			},
			Status: existingOrder.OrderStatus,
		}, nil
	}

	bundles, err := s.validateOrderItems(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	subtotal := s.calculateSubtotal(req.Items, bundles)
	storeCount := s.countDistinctStores(req.Items, bundles)

	breakdown, err := s.calculator.ComputeOrderTotal(subtotal, storeCount)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("pricing").Inc()
		return nil, err
	}

	availability, err := s.bankResolver.GetAvailableBanks(ctx)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("bank_resolution").Inc()
		return nil, err
	}
	if len(availability.Banks) == 0 {
		util.OrdersFailedTotal.WithLabelValues("no_bank").Inc()
		return nil, ErrNoBankAvailable
	}

	bank, err := selectBank(availability, req.BankID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("bank_selection").Inc()
		return nil, err
	}

	order := &models.Order{
		OrderNumber:    newOrderNumber(),
		UserID:         req.UserID,
		Subtotal:       breakdown.Subtotal,
		ServiceFee:     breakdown.ServiceFee,
		TotalAmount:    breakdown.Total,
		OrderStatus:    models.OrderStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		BankID:         bank.ID,
		IdempotencyKey: req.IdempotencyKey,
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		bundle := bundles[item.BundleID]
		items = append(items, models.OrderItem{
			BundleID:  item.BundleID,
			StoreID:   bundle.StoreID,
			Quantity:  item.Quantity,
			UnitPrice: bundle.Price,
		})
	}

	if err := s.store.CreateOrderTx(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrOrderPersistenceFailed, err)
	}

	util.OrdersCreatedTotal.Inc()
	util.ServiceFeeChargedTotal.Add(float64(breakdown.ServiceFee))
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.TotalAmount),
		zap.Int("store_count", storeCount))

	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		eventItems = append(eventItems, models.OrderItemData{
			BundleID:  item.BundleID,
			StoreID:   item.StoreID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Subtotal:    order.Subtotal,
		ServiceFee:  order.ServiceFee,
		TotalAmount: order.TotalAmount,
		BankID:      order.BankID,
		Items:       eventItems,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CreateOrderResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Breakdown:   breakdown,
		Bank:        *bank,
		Status:      order.OrderStatus,
	}, nil
}

// UpdateOrderStatus moves an order through its lifecycle. Invalid moves
// are rejected before any write.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, toStatus string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if !models.IsValidOrderStatus(toStatus) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, toStatus)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !models.CanTransitionOrderStatus(order.OrderStatus, toStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.OrderStatus, toStatus)
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, toStatus); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(toStatus).Inc()
	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", order.OrderStatus),
		zap.String("to", toStatus))

	if toStatus == models.OrderStatusCancelled {
		event := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderID: orderID,
			Reason:  "cancelled by admin",
		}
		if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
		return nil
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		FromStatus: order.OrderStatus,
		ToStatus:   toStatus,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return nil
}

// GetOrder retrieves an order and its items
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListUserOrders retrieves all orders for a user
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

// validateOrderItems validates that every requested bundle exists and is
// visible to customers.
func (s *OrderService) validateOrderItems(ctx context.Context, items []OrderItemRequest) (map[int64]*models.ProductBundle, error) {
	bundleIDs := make([]int64, len(items))
	for i, item := range items {
		bundleIDs[i] = item.BundleID
	}

	bundles, err := s.store.GetBundlesByIDs(ctx, bundleIDs)
	if err != nil {
		return nil, err
	}

	bundleMap := make(map[int64]*models.ProductBundle)
	for i := range bundles {
		bundleMap[bundles[i].ID] = &bundles[i]
	}

	for _, item := range items {
		bundle, ok := bundleMap[item.BundleID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrBundleNotAvailable, item.BundleID)
		}
		if !bundle.IsActive || !bundle.ShowToCustomer {
			return nil, fmt.Errorf("%w: %d", ErrBundleNotAvailable, item.BundleID)
		}
	}

	return bundleMap, nil
}

// calculateSubtotal sums bundle price times quantity over all lines
func (s *OrderService) calculateSubtotal(items []OrderItemRequest, bundles map[int64]*models.ProductBundle) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += bundles[item.BundleID].Price * int64(item.Quantity)
	}
	return subtotal
}

// countDistinctStores counts the distinct stores represented in the cart.
// Each one incurs the per-store pickup fee.
func (s *OrderService) countDistinctStores(items []OrderItemRequest, bundles map[int64]*models.ProductBundle) int {
	stores := make(map[int64]struct{})
	for _, item := range items {
		stores[bundles[item.BundleID].StoreID] = struct{}{}
	}
	return len(stores)
}

// selectBank picks the order's payment bank from the resolved
// availability. An explicit request outside the list is rejected; no
// request defaults to the first resolved bank.
func selectBank(availability *BankAvailability, requestedID int64) (*models.Bank, error) {
	if requestedID == 0 {
		return &availability.Banks[0], nil
	}
	for i := range availability.Banks {
		if availability.Banks[i].ID == requestedID {
			return &availability.Banks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrBankNotAvailable, requestedID)
}

func newOrderNumber() string {
	return fmt.Sprintf("PO-%s", strings.ToUpper(uuid.New().String()[:8]))
}
