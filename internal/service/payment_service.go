package service

import (
	"context"
	"fmt"
	"time"

	"perdami-store/internal/models"
	"perdami-store/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentStore is the persistence surface the payment service needs.
type PaymentStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status string) error
}

// PaymentEventPublisher publishes payment domain events.
type PaymentEventPublisher interface {
	PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error
}

// PaymentService handles manual bank-transfer payment status updates.
// Payments are verified by admins against bank statements, so the only
// entry point is an explicit status transition.
type PaymentService struct {
	store          PaymentStore
	eventPublisher PaymentEventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store PaymentStore, eventPublisher PaymentEventPublisher) *PaymentService {
	return &PaymentService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// UpdatePaymentStatus moves an order's payment through its lifecycle.
// Invalid moves are rejected before any write.
func (ps *PaymentService) UpdatePaymentStatus(ctx context.Context, orderID int64, toStatus string) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.UpdatePaymentStatus")
	defer span.End()

	if !models.IsValidPaymentStatus(toStatus) {
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidStatusTransition, toStatus)
	}

	order, err := ps.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !models.CanTransitionPaymentStatus(order.PaymentStatus, toStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.PaymentStatus, toStatus)
	}

	if err := ps.store.UpdatePaymentStatus(ctx, orderID, toStatus); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	util.PaymentStatusTransitionsTotal.WithLabelValues(toStatus).Inc()
	ps.logger.Info("Payment status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", order.PaymentStatus),
		zap.String("to", toStatus))

	event := &models.PaymentStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		FromStatus: order.PaymentStatus,
		ToStatus:   toStatus,
		Amount:     order.TotalAmount,
	}
	if err := ps.eventPublisher.PublishPaymentStatusChanged(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentStatusChanged event", zap.Error(err))
	}

	return nil
}
