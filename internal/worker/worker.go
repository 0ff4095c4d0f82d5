package worker

import (
	"context"
	"fmt"
	"log"

	"perdami-store/internal/broker"
	"perdami-store/internal/models"
	"perdami-store/internal/store"
	"perdami-store/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order events and writes admin
// notifications. Events are deduplicated through the processed_events
// table so redeliveries do not produce duplicate notifications.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, st *store.Store) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	eventHandler.OnPaymentStatusChanged(w.handlePaymentStatusChanged)
	eventHandler.OnOrderCancelled(w.handleOrderCancelled)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	message := fmt.Sprintf("New pre-order %s: %d item(s), total Rp%d",
		event.OrderNumber, len(event.Items), event.TotalAmount)
	return w.writeNotification(ctx, event.BaseEvent, event.OrderID, message)
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	message := fmt.Sprintf("Order %d moved from %s to %s",
		event.OrderID, event.FromStatus, event.ToStatus)
	return w.writeNotification(ctx, event.BaseEvent, event.OrderID, message)
}

func (w *NotificationWorker) handlePaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	message := fmt.Sprintf("Payment for order %d is now %s (Rp%d)",
		event.OrderID, event.ToStatus, event.Amount)
	return w.writeNotification(ctx, event.BaseEvent, event.OrderID, message)
}

func (w *NotificationWorker) handleOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	message := fmt.Sprintf("Order %d cancelled: %s", event.OrderID, event.Reason)
	return w.writeNotification(ctx, event.BaseEvent, event.OrderID, message)
}

func (w *NotificationWorker) writeNotification(ctx context.Context, base models.BaseEvent, orderID int64, message string) error {
	processed, err := w.store.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	notification := &models.Notification{
		Type:    base.EventType,
		OrderID: orderID,
		Message: message,
	}
	if err := w.store.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	util.NotificationsWrittenTotal.Inc()

	if err := w.store.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	w.logger.Info("Notification written",
		zap.String("event_id", base.EventID),
		zap.Int64("order_id", orderID))
	return nil
}
