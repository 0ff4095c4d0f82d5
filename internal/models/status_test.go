package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusForwardPath(t *testing.T) {
	path := []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusReady,
		OrderStatusCompleted,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransitionOrderStatus(path[i], path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}

	// no skipping ahead
	assert.False(t, CanTransitionOrderStatus(OrderStatusPending, OrderStatusProcessing))
	assert.False(t, CanTransitionOrderStatus(OrderStatusConfirmed, OrderStatusCompleted))

	// no moving backwards
	assert.False(t, CanTransitionOrderStatus(OrderStatusReady, OrderStatusProcessing))
}

func TestOrderStatusCancellation(t *testing.T) {
	for _, from := range []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusReady,
	} {
		assert.True(t, CanTransitionOrderStatus(from, OrderStatusCancelled),
			"%s should be cancellable", from)
	}

	assert.False(t, CanTransitionOrderStatus(OrderStatusCompleted, OrderStatusCancelled))
	assert.False(t, CanTransitionOrderStatus(OrderStatusCancelled, OrderStatusCancelled))
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, CanTransitionPaymentStatus(PaymentStatusPending, PaymentStatusPaid))
	assert.True(t, CanTransitionPaymentStatus(PaymentStatusPending, PaymentStatusFailed))
	assert.True(t, CanTransitionPaymentStatus(PaymentStatusPaid, PaymentStatusRefunded))

	assert.False(t, CanTransitionPaymentStatus(PaymentStatusPaid, PaymentStatusPending))
	assert.False(t, CanTransitionPaymentStatus(PaymentStatusFailed, PaymentStatusPaid))
	assert.False(t, CanTransitionPaymentStatus(PaymentStatusRefunded, PaymentStatusPaid))
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, IsValidOrderStatus(OrderStatusPending))
	assert.False(t, IsValidOrderStatus("SHIPPED"))
	assert.True(t, IsValidPaymentStatus(PaymentStatusRefunded))
	assert.False(t, IsValidPaymentStatus("SETTLED"))
}
