package service

import "errors"

var (
	// ErrNoBankAvailable means no active bank exists to receive payment.
	// Checkout must refuse to proceed; this is terminal, not transient.
	ErrNoBankAvailable = errors.New("no payment method configured")

	// ErrBankResolutionFailed wraps storage failures while reading
	// settings or banks.
	ErrBankResolutionFailed = errors.New("bank resolution failed")

	// ErrBankNotAvailable means the customer selected a bank outside the
	// resolved availability list.
	ErrBankNotAvailable = errors.New("selected bank is not available")

	// ErrOrderPersistenceFailed wraps storage failures while writing an order.
	ErrOrderPersistenceFailed = errors.New("order persistence failed")

	// ErrBundleNotAvailable means a requested bundle does not exist or is
	// hidden from customers.
	ErrBundleNotAvailable = errors.New("bundle not available")

	// ErrInvalidStatusTransition means a requested lifecycle move is not
	// allowed from the current status.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrInactiveDefaultBank means single bank mode was pointed at a bank
	// that is not active.
	ErrInactiveDefaultBank = errors.New("default bank must be an active bank")
)
