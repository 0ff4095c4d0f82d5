package pricing

import "fmt"

// DefaultPerStoreFee is the flat pickup service fee charged per distinct
// store in an order, in the smallest currency unit (IDR has no subunit).
// Each store requires a separate physical pickup at the event venue.
const DefaultPerStoreFee int64 = 25000

// Breakdown is the monetary breakdown of an order.
type Breakdown struct {
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"service_fee"`
	Total      int64 `json:"total"`
}

// ValidationError reports invalid calculator input. Callers must not
// retry it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pricing: invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is a pricing validation error.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// Calculator computes order totals with a configurable per-store fee.
type Calculator struct {
	perStoreFee int64
}

// NewCalculator returns a calculator charging perStoreFee per distinct
// store. A non-positive fee falls back to DefaultPerStoreFee.
func NewCalculator(perStoreFee int64) *Calculator {
	if perStoreFee <= 0 {
		perStoreFee = DefaultPerStoreFee
	}
	return &Calculator{perStoreFee: perStoreFee}
}

// PerStoreFee returns the configured per-store fee.
func (c *Calculator) PerStoreFee() int64 {
	return c.perStoreFee
}

// ComputeOrderTotal computes the breakdown for an order. subtotal must be
// non-negative and storeCount must be at least 1; invalid input fails
// fast with a ValidationError instead of being clamped.
func (c *Calculator) ComputeOrderTotal(subtotal int64, storeCount int) (Breakdown, error) {
	if subtotal < 0 {
		return Breakdown{}, &ValidationError{Field: "subtotal", Message: "must be non-negative"}
	}
	if storeCount < 1 {
		return Breakdown{}, &ValidationError{Field: "storeCount", Message: "must be at least 1"}
	}

	serviceFee := int64(storeCount) * c.perStoreFee
	return Breakdown{
		Subtotal:   subtotal,
		ServiceFee: serviceFee,
		Total:      subtotal + serviceFee,
	}, nil
}

// ComputeOrderTotal computes the breakdown using DefaultPerStoreFee.
func ComputeOrderTotal(subtotal int64, storeCount int) (Breakdown, error) {
	return NewCalculator(DefaultPerStoreFee).ComputeOrderTotal(subtotal, storeCount)
}
