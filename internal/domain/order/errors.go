package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order operations.
var (
	ErrEmptyItems             = errors.New("items required")
	ErrNotFound               = errors.New("order not found")
	ErrValidation             = errors.New("validation failed")
	ErrReturnReasonRequired   = errors.New("return reason required")
	ErrReturnItemsRequired    = errors.New("return items required")
	ErrReturnAlreadyRequested = errors.New("return already requested")
	ErrReturnItemNotInOrder   = errors.New("return item not in order")
	ErrReturnQuantityExceeded = errors.New("return quantity exceeds ordered quantity")
	ErrNoReturnRequested      = errors.New("no return requested")
	ErrRefundComplete         = errors.New("refund already completed")
)

// NotFoundError indicates an order ID that is not in the list.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ValidationError is a rejected request with a message meant for the user.
// It matches ErrValidation and, when set, Reason.
type ValidationError struct {
	Field   string
	Message string
	Reason  error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.Reason != nil && target == e.Reason)
}

// UnknownStatusError reports a status value outside the state machine.
type UnknownStatusError struct {
	Value  string
	Refund bool
}

func (e *UnknownStatusError) Error() string {
	if e.Refund {
		return fmt.Sprintf("unknown refund status %q", e.Value)
	}
	return fmt.Sprintf("unknown order status %q", e.Value)
}
