package domain

import "errors"

// Sentinel errors for the stockflow domain. Wrap with fmt.Errorf("%w: ...")
// and check with errors.Is().
var (
	// ErrValidation indicates malformed input (non-positive quantity,
	// missing field, duplicate product within one submission).
	ErrValidation = errors.New("invalid input")

	// ErrInvalidState indicates the record's current state forbids the
	// operation (editing a non-PLANNING shipment, transitioning a
	// terminal order).
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrInvalidTransition indicates the requested target status is not
	// reachable from the current one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock indicates an adjustment would drive a
	// product's stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound indicates the referenced product, order, shipment or
	// line item does not exist.
	ErrNotFound = errors.New("not found")
)
