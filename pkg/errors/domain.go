package errors

import "fmt"

// NotFound reports a missing entity of the given kind.
func NotFound(entity string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

// Duplicate reports a create against an identity that already exists.
func Duplicate(entity, identity string) *Error {
	return New(CodeConflict, fmt.Sprintf("%s already exists", entity)).
		WithDetails(map[string]any{"identity": identity})
}

// ProductUnavailable reports a product that is missing, inactive or out of stock.
func ProductUnavailable(productID string, reason string) *Error {
	return New(CodeProductUnavailable, "product is not available").
		WithDetails(map[string]any{"product_id": productID, "reason": reason})
}

// NoCandidate reports that no online delivery person could be selected.
func NoCandidate() *Error {
	return New(CodeNoCandidate, "no online delivery person available")
}

// Store wraps a persistence failure; the cause stays reachable via errors.Is/As.
func Store(err error, op string) *Error {
	return Wrap(CodeDependency, err, op)
}
