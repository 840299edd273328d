package errors

import "errors"

var (
	ErrNotFound  = errors.New("order not found")
	ErrInvalidID = errors.New("invalid order ID format")
)
