package service

import "errors"

// Operation errors are recovered at the handler boundary and surfaced to the
// actor as a message; none are fatal.
var (
	ErrNotFound          = errors.New("record not found")
	ErrValidation        = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("request state does not allow this operation")
	ErrCooldownActive    = errors.New("returning farmer must wait before a new request")
	ErrQuantityLimit     = errors.New("quantity exceeds the limit for farmer type")
	ErrPermissionDenied  = errors.New("permission denied")
)
