package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidStatus indicates an order status outside the closed set.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrInvalidTransition indicates a status change the order lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnauthorized indicates a missing, unknown or expired access token.
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError reports a user-correctable problem with a single input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}
