package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("email already registered")
	ErrInvalidInput = errors.New("invalid user input")
)
