package errors

import "errors"

var (
	ErrNotFound      = errors.New("booking not found")
	ErrInvalidID     = errors.New("invalid ID format")
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
