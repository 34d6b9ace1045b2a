package errors

import "errors"

var (
	ErrNotFound  = errors.New("shift not found")
	ErrInvalidID = errors.New("invalid ID format")
)
