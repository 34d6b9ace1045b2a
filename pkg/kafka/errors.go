package kafka

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrProducerClosed = errors.New("producer is closed")
	ErrConsumerClosed = errors.New("consumer is closed")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
	ErrInvalidMessage = errors.New("invalid message format")
)

// ProcessingError wraps errors that occur during message processing
// and records how many delivery attempts were made.
type ProcessingError struct {
	Err        error
	Message    Message
	Retryable  bool
	RetryCount int
}

func (pe *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed (retry %d): %v", pe.RetryCount, pe.Err)
}

func (pe *ProcessingError) Unwrap() error {
	return pe.Err
}

func NewProcessingError(err error, msg Message, retryable bool) *ProcessingError {
	return &ProcessingError{
		Err:        err,
		Message:    msg,
		Retryable:  retryable,
		RetryCount: msg.GetRetryCount(),
	}
}

// ShouldRetry reports whether a failed message should be redelivered.
// Context cancellation and deadline errors are never retried.
func ShouldRetry(err error, retryCount, maxRetries int) bool {
	if retryCount >= maxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return true
}
