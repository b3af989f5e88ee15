package model

import "errors"

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound     = "ORD001"
	ErrCodeEmptyCart         = "ORD002"
	ErrCodeInvalidTransition = "ORD003"
	ErrCodeVersionMismatch   = "ORD004"
	ErrCodeTransactionFailed = "ORD005"
	ErrCodeNotCancellable    = "ORD006"
	ErrCodeInvalidRequest    = "ORD007"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("order must contain at least one item")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrVersionMismatch   = errors.New("order was modified concurrently")
	ErrTransactionFailed = errors.New("order transaction failed")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
