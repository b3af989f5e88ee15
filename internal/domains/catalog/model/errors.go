package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeProductNotFound = "CAT001"
	ErrCodeVariantNotFound = "CAT002"
	ErrCodeOutOfStock      = "CAT003"
	ErrCodeInvalidQuantity = "CAT004"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrProductNotFound = errors.New("product not found or inactive")
	ErrVariantNotFound = errors.New("variant not found for product")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// CatalogError carries a stable code alongside the wrapped cause.
type CatalogError struct {
	Code    string
	Message string
	Err     error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

func NewCatalogError(code, message string, err error) *CatalogError {
	return &CatalogError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewOutOfStockError reports the requested vs available quantity for the
// failing product or variant.
func NewOutOfStockError(productID uuid.UUID, requested, available int) *CatalogError {
	return &CatalogError{
		Code:    ErrCodeOutOfStock,
		Message: fmt.Sprintf("insufficient stock for %s: requested %d, available %d", productID, requested, available),
		Err:     ErrOutOfStock,
	}
}
