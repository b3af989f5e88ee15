package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeCouponNotFound    = "COU001"
	ErrCodeCouponExpired     = "COU002"
	ErrCodeCouponNotYetValid = "COU003"
	ErrCodeUsageLimitReached = "COU004"
	ErrCodeUserLimitReached  = "COU005"
	ErrCodeMinPurchaseNotMet = "COU006"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrCouponNotFound    = errors.New("coupon not found or inactive")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponNotYetValid = errors.New("coupon is not yet valid")
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	ErrUserLimitReached  = errors.New("coupon usage limit reached for this user")
	ErrMinPurchaseNotMet = errors.New("order subtotal below coupon minimum")
)

type CouponError struct {
	Code    string
	Message string
	Err     error
}

func (e *CouponError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CouponError) Unwrap() error {
	return e.Err
}

func NewCouponError(code, message string, err error) *CouponError {
	return &CouponError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewMinPurchaseError reports the threshold the subtotal missed.
func NewMinPurchaseError(minPurchase, subtotal decimal.Decimal) *CouponError {
	return &CouponError{
		Code:    ErrCodeMinPurchaseNotMet,
		Message: fmt.Sprintf("subtotal %s is below the coupon minimum %s", subtotal, minPurchase),
		Err:     ErrMinPurchaseNotMet,
	}
}
