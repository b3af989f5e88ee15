package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// COUPON TYPES
// =====================================================
const (
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

// =====================================================
// ENTITY: Coupon
// =====================================================
type Coupon struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Type           string           `json:"type"`
	Value          decimal.Decimal  `json:"value"`
	MinPurchase    decimal.Decimal  `json:"min_purchase"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"` // percent type only
	MaxUses        *int             `json:"max_uses,omitempty"`
	MaxUsesPerUser *int             `json:"max_uses_per_user,omitempty"`
	UsedCount      int              `json:"used_count"`
	ValidFrom      time.Time        `json:"valid_from"`
	ValidUntil     time.Time        `json:"valid_until"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Discount computes the coupon's discount against a subtotal, clamped to
// [0, subtotal] so a total can never go negative.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.Type {
	case TypePercent:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case TypeFixed:
		discount = c.Value
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// =====================================================
// ENTITY: CouponUsage
// =====================================================
// One row per redemption; used_count on the coupon stays in lockstep with
// the number of these rows.
type CouponUsage struct {
	ID             uuid.UUID       `json:"id"`
	CouponID       uuid.UUID       `json:"coupon_id"`
	UserID         uuid.UUID       `json:"user_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}
