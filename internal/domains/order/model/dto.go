package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogModel "shop-backend/internal/domains/catalog/model"
)

// =====================================================
// CREATE ORDER REQUEST
// =====================================================
type CreateOrderRequest struct {
	Items           []catalogModel.ResolveRequest `json:"items"`
	CouponCode      *string                       `json:"coupon_code,omitempty"`
	PaymentMethod   string                        `json:"payment_method"`
	ShippingAddress string                        `json:"shipping_address"`
	Phone           string                        `json:"phone"`
	CustomerNote    *string                       `json:"customer_note,omitempty"`
}

func (r CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Required.Error("must contain at least one item")),
		validation.Field(&r.PaymentMethod, validation.Required, validation.In(PaymentMethodCOD, PaymentMethodVNPay)),
		validation.Field(&r.ShippingAddress, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Phone, validation.Required, validation.Length(6, 20)),
		validation.Field(&r.CustomerNote, validation.Length(0, 500)),
	)
}

type CreateOrderResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
}

// =====================================================
// ORDER READS
// =====================================================
type OrderDetailResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

type ListOrdersRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

func (req *ListOrdersRequest) Normalize() {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
}

// =====================================================
// STATUS UPDATE (admin)
// =====================================================
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Version int    `json:"version"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			OrderStatusConfirmed,
			OrderStatusProcessing,
			OrderStatusShipped,
			OrderStatusDelivered,
			OrderStatusCancelled,
		)),
		validation.Field(&r.Version, validation.Min(0)),
	)
}

// =====================================================
// CONFIRMATION JOB PAYLOAD
// =====================================================
type OrderConfirmationPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Email       string    `json:"email"`
	Total       string    `json:"total"`
	PlacedAt    time.Time `json:"placed_at"`
}
