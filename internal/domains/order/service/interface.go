package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/order/model"
)

// OrderService orchestrates checkout and the order lifecycle.
type OrderService interface {
	// CreateOrder runs the whole checkout: resolves prices, evaluates the
	// coupon, then atomically decrements stock, redeems the coupon and
	// persists the order. userEmail is where the confirmation goes.
	CreateOrder(ctx context.Context, userID uuid.UUID, userEmail string, req model.CreateOrderRequest) (*model.CreateOrderResponse, error)

	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderDetailResponse, error)
	ListOrders(ctx context.Context, userID uuid.UUID, req model.ListOrdersRequest) ([]model.Order, int, error)

	// CancelOrder returns the order's stock and marks it cancelled, all
	// in one transaction. Redeemed coupons stay redeemed.
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error

	// UpdateStatus applies an admin status transition with optimistic
	// concurrency control.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req model.UpdateStatusRequest) error

	// MarkPaid records a successful payment callback for the order.
	MarkPaid(ctx context.Context, orderNumber string) error
	// MarkPaymentFailed records a failed payment callback.
	MarkPaymentFailed(ctx context.Context, orderNumber string) error
}
