package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/coupon/model"
)

// ServiceInterface evaluates and redeems coupons. Validate and Preview run
// against the pool and never consume anything; Redeem is the only path
// that records a usage, and it must run inside the caller's transaction.
type ServiceInterface interface {
	Preview(ctx context.Context, userID uuid.UUID, req model.PreviewRequest) (*model.PreviewResponse, error)

	// Validate checks every redeemability rule against current state and
	// returns the coupon plus the discount it would grant on subtotal.
	Validate(ctx context.Context, code string, userID uuid.UUID, subtotal decimal.Decimal) (*model.Coupon, decimal.Decimal, error)

	// Redeem re-validates under a row lock, records the usage against
	// orderID and bumps used_count. Any failure must abort the caller's
	// transaction.
	Redeem(ctx context.Context, tx pgx.Tx, code string, userID, orderID uuid.UUID, subtotal decimal.Decimal) (*model.Coupon, decimal.Decimal, error)

	// ExpireLapsed deactivates coupons whose validity window has closed.
	ExpireLapsed(ctx context.Context) (int64, error)
}
